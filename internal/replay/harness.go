package replay

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/multimodal-planner/internal/device"
	"github.com/danielpatrickdp/multimodal-planner/internal/eval"
	"github.com/danielpatrickdp/multimodal-planner/internal/history"
	"github.com/danielpatrickdp/multimodal-planner/internal/modality"
	"github.com/danielpatrickdp/multimodal-planner/internal/plan"
	"github.com/danielpatrickdp/multimodal-planner/internal/planner"
	"github.com/danielpatrickdp/multimodal-planner/internal/world"
)

// #region types

// Turn outcomes.
const (
	ActionCommit       = "commit"
	ActionGateReject   = "gate_reject"
	ActionEvalRollback = "eval_rollback"
)

// TurnResult captures the outcome of replaying one turn.
type TurnResult struct {
	TurnID    string `json:"turn_id"`
	Action    string `json:"action"`
	Reason    string `json:"reason"`
	Text      string `json:"text"`
	Candidate string `json:"candidate"`
	PlanID    string `json:"plan_id"`

	Hard    int     `json:"hard"`
	Soft    float64 `json:"soft"`
	Quality float64 `json:"quality"`

	// Eval is nil when the gate rejected the plan.
	Eval *eval.EvalResult `json:"eval,omitempty"`

	// Shown lists image objects displayed by this turn.
	Shown      []string `json:"shown,omitempty"`
	Mismatches []string `json:"mismatches,omitempty"`
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalTurns    int `json:"total_turns"`
	Commits       int `json:"commits"`
	GateRejects   int `json:"gate_rejects"`
	EvalRollbacks int `json:"eval_rollbacks"`
	Mismatches    int `json:"mismatches"`
}

// ScenarioResult is the replay of one scenario.
type ScenarioResult struct {
	Scenario string       `json:"scenario"`
	Turns    []TurnResult `json:"turns"`
	Summary  Summary      `json:"summary"`
}

// #endregion types

// #region harness

// Harness replays scenarios through a planner built from Base. Each
// scenario gets its own world snapshot and output history.
type Harness struct {
	Base   planner.Config
	Eval   *eval.EvalHarness
	Logger *zap.Logger
}

// NewHarness creates a harness.
func NewHarness(base planner.Config, evalConfig eval.EvalConfig, logger *zap.Logger) *Harness {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Harness{Base: base, Eval: eval.NewEvalHarness(evalConfig), Logger: logger.Named("replay")}
}

// #endregion harness

// #region replay

// Replay plans every turn of sc in order, applying per turn:
// history operation → plan → gate → eval → commit/rollback.
func (h *Harness) Replay(ctx context.Context, sc *Scenario) (*ScenarioResult, error) {
	cfg := h.Base
	if len(sc.Devices) > 0 {
		pools, err := device.NewPools(sc.Devices, nil)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		cfg.Pools = pools
	}
	p := planner.New(cfg)

	model, err := world.NewModel(sc.Objects, sc.Saliency, nil)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	hist := history.New()
	results := make([]TurnResult, 0, len(sc.Turns))

	for _, turn := range sc.Turns {
		// 1. History operation
		if err := applyHistory(hist, turn.History); err != nil {
			return nil, fmt.Errorf("scenario %s turn %s: %w", sc.Name, turn.ID, err)
		}

		turnModel := model
		if len(turn.Saliency) > 0 {
			turnModel = model.WithSaliency(turnSaliency(sc.Saliency, turn.Saliency))
		}

		// 2. Plan and gate
		res, err := p.Plan(ctx, planner.Request{
			Sentence:  turn.Sentence,
			TalkingTo: sc.TalkingTo,
			Model:     turnModel,
			History:   hist,
		})
		if err != nil && !errors.Is(err, planner.ErrInfeasible) {
			return nil, fmt.Errorf("scenario %s turn %s: %w", sc.Name, turn.ID, err)
		}

		tr := TurnResult{
			TurnID:    turn.ID,
			Reason:    res.Decision.Reason,
			Text:      res.Text(),
			Candidate: res.Candidate.String(),
			PlanID:    res.ID,
			Hard:      res.Breakdown.Hard + res.DeviceHard,
			Soft:      res.Breakdown.Soft,
			Quality:   res.Decision.Quality,
		}

		switch {
		case err != nil:
			tr.Action = ActionGateReject
		default:
			// 3. Eval
			evalResult := h.Eval.Run(res)
			tr.Eval = &evalResult
			if !evalResult.Passed {
				if res.RoundID != "" {
					if cerr := hist.ClearLast(); cerr != nil {
						return nil, fmt.Errorf("scenario %s turn %s: rollback: %w", sc.Name, turn.ID, cerr)
					}
				}
				tr.Action = ActionEvalRollback
				tr.Reason = evalResult.Reason
				break
			}

			// 4. Commit; displayed images leave the scene
			tr.Action = ActionCommit
			for _, id := range shownImages(res.Steps) {
				next, serr := model.SetInvisible(id, true)
				if serr != nil {
					h.Logger.Warn("shown image not in world", zap.String("object", id), zap.Error(serr))
					continue
				}
				model = next
				tr.Shown = append(tr.Shown, id)
			}
		}

		tr.Mismatches = turn.Expect.check(tr)
		for _, m := range tr.Mismatches {
			h.Logger.Warn("expectation mismatch",
				zap.String("scenario", sc.Name), zap.String("turn", turn.ID), zap.String("detail", m))
		}
		results = append(results, tr)
	}

	return &ScenarioResult{Scenario: sc.Name, Turns: results, Summary: Summarize(results)}, nil
}

// ReplayAll replays scenarios concurrently, at most limit at a time
// (unbounded when limit <= 0). Results keep the input order.
func (h *Harness) ReplayAll(ctx context.Context, scenarios []*Scenario, limit int) ([]*ScenarioResult, error) {
	out := make([]*ScenarioResult, len(scenarios))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, sc := range scenarios {
		g.Go(func() error {
			r, err := h.Replay(gctx, sc)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Summarize computes aggregate stats from turn results.
func Summarize(results []TurnResult) Summary {
	s := Summary{TotalTurns: len(results)}
	for _, r := range results {
		switch r.Action {
		case ActionCommit:
			s.Commits++
		case ActionGateReject:
			s.GateRejects++
		case ActionEvalRollback:
			s.EvalRollbacks++
		}
		s.Mismatches += len(r.Mismatches)
	}
	return s
}

// #endregion replay

func applyHistory(h *history.History, op string) error {
	switch op {
	case HistoryClearLast:
		return h.ClearLast()
	case HistoryClearAll:
		return h.ClearAll()
	}
	return nil
}

func (e Expectation) check(tr TurnResult) []string {
	var out []string
	if e.Action != "" && e.Action != tr.Action {
		out = append(out, fmt.Sprintf("action: got %s, want %s", tr.Action, e.Action))
	}
	if e.Text != "" && e.Text != tr.Text {
		out = append(out, fmt.Sprintf("text: got %q, want %q", tr.Text, e.Text))
	}
	if e.Candidate != "" && e.Candidate != tr.Candidate {
		out = append(out, fmt.Sprintf("candidate: got %s, want %s", tr.Candidate, e.Candidate))
	}
	return out
}

// shownImages returns the objects an image output was planned for.
func shownImages(steps []plan.Step) []string {
	var ids []string
	for _, s := range steps {
		if s.ObjectID == "" {
			continue
		}
		for _, o := range s.Outputs {
			if o.Modality == modality.Image {
				ids = append(ids, s.ObjectID)
				break
			}
		}
	}
	return ids
}
