package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/multimodal-planner/internal/attrsel"
	"github.com/danielpatrickdp/multimodal-planner/internal/device"
	"github.com/danielpatrickdp/multimodal-planner/internal/gate"
	"github.com/danielpatrickdp/multimodal-planner/internal/geometry"
	"github.com/danielpatrickdp/multimodal-planner/internal/modality"
	"github.com/danielpatrickdp/multimodal-planner/internal/plan"
	"github.com/danielpatrickdp/multimodal-planner/internal/presenter"
	"github.com/danielpatrickdp/multimodal-planner/internal/scorer"
)

// #region planner
// Planner turns sentences into multimodal output plans. It is safe for
// concurrent use; per-call state lives in the Request.
type Planner struct {
	config Config
	gate   *gate.Gate
	log    *zap.Logger
}

// New creates a planner, filling unset fields of config with defaults.
func New(config Config) *Planner {
	def := DefaultConfig()
	if config.Selector.Strategy == "" {
		config.Selector = def.Selector
	}
	if len(config.Scorers) == 0 {
		config.Scorers = def.Scorers
	}
	if len(config.Presenters) == 0 {
		config.Presenters = []presenter.Presenter{presenter.Speech{}}
	}
	if config.ExhaustiveLimit <= 0 {
		config.ExhaustiveLimit = def.ExhaustiveLimit
	}
	if config.MaxSweeps <= 0 {
		config.MaxSweeps = def.MaxSweeps
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	return &Planner{
		config: config,
		gate:   gate.NewGate(config.Gate),
		log:    config.Logger.Named("planner"),
	}
}

// #endregion planner

// #region plan

// Plan chooses modalities, styles and devices for every element of
// req.Sentence. A plan the gate rejects is still returned, together with
// an error wrapping ErrInfeasible; it is never recorded in the history.
//
// A modality that a presenter rates eligible but that has no device in the
// pools is logged and dropped from the search (its presentability becomes
// 0) rather than counted as a hard violation. Planning then continues with
// the remaining modalities, so a plan stays feasible on a robot that lacks
// a configured channel.
func (p *Planner) Plan(ctx context.Context, req Request) (*Result, error) {
	if req.Model == nil {
		return nil, ErrNoModel
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	sentence := tag(req.Sentence, req.Model, req.TalkingTo)
	base, assignments, err := p.components(sentence, req)
	if err != nil {
		return nil, err
	}

	sctx := &scorer.Context{
		Model:     req.Model,
		History:   req.History,
		TalkingTo: req.TalkingTo,
		Pools:     p.config.Pools,
	}
	s := &searcher{ctx: sctx, scorers: p.config.Scorers}

	domains := make([][]choice, len(base.Components))
	for i := range base.Components {
		domains[i] = domain(&base.Components[i])
	}
	size := domainSize(domains, p.config.ExhaustiveLimit)

	var (
		best      plan.Candidate
		breakdown scorer.Breakdown
		stats     = SearchStats{DomainSize: size}
	)
	if size <= int64(p.config.ExhaustiveLimit) {
		stats.Exhaustive = true
		best, breakdown = s.exhaustive(base, domains)
	} else {
		best, breakdown, stats.Sweeps = s.descend(seeds(base), domains, p.config.MaxSweeps)
	}
	stats.Evaluations = s.evals

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	steps, chosen := compose(&best, assignments, p.config.Pools)
	devHard, devSoft := device.Score(chosen)
	decision := p.gate.Evaluate(breakdown, devHard)

	res := &Result{
		ID:         uuid.New().String(),
		CreatedAt:  start.UTC(),
		Sentence:   sentence,
		TalkingTo:  req.TalkingTo,
		Candidate:  best,
		Breakdown:  breakdown,
		DeviceHard: devHard,
		DeviceSoft: devSoft,
		Decision:   decision,
		Feasible:   breakdown.Hard == 0 && devHard == 0,
		Steps:      steps,
		Search:     stats,
	}

	var planErr error
	if decision.Action == gate.ActionReject {
		planErr = fmt.Errorf("plan %s: %w: %s", res.ID, ErrInfeasible, decision.Reason)
	} else if !req.DryRun && req.History != nil {
		round, err := req.History.Record(steps)
		if err != nil {
			return res, fmt.Errorf("plan %s: record history: %w", res.ID, err)
		}
		res.RoundID = round.ID
	}

	p.config.Metrics.ObservePlan(decision.Action, breakdown.Hard+devHard, stats.Evaluations, time.Since(start))
	p.log.Debug("plan",
		zap.String("id", res.ID),
		zap.String("predicate", sentence.Name),
		zap.Stringer("candidate", best),
		zap.Int("hard", breakdown.Hard),
		zap.Float64("soft", breakdown.Soft),
		zap.String("action", decision.Action),
		zap.Int("evaluations", stats.Evaluations),
		zap.Bool("exhaustive", stats.Exhaustive),
	)
	if p.config.Recorder != nil {
		if err := p.config.Recorder.RecordPlan(ctx, res); err != nil {
			p.log.Warn("plan log write failed", zap.String("id", res.ID), zap.Error(err))
		}
	}
	return res, planErr
}

// #endregion plan

// #region components

// components builds the search base: presentability, devices and
// identifiers per element. Modalities with no device are made ineligible.
func (p *Planner) components(sentence plan.Predicate, req Request) (plan.Candidate, map[int]map[modality.ID]device.Assignment, error) {
	scores, outputs := presenter.Table(sentence, req.Model, p.config.Presenters)
	interlocutor := p.interlocutor(req)
	assignments := make(map[int]map[modality.ID]device.Assignment, len(sentence.Elements))

	c := plan.Candidate{Predicate: sentence, Components: make([]plan.Component, len(sentence.Elements))}
	for i, el := range sentence.Elements {
		comp := plan.Component{
			Index:          i,
			Element:        el,
			Presentability: scores[i],
			Outputs:        outputs[i],
			Devices:        make(map[modality.ID]device.Device),
		}

		var objPos *geometry.Position
		if obj, ok := req.Model.Object(el.ObjectID); ok {
			if pos, ok := obj.Position(); ok {
				objPos = &pos
			}
		}
		assignments[i] = make(map[modality.ID]device.Assignment)
		for _, m := range comp.EligibleModalities() {
			a, err := device.Assign(device.Request{
				ElementIndex: i,
				Modality:     m,
				Object:       objPos,
				Interlocutor: interlocutor,
			}, p.config.Pools[m])
			if errors.Is(err, device.ErrNoDevice) {
				p.log.Warn("no device for eligible modality",
					zap.Int("element", i),
					zap.String("modality", string(m)),
				)
				comp.Presentability[m] = 0
				continue
			}
			if err != nil {
				return plan.Candidate{}, nil, fmt.Errorf("element %d: %w", i, err)
			}
			comp.Devices[m] = a.Device
			assignments[i][m] = a
		}

		if target, ok := identifiable(el, req.Model, req.TalkingTo); ok {
			id, err := attrsel.Identify(req.Model, target, el.Text, p.config.Selector)
			if err != nil {
				return plan.Candidate{}, nil, fmt.Errorf("element %d: %w", i, err)
			}
			comp.Identifier = &id
			p.config.Metrics.ObserveIdentifier(outcome(id))
		}
		c.Components[i] = comp
	}
	return c, assignments, nil
}

// interlocutor is the position of the first addressed user that has one.
func (p *Planner) interlocutor(req Request) *geometry.Position {
	for _, id := range req.TalkingTo {
		if u, ok := req.Model.User(id); ok && u.Position != nil {
			pos := *u.Position
			return &pos
		}
	}
	return nil
}

func outcome(id attrsel.Identifier) string {
	switch {
	case !id.Success:
		return "failed"
	case id.Partial:
		return "partial"
	case id.Selected == nil:
		return "type_only"
	}
	return "full"
}

// #endregion components

// #region compose

// compose fills in the content of the winning candidate and groups its
// outputs into steps, one per element that presents anything. It also
// returns the device assignments of every chosen modality for scoring.
func compose(c *plan.Candidate, assignments map[int]map[modality.ID]device.Assignment, pools device.Pools) ([]plan.Step, []device.Assignment) {
	var (
		steps  []plan.Step
		chosen []device.Assignment
	)
	for i := range c.Components {
		comp := &c.Components[i]
		step := plan.Step{
			ElementIndex: comp.Index,
			ObjectID:     comp.Element.ObjectID,
			ObjectType:   comp.Element.ObjectType,
		}
		for _, m := range comp.Modalities {
			a, ok := assignments[comp.Index][m]
			if !ok {
				a = device.Assignment{
					Request: device.Request{ElementIndex: comp.Index, Modality: m},
					Pool:    pools[m],
				}
			}
			chosen = append(chosen, a)
			if a.Device == nil {
				continue
			}
			content := comp.Outputs[m]
			if m == modality.Speech {
				content = plan.Describe(comp)
			}
			step.Outputs = append(step.Outputs, plan.Output{
				Modality:   m,
				DeviceName: a.Device.Name(),
				Content:    content,
				Device:     a.Device,
			})
		}
		if len(step.Outputs) > 0 {
			steps = append(steps, step)
		}
	}
	return steps, chosen
}

// #endregion compose
