package eval

import (
	"strings"
	"testing"

	"github.com/danielpatrickdp/multimodal-planner/internal/gate"
	"github.com/danielpatrickdp/multimodal-planner/internal/planner"
	"github.com/danielpatrickdp/multimodal-planner/internal/scorer"
)

func makeResult(hard int, rows ...scorer.ScorerResult) *planner.Result {
	b := scorer.Breakdown{Hard: hard, Scorers: rows}
	for _, r := range rows {
		b.Soft += r.Weight * float64(r.Soft)
	}
	return &planner.Result{
		Breakdown: b,
		Decision:  gate.GateDecision{Action: gate.ActionAccept, Quality: gate.Quality(b)},
	}
}

func TestEvalPassesOnCleanPlan(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	r := makeResult(0, scorer.ScorerResult{Name: "human_likeness", Weight: 1, Soft: -1, MaxReduced: -4})

	result := h.Run(r)

	if !result.Passed {
		t.Fatalf("expected pass on clean plan, got fail: %s", result.Reason)
	}
	m, ok := result.Metric("human_likeness_normalized")
	if !ok {
		t.Fatal("expected per-scorer metric")
	}
	if m.Value != 0.25 {
		t.Errorf("normalized = %v, want 0.25", m.Value)
	}
}

func TestEvalFailsOnHardViolation(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	r := makeResult(-2)
	r.DeviceHard = -1

	result := h.Run(r)

	if result.Passed {
		t.Fatal("expected fail on hard violations")
	}
	if !strings.Contains(result.Reason, "3 hard violation(s)") {
		t.Errorf("reason = %q", result.Reason)
	}
}

func TestEvalFailsOnWorstCaseScorer(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	r := makeResult(0, scorer.ScorerResult{Name: "output_history", Weight: 1, Soft: -6, MaxReduced: -6})

	result := h.Run(r)

	if result.Passed {
		t.Fatal("expected fail when a scorer hits its worst case")
	}
	if !strings.Contains(result.Reason, "output_history") {
		t.Errorf("reason = %q", result.Reason)
	}
}

func TestEvalQualityFloor(t *testing.T) {
	config := DefaultEvalConfig()
	config.MinQuality = 0.9
	h := NewEvalHarness(config)
	r := makeResult(0, scorer.ScorerResult{Name: "user_info", Weight: 1, Soft: -1, MaxReduced: -2})

	result := h.Run(r)

	if result.Passed {
		t.Fatal("expected fail below quality floor")
	}
	m, _ := result.Metric("quality")
	if m.Pass || m.Value != 0.5 {
		t.Errorf("quality metric = %+v", m)
	}
}

func TestEvalCountsFailures(t *testing.T) {
	config := DefaultEvalConfig()
	config.MinQuality = 0.9
	h := NewEvalHarness(config)
	r := makeResult(-1, scorer.ScorerResult{Name: "user_info", Weight: 1, Soft: -2, MaxReduced: -2})

	result := h.Run(r)

	if !strings.HasPrefix(result.Reason, "eval failed: 3 checks") {
		t.Errorf("reason = %q", result.Reason)
	}
}

func TestEvalDurationDisabledByDefault(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	result := h.Run(makeResult(0))

	m, ok := result.Metric("average_duration")
	if !ok || !m.Pass {
		t.Errorf("average_duration = %+v", m)
	}
}
