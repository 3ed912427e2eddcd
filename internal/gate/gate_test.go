package gate

import (
	"testing"

	"github.com/danielpatrickdp/multimodal-planner/internal/scorer"
)

func cleanBreakdown() scorer.Breakdown {
	return scorer.Breakdown{
		Soft: -1,
		Scorers: []scorer.ScorerResult{
			{Name: scorer.NameHumanLikeness, Weight: 1, Soft: -1, MaxReduced: -4},
			{Name: scorer.NameUserInfo, Weight: 1, Soft: 0, MaxReduced: 0},
		},
	}
}

func TestGateAcceptOnCleanBreakdown(t *testing.T) {
	g := NewGate(DefaultGateConfig())

	decision := g.Evaluate(cleanBreakdown(), 0)

	if decision.Action != ActionAccept {
		t.Fatalf("expected accept, got %s: %s", decision.Action, decision.Reason)
	}
	if decision.Vetoed {
		t.Fatal("should not be vetoed")
	}
	if decision.Quality != 0.75 {
		t.Fatalf("expected quality 0.75, got %.4f", decision.Quality)
	}
}

func TestGateRejectOnViolation(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	b := cleanBreakdown()
	b.Hard = -1
	b.Violations = []scorer.Violation{{ElementIndex: 2, Kind: scorer.KindDeixis, Reason: "style this without pointing"}}

	decision := g.Evaluate(b, 0)

	if decision.Action != ActionReject {
		t.Fatalf("expected reject, got %s", decision.Action)
	}
	if !decision.Vetoed {
		t.Fatal("should be vetoed")
	}
	if len(decision.VetoSignals) != 1 {
		t.Fatalf("expected 1 veto signal, got %d", len(decision.VetoSignals))
	}
	if decision.VetoSignals[0].Type != VetoDeixis {
		t.Fatalf("expected VetoDeixis, got %s", decision.VetoSignals[0].Type)
	}
	if decision.VetoSignals[0].ElementIndex != 2 {
		t.Fatalf("expected element 2, got %d", decision.VetoSignals[0].ElementIndex)
	}
}

func TestGateRejectOnMissingDevice(t *testing.T) {
	g := NewGate(DefaultGateConfig())

	decision := g.Evaluate(cleanBreakdown(), -2)

	if decision.Action != ActionReject {
		t.Fatalf("expected reject, got %s", decision.Action)
	}
	if decision.VetoSignals[0].Type != VetoDevice {
		t.Fatalf("expected VetoDevice, got %s", decision.VetoSignals[0].Type)
	}
}

func TestGateAllowInfeasible(t *testing.T) {
	g := NewGate(GateConfig{AllowInfeasible: true})
	b := cleanBreakdown()
	b.Hard = -2
	b.Violations = []scorer.Violation{
		{ElementIndex: 0, Kind: scorer.KindSilent, Reason: "speech eligible but element silent"},
		{ElementIndex: 1, Kind: scorer.KindIneligible, Reason: "image chosen with presentability 0.00"},
	}

	decision := g.Evaluate(b, 0)

	if decision.Action != ActionAccept {
		t.Fatalf("expected accept, got %s", decision.Action)
	}
	if !decision.Vetoed {
		t.Fatal("violations should still be reported")
	}
	if decision.VetoSignals[0].Type != VetoSilent || decision.VetoSignals[1].Type != VetoIneligible {
		t.Fatalf("unexpected veto types: %+v", decision.VetoSignals)
	}
}

func TestGateQualityFloor(t *testing.T) {
	g := NewGate(GateConfig{MinQuality: 0.8})

	decision := g.Evaluate(cleanBreakdown(), 0)

	if decision.Action != ActionReject {
		t.Fatalf("expected reject below floor, got %s", decision.Action)
	}
	if decision.VetoSignals[0].Type != VetoSoftFloor {
		t.Fatalf("expected VetoSoftFloor, got %s", decision.VetoSignals[0].Type)
	}
}

func TestQualityWithoutPenalties(t *testing.T) {
	if q := Quality(scorer.Breakdown{}); q != 1 {
		t.Fatalf("expected 1, got %.4f", q)
	}
	b := scorer.Breakdown{Scorers: []scorer.ScorerResult{
		{Weight: 3, Soft: -2, MaxReduced: -2},
		{Weight: 1, Soft: 0, MaxReduced: -2},
	}}
	if q := Quality(b); q != 0.25 {
		t.Fatalf("expected 0.25, got %.4f", q)
	}
}
