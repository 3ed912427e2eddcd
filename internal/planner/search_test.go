package planner

import (
	"testing"

	"github.com/danielpatrickdp/multimodal-planner/internal/attrsel"
	"github.com/danielpatrickdp/multimodal-planner/internal/modality"
	"github.com/danielpatrickdp/multimodal-planner/internal/plan"
)

func TestDomain(t *testing.T) {
	comp := &plan.Component{Presentability: map[modality.ID]float64{
		modality.Speech:   1,
		modality.Pointing: 0.9,
		modality.Gaze:     0.5,
	}}
	d := domain(comp)
	if len(d) != 4 {
		t.Fatalf("expected 4 choices without identifier, got %d", len(d))
	}
	if !d[0].set.Empty() || d[0].style != "" {
		t.Fatalf("first choice should be the silent one, got %v/%q", d[0].set, d[0].style)
	}
	if got := d[3].set.String(); got != "[speech,pointing]" {
		t.Fatalf("expected [speech,pointing] last, got %s", got)
	}

	comp.Identifier = &attrsel.Identifier{WorldID: "vase1", Type: "vase", Success: true}
	d = domain(comp)
	if len(d) != 4*len(modality.Styles) {
		t.Fatalf("expected %d choices with identifier, got %d", 4*len(modality.Styles), len(d))
	}
	if d[1].style != modality.StyleTheType {
		t.Fatalf("styles should vary fastest, got %q", d[1].style)
	}
}

func TestDomainSizeCaps(t *testing.T) {
	domains := [][]choice{make([]choice, 40), make([]choice, 40), make([]choice, 40)}
	if got := domainSize(domains, 100000); got != 64000 {
		t.Fatalf("expected 64000, got %d", got)
	}
	if got := domainSize(domains, 1000); got != 1001 {
		t.Fatalf("expected capped 1001, got %d", got)
	}
}

func TestNextOdometer(t *testing.T) {
	domains := [][]choice{make([]choice, 2), make([]choice, 3)}
	idx := make([]int, 2)
	count := 1
	for next(idx, domains) {
		count++
	}
	if count != 6 {
		t.Fatalf("expected 6 combinations, got %d", count)
	}
	if idx[0] != 0 || idx[1] != 0 {
		t.Fatalf("odometer should wrap to zero, got %v", idx)
	}
}
