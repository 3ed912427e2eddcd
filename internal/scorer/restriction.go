package scorer

import (
	"math"

	"github.com/danielpatrickdp/multimodal-planner/internal/modality"
	"github.com/danielpatrickdp/multimodal-planner/internal/plan"
)

// ModalityRestriction applies deployment-specific rules. Each rule is off
// unless set:
//   - UseMax: every eligible modality should be used,
//   - Specific: that modality should be used wherever eligible,
//   - Limit: that modality may appear in at most a third of the elements,
//   - NoPointingInRow: adjacent elements should not both point.
type ModalityRestriction struct {
	W               float64
	UseMax          bool
	Specific        modality.ID
	Limit           modality.ID
	NoPointingInRow bool
}

func (ModalityRestriction) Name() string { return NameModalityRestriction }
func (s ModalityRestriction) Weight() float64 { return weightOr1(s.W) }

func (s ModalityRestriction) Score(c *plan.Candidate, _ *Context) Result {
	var p penalty
	comps := active(c)

	if s.UseMax {
		for _, comp := range comps {
			for _, m := range comp.EligibleModalities() {
				p.check(!comp.Modalities.Contains(m), 1)
			}
		}
	}

	if s.Specific != "" {
		for _, comp := range comps {
			if comp.Eligible(s.Specific) {
				p.check(!comp.Modalities.Contains(s.Specific), 1)
			}
		}
	}

	if s.Limit != "" {
		allowed := int(math.Ceil(float64(len(c.Components)) / 3))
		used := 0
		for _, comp := range comps {
			if comp.Modalities.Contains(s.Limit) {
				used++
			}
		}
		if used > allowed {
			p.soft -= used - allowed
		}
		p.max -= len(c.Components) - allowed
	}

	if s.NoPointingInRow {
		for i := 1; i < len(c.Components); i++ {
			prev, cur := c.Components[i-1].Modalities, c.Components[i].Modalities
			p.check(prev.Contains(modality.Pointing) && cur.Contains(modality.Pointing), 1)
		}
	}

	return Result{Soft: p.soft, MaxReduced: p.max}
}
