package scorer

import (
	"fmt"

	"github.com/danielpatrickdp/multimodal-planner/internal/modality"
	"github.com/danielpatrickdp/multimodal-planner/internal/plan"
)

// #region hard

// HardScore counts violated hard constraints:
//   - a chosen modality that is not eligible,
//   - an empty modality set although some modality is eligible (one per
//     eligible modality),
//   - a deictic style without pointing.
func HardScore(c *plan.Candidate) (int, []Violation) {
	var (
		hard       int
		violations []Violation
	)
	for i := range c.Components {
		comp := &c.Components[i]
		if comp.Modalities.Empty() {
			for _, m := range comp.EligibleModalities() {
				hard--
				violations = append(violations, Violation{
					ElementIndex: comp.Index,
					Kind:         KindSilent,
					Reason:       fmt.Sprintf("%s eligible but element silent", m),
				})
			}
			continue
		}
		for _, m := range comp.Modalities {
			if !comp.Eligible(m) {
				hard--
				violations = append(violations, Violation{
					ElementIndex: comp.Index,
					Kind:         KindIneligible,
					Reason:       fmt.Sprintf("%s chosen with presentability %.2f", m, comp.Presentability[m]),
				})
			}
		}
		if comp.Identifier != nil && comp.Style.Deictic() && !comp.Modalities.Contains(modality.Pointing) {
			hard--
			violations = append(violations, Violation{
				ElementIndex: comp.Index,
				Kind:         KindDeixis,
				Reason:       fmt.Sprintf("style %s without pointing", comp.Style),
			})
		}
	}
	return hard, violations
}

// #endregion hard

// #region evaluate

// Evaluate combines the hard score with every scorer's weighted soft score.
func Evaluate(c *plan.Candidate, ctx *Context, scorers []Scorer) Breakdown {
	hard, violations := HardScore(c)
	b := Breakdown{Hard: hard, Violations: violations, Scorers: make([]ScorerResult, 0, len(scorers))}
	for _, s := range scorers {
		r := s.Score(c, ctx)
		w := s.Weight()
		b.Soft += w * float64(r.Soft)
		b.Scorers = append(b.Scorers, ScorerResult{Name: s.Name(), Weight: w, Soft: r.Soft, MaxReduced: r.MaxReduced})
	}
	return b
}

// Better reports whether a ranks strictly above b: fewer hard violations
// first, then higher soft score.
func Better(a, b Breakdown) bool {
	if a.Hard != b.Hard {
		return a.Hard > b.Hard
	}
	return a.Soft > b.Soft
}

// Normalized is the share of the achievable penalty a scorer actually gave,
// in [0,1]; 0 when the scorer could not penalize at all.
func (r ScorerResult) Normalized() float64 {
	if r.MaxReduced == 0 {
		return 0
	}
	return float64(r.Soft) / float64(r.MaxReduced)
}

// #endregion evaluate

// #region registry

// New builds a scorer by name. weight <= 0 means 1.
func New(name string, weight float64, opts Options) (Scorer, error) {
	if weight <= 0 {
		weight = 1
	}
	switch name {
	case NameHumanLikeness:
		return HumanLikeness{W: weight}, nil
	case NameObjectIdentification:
		return ObjectIdentification{W: weight}, nil
	case NameOutputHistory:
		return OutputHistory{W: weight}, nil
	case NameUserInfo:
		return UserInfo{W: weight}, nil
	case NameTechnicalEfficiency:
		return TechnicalEfficiency{W: weight, Fast: opts.FastThreshold, Slow: opts.SlowThreshold}, nil
	case NameModalityRestriction:
		r := ModalityRestriction{W: weight, UseMax: opts.UseMaxModalities, NoPointingInRow: opts.NoPointingInRow}
		if opts.SpecificModality != "" {
			m, err := modality.Parse(opts.SpecificModality)
			if err != nil {
				return nil, fmt.Errorf("scorer %s: %w", name, err)
			}
			r.Specific = m
		}
		if opts.LimitModality != "" {
			m, err := modality.Parse(opts.LimitModality)
			if err != nil {
				return nil, fmt.Errorf("scorer %s: %w", name, err)
			}
			r.Limit = m
		}
		return r, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownScorer, name)
}

// Defaults is the scorer set used when none is configured.
func Defaults() []Scorer {
	return []Scorer{HumanLikeness{W: 1}}
}

func weightOr1(w float64) float64 {
	if w <= 0 {
		return 1
	}
	return w
}

// #endregion registry

// #region helpers

// active yields the components that present something.
func active(c *plan.Candidate) []*plan.Component {
	out := make([]*plan.Component, 0, len(c.Components))
	for i := range c.Components {
		if !c.Components[i].Modalities.Empty() {
			out = append(out, &c.Components[i])
		}
	}
	return out
}

// penalty accumulates a sub-score together with its worst case.
type penalty struct {
	soft, max int
}

// check records one opportunity; missed adds the penalty.
func (p *penalty) check(missed bool, cost int) {
	if missed {
		p.soft -= cost
	}
	p.max -= cost
}

// #endregion helpers
