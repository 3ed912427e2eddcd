package planner

import (
	"slices"

	"github.com/danielpatrickdp/multimodal-planner/internal/modality"
	"github.com/danielpatrickdp/multimodal-planner/internal/plan"
	"github.com/danielpatrickdp/multimodal-planner/internal/scorer"
)

// #region domain

// maxPairDomain bounds the joint modality sets tried by a pair move.
const maxPairDomain = 4096

// choice is one (modality set, style) decision for a component.
type choice struct {
	set   modality.Set
	style modality.Style
}

// domain lists the choices of a component in canonical order: modality
// sets by PowerSet order over the eligible modalities, then styles. Only
// components with an identifier get a style.
func domain(c *plan.Component) []choice {
	sets := modality.PowerSet(c.EligibleModalities())
	styles := []modality.Style{""}
	if c.Identifier != nil {
		styles = modality.Styles
	}
	out := make([]choice, 0, len(sets)*len(styles))
	for _, s := range sets {
		for _, st := range styles {
			out = append(out, choice{set: s, style: st})
		}
	}
	return out
}

// domainSize is the product of the per-component domain sizes, capped at
// limit+1 so the caller can tell "over the limit" without overflowing.
func domainSize(domains [][]choice, limit int) int64 {
	size := int64(1)
	for _, d := range domains {
		size *= int64(len(d))
		if size > int64(limit) {
			return int64(limit) + 1
		}
	}
	return size
}

func apply(c *plan.Candidate, i int, ch choice) {
	c.Components[i].Modalities = ch.set
	c.Components[i].Style = ch.style
}

// #endregion domain

// #region search

// searcher scores full candidates; every call to eval counts once.
type searcher struct {
	ctx     *scorer.Context
	scorers []scorer.Scorer
	evals   int
}

func (s *searcher) eval(c *plan.Candidate) scorer.Breakdown {
	s.evals++
	return scorer.Evaluate(c, s.ctx, s.scorers)
}

// exhaustive enumerates every combination, first component slowest. The
// first candidate seen with the best score wins.
func (s *searcher) exhaustive(base plan.Candidate, domains [][]choice) (plan.Candidate, scorer.Breakdown) {
	idx := make([]int, len(domains))
	cur := base.Clone()
	for i, d := range domains {
		apply(&cur, i, d[0])
	}
	best := cur.Clone()
	bestScore := s.eval(&cur)

	for next(idx, domains) {
		for i, d := range domains {
			apply(&cur, i, d[idx[i]])
		}
		if b := s.eval(&cur); scorer.Better(b, bestScore) {
			best, bestScore = cur.Clone(), b
		}
	}
	return best, bestScore
}

// next advances idx like an odometer whose last digit turns fastest.
func next(idx []int, domains [][]choice) bool {
	for i := len(idx) - 1; i >= 0; i-- {
		idx[i]++
		if idx[i] < len(domains[i]) {
			return true
		}
		idx[i] = 0
	}
	return false
}

// descend climbs from every seed in turn and keeps the best result; an
// earlier seed wins ties. It returns the total number of sweeps.
func (s *searcher) descend(seeds []plan.Candidate, domains [][]choice, maxSweeps int) (plan.Candidate, scorer.Breakdown, int) {
	var (
		best      plan.Candidate
		bestScore scorer.Breakdown
		sweeps    int
	)
	for k, sd := range seeds {
		c, b, n := s.climb(sd, domains, maxSweeps)
		sweeps += n
		if k == 0 || scorer.Better(b, bestScore) {
			best, bestScore = c, b
		}
	}
	return best, bestScore, sweeps
}

// climb runs coordinate descent from seed. A sweep revisits every
// component and keeps the first strictly better choice for it while the
// others stay fixed. When no single change helps, pairs of components
// change their modality sets together, since duration averages and
// row rules couple neighbouring elements. It stops after a sweep that
// improves nothing or after maxSweeps.
func (s *searcher) climb(seed plan.Candidate, domains [][]choice, maxSweeps int) (plan.Candidate, scorer.Breakdown, int) {
	best := seed.Clone()
	bestScore := s.eval(&best)
	sets := make([][]modality.Set, len(best.Components))
	for i := range best.Components {
		sets[i] = modality.PowerSet(best.Components[i].EligibleModalities())
	}

	sweeps := 0
	for sweeps < maxSweeps {
		sweeps++
		improved := false
		for i, d := range domains {
			cur := best.Clone()
			for _, ch := range d {
				apply(&cur, i, ch)
				if b := s.eval(&cur); scorer.Better(b, bestScore) {
					best, bestScore = cur.Clone(), b
					improved = true
				}
			}
		}
		if !improved {
			improved = s.pairs(&best, &bestScore, sets)
		}
		if !improved {
			break
		}
	}
	return best, bestScore, sweeps
}

// pairs tries every joint change of the modality sets of two components,
// styles unchanged. Pairs whose joint domain exceeds maxPairDomain are
// skipped.
func (s *searcher) pairs(best *plan.Candidate, bestScore *scorer.Breakdown, sets [][]modality.Set) bool {
	improved := false
	for i := 0; i < len(sets); i++ {
		for j := i + 1; j < len(sets); j++ {
			if len(sets[i])*len(sets[j]) > maxPairDomain {
				continue
			}
			cur := best.Clone()
			for _, si := range sets[i] {
				cur.Components[i].Modalities = si
				for _, sj := range sets[j] {
					cur.Components[j].Modalities = sj
					if b := s.eval(&cur); scorer.Better(b, *bestScore) {
						*best, *bestScore = cur.Clone(), b
						improved = true
					}
				}
			}
		}
	}
	return improved
}

// seeds are the starting points of descent: every eligible modality, then
// the leanest plan (speech alone, or the first single modality). Both use
// the attributive style where there is an identifier.
func seeds(base plan.Candidate) []plan.Candidate {
	full, lean := base.Clone(), base.Clone()
	for i := range base.Components {
		eligible := base.Components[i].EligibleModalities()
		full.Components[i].Modalities = modality.NewSet(eligible...)
		switch {
		case slices.Contains(eligible, modality.Speech):
			lean.Components[i].Modalities = modality.NewSet(modality.Speech)
		case len(eligible) > 0:
			lean.Components[i].Modalities = modality.NewSet(eligible[0])
		default:
			lean.Components[i].Modalities = modality.NewSet()
		}
		style := modality.Style("")
		if base.Components[i].Identifier != nil {
			style = modality.StyleAttributive
		}
		full.Components[i].Style = style
		lean.Components[i].Style = style
	}
	return []plan.Candidate{full, lean}
}

// #endregion search
