package attrsel

import (
	"fmt"
	"math"
	"sort"

	"github.com/danielpatrickdp/multimodal-planner/internal/world"
)

// #region saliency-value

// Sigmoid maps [0,inf) onto [0,1) via x/sqrt(1+x^2).
func Sigmoid(x float64) float64 {
	return x / math.Sqrt(1+x*x)
}

// SaliencyValue is the sigmoid of the summed weights of the attributes of
// set that are annotated in sal. A nil annotation yields 0.
func SaliencyValue(set world.Object, sal world.Saliency) float64 {
	var sum float64
	for k := range set {
		if w, ok := sal.Weight(k); ok {
			sum += w
		}
	}
	return Sigmoid(sum)
}

// #endregion saliency-value

// #region select

// Select applies strategy to sets. sets is reordered canonically first;
// nil is returned for an empty input.
func Select(strategy Strategy, sets []world.Object, sal world.Saliency, threshold float64) (world.Object, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	ordered := make([]world.Object, len(sets))
	copy(ordered, sets)
	SortCanonical(ordered)

	switch strategy {
	case StrategyShortest:
		return Shortest(ordered), nil
	case StrategyMostSalient:
		return MostSalient(ordered, sal), nil
	case StrategyShortestSalientThreshold, "":
		if threshold < 0 {
			threshold = DefaultThreshold
		}
		return ShortestMostSalientAboveThreshold(ordered, sal, threshold), nil
	case StrategyMaxSaliencyAndShortness:
		return MaximizedSaliencyAndShortness(ordered, sal), nil
	}
	return nil, fmt.Errorf("%q: %w", strategy, ErrUnknownStrategy)
}

// #endregion select

// #region strategies
// All strategies below expect canonically ordered input.

// Shortest returns the first candidate of minimal size.
func Shortest(sets []world.Object) world.Object {
	return sets[0]
}

// MostSalient returns the first candidate of maximal saliency value.
func MostSalient(sets []world.Object, sal world.Saliency) world.Object {
	best := sets[0]
	bestVal := SaliencyValue(best, sal)
	for _, s := range sets[1:] {
		if v := SaliencyValue(s, sal); v > bestVal {
			best, bestVal = s, v
		}
	}
	return best
}

// ShortestMostSalientAboveThreshold scans by ascending size and keeps the
// most salient candidate whose value clears the sigmoid-normalized
// threshold, stopping at the first size larger than an accepted one. If
// nothing clears the threshold the last (largest) candidate is returned.
func ShortestMostSalientAboveThreshold(sets []world.Object, sal world.Saliency, threshold float64) world.Object {
	limit := Sigmoid(threshold)
	var best world.Object
	bestVal := 0.0
	bestSize := len(sets[0])
	found := false

	for _, s := range sets {
		if len(s) > bestSize && found {
			break
		}
		v := SaliencyValue(s, sal)
		if v > limit && v > bestVal {
			best, bestVal, bestSize = s, v, len(s)
			found = true
		}
	}
	if !found || len(best) == 0 {
		return sets[len(sets)-1]
	}
	return best
}

// MaximizedSaliencyAndShortness ranks candidates by size (ascending) and by
// saliency (descending, two decimals), normalizes both dense ranks by their
// rank count and minimizes sum + |difference|. First minimum wins.
func MaximizedSaliencyAndShortness(sets []world.Object, sal world.Saliency) world.Object {
	n := len(sets)
	sizeRank := make([]int, n)
	sizeRanks := 1
	for i := 1; i < n; i++ {
		if len(sets[i]) != len(sets[i-1]) {
			sizeRanks++
		}
		sizeRank[i] = sizeRanks - 1
	}

	rounded := make([]float64, n)
	for i, s := range sets {
		rounded[i] = math.Round(SaliencyValue(s, sal)*100) / 100
	}
	bySal := make([]int, n)
	for i := range bySal {
		bySal[i] = i
	}
	sort.SliceStable(bySal, func(a, b int) bool {
		return rounded[bySal[a]] > rounded[bySal[b]]
	})
	salRank := make([]int, n)
	salRanks := 1
	for k := 1; k < n; k++ {
		if rounded[bySal[k]] != rounded[bySal[k-1]] {
			salRanks++
		}
		salRank[bySal[k]] = salRanks - 1
	}

	best := 0
	bestScore := math.Inf(1)
	for i := range sets {
		a := float64(sizeRank[i]+1) / float64(sizeRanks)
		b := float64(salRank[i]+1) / float64(salRanks)
		score := a + b + math.Abs(a-b)
		if score < bestScore {
			best, bestScore = i, score
		}
	}
	return sets[best]
}

// #endregion strategies
