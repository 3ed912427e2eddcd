package eval

import (
	"fmt"

	"github.com/danielpatrickdp/multimodal-planner/internal/planner"
	"github.com/danielpatrickdp/multimodal-planner/internal/scorer"
)

// #region eval-harness
// EvalHarness rates finished plans so scorer configurations can be
// compared across scenarios.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run checks r. Every scorer contributes a "<name>_normalized" metric
// (penalty over worst case, 0 best).
func (h *EvalHarness) Run(r *planner.Result) EvalResult {
	var metrics []EvalMetric
	passed := true
	var failReasons []string

	// 1. Hard constraints, plan and devices together
	hard := r.Breakdown.Hard + r.DeviceHard
	metrics = append(metrics, EvalMetric{Name: "hard", Value: float64(hard), Pass: hard == 0})
	if hard != 0 {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("%d hard violation(s)", -hard))
	}

	// 2. Weighted soft score: informational
	metrics = append(metrics, EvalMetric{Name: "soft", Value: r.Breakdown.Soft, Pass: true})

	// 3. Per-scorer normalized penalty
	for _, s := range r.Breakdown.Scorers {
		n := s.Normalized()
		pass := n <= h.config.MaxNormalizedPenalty
		metrics = append(metrics, EvalMetric{Name: s.Name + "_normalized", Value: n, Pass: pass})
		if !pass {
			passed = false
			failReasons = append(failReasons, fmt.Sprintf("%s at %.2f of its worst case", s.Name, n))
		}
	}

	// 4. Gate quality
	quality := r.Decision.Quality
	qualityPass := quality >= h.config.MinQuality
	metrics = append(metrics, EvalMetric{Name: "quality", Value: quality, Pass: qualityPass})
	if !qualityPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("quality %.4f below %.4f", quality, h.config.MinQuality))
	}

	// 5. Average element duration
	avg := scorer.AverageDuration(&r.Candidate)
	durationPass := h.config.MaxAverageDuration <= 0 || avg <= h.config.MaxAverageDuration
	metrics = append(metrics, EvalMetric{Name: "average_duration", Value: avg, Pass: durationPass})
	if !durationPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("average duration %.2fs exceeds %.2fs", avg, h.config.MaxAverageDuration))
	}

	// 6. Search effort: informational
	metrics = append(metrics, EvalMetric{Name: "evaluations", Value: float64(r.Search.Evaluations), Pass: true})

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return EvalResult{
		Passed:  passed,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness
