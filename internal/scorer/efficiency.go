package scorer

import (
	"github.com/danielpatrickdp/multimodal-planner/internal/modality"
	"github.com/danielpatrickdp/multimodal-planner/internal/plan"
)

// TechnicalEfficiency penalizes slow plans. Each element lasts as long as
// its slowest chosen channel; the average over all elements is compared
// against Fast and Slow (seconds). A negative threshold disables it.
type TechnicalEfficiency struct {
	W    float64
	Fast float64
	Slow float64
}

func (TechnicalEfficiency) Name() string { return NameTechnicalEfficiency }
func (s TechnicalEfficiency) Weight() float64 { return weightOr1(s.W) }

func (s TechnicalEfficiency) Score(c *plan.Candidate, _ *Context) Result {
	if s.Fast < 0 || s.Slow < 0 || len(c.Components) == 0 {
		return Result{}
	}
	avg := AverageDuration(c)
	switch {
	case avg <= s.Fast:
		return Result{MaxReduced: -2}
	case avg < s.Slow:
		return Result{Soft: -1, MaxReduced: -2}
	default:
		return Result{Soft: -2, MaxReduced: -2}
	}
}

// AverageDuration is the mean over all elements of the slowest chosen
// channel's estimated duration. Silent elements count as zero.
func AverageDuration(c *plan.Candidate) float64 {
	if len(c.Components) == 0 {
		return 0
	}
	var total float64
	for _, comp := range active(c) {
		var slowest float64
		for _, m := range comp.Modalities {
			d, ok := comp.Devices[m]
			if !ok || d == nil {
				continue
			}
			var content any = comp.Outputs[m]
			if m == modality.Speech {
				content = plan.Describe(comp)
			}
			if est := d.EstimateDuration(content); est > slowest {
				slowest = est
			}
		}
		total += slowest
	}
	return total / float64(len(c.Components))
}
