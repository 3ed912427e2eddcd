package scorer

import (
	"github.com/danielpatrickdp/multimodal-planner/internal/modality"
	"github.com/danielpatrickdp/multimodal-planner/internal/plan"
	"github.com/danielpatrickdp/multimodal-planner/internal/world"
)

// HumanLikeness prefers output the way a person would give it: always
// speak, use on-topic gestures, look at what is mentioned, point at things
// but never at people or robots, and show available images.
type HumanLikeness struct {
	W float64
}

func (HumanLikeness) Name() string { return NameHumanLikeness }
func (s HumanLikeness) Weight() float64 { return weightOr1(s.W) }

func (HumanLikeness) Score(c *plan.Candidate, _ *Context) Result {
	var speech, gestures, gaze, pointing, image penalty
	for _, comp := range active(c) {
		speech.check(!comp.Modalities.Contains(modality.Speech), 1)

		for _, m := range []modality.ID{modality.NoddingHeadshaking, modality.Waving} {
			if comp.Eligible(m) {
				gestures.check(!comp.Modalities.Contains(m), 1)
			}
		}

		if typ := comp.Element.ObjectType; typ != "" {
			if comp.Eligible(modality.Gaze) {
				gaze.check(!comp.Modalities.Contains(modality.Gaze), 1)
			}
			if typ == world.TypeUser || typ == world.TypeRobot {
				if comp.Eligible(modality.Pointing) {
					pointing.check(comp.Modalities.Contains(modality.Pointing), 1)
				}
			} else if has(comp, modality.Gaze) && has(comp, modality.Pointing) && comp.Eligible(modality.Pointing) {
				pointing.check(!comp.Modalities.Contains(modality.Pointing), 1)
			}
		}

		if comp.Eligible(modality.Image) {
			image.check(!comp.Modalities.Contains(modality.Image), 1)
		}
	}
	return Result{
		Soft:       speech.soft + gestures.soft + gaze.soft + 2*pointing.soft + image.soft,
		MaxReduced: speech.max + gestures.max + gaze.max + 2*pointing.max + image.max,
	}
}

// has reports whether a presenter for m rated the component at all.
func has(comp *plan.Component, m modality.ID) bool {
	_, ok := comp.Presentability[m]
	return ok
}
