package scorer

import (
	"fmt"

	"github.com/danielpatrickdp/multimodal-planner/internal/device"
	"github.com/danielpatrickdp/multimodal-planner/internal/modality"
	"github.com/danielpatrickdp/multimodal-planner/internal/plan"
)

// OutputHistory keeps consecutive utterances coherent: objects mentioned in
// the previous round are referred back to with "it" or "the <type>" rather
// than described or pointed at again, and images still on screen are not
// shown twice.
type OutputHistory struct {
	W float64
}

func (OutputHistory) Name() string { return NameOutputHistory }
func (s OutputHistory) Weight() float64 { return weightOr1(s.W) }

func (OutputHistory) Score(c *plan.Candidate, ctx *Context) Result {
	if ctx == nil || ctx.History == nil {
		return Result{}
	}
	var style, pointing, image penalty
	last := ctx.History.Last()

	for _, comp := range active(c) {
		el := comp.Element
		if el.ObjectID == "" || el.ObjectType == "" {
			continue
		}
		if _, mentioned := last.Steps[el.ObjectID]; mentioned {
			sameType, all := 0, 0
			for id := range last.Steps {
				typ, known := ctx.History.TypeOf(id)
				if !known {
					continue
				}
				all++
				if typ == el.ObjectType {
					sameType++
				}
			}
			if sameType < 2 && comp.Identifier != nil {
				switch {
				case all < 2:
					style.check(comp.Style != modality.StyleIt, 1)
				case soleOfType(c, comp):
					style.check(comp.Style != modality.StyleTheType, 1)
				default:
					style.max--
				}
			}
			if comp.Eligible(modality.Pointing) {
				pointing.check(comp.Modalities.Contains(modality.Pointing), 1)
			}
		}

		if comp.Chosen(modality.Image) {
			for _, r := range ctx.History.Rounds() {
				step, ok := r.Steps[el.ObjectID]
				if !ok {
					continue
				}
				image.check(stillDisplayed(step, ctx.Pools), 1)
			}
		}
	}
	return Result{
		Soft:       3 * (style.soft + pointing.soft + image.soft),
		MaxReduced: 3 * (style.max + pointing.max + image.max),
	}
}

// soleOfType reports whether no other element of the candidate references a
// different object of the same type.
func soleOfType(c *plan.Candidate, comp *plan.Component) bool {
	for i := range c.Components {
		other := c.Components[i].Element
		if other.ObjectID == "" || other.ObjectType == "" {
			continue
		}
		if other.ObjectType == comp.Element.ObjectType && other.ObjectID != comp.Element.ObjectID {
			return false
		}
	}
	return true
}

func stillDisplayed(step plan.Step, pools device.Pools) bool {
	for _, o := range step.Outputs {
		if o.Modality != modality.Image {
			continue
		}
		d := o.Device
		if d == nil && pools != nil {
			d, _ = pools.Find(o.DeviceName)
		}
		if disp, ok := d.(device.Displayer); ok && disp.IsDisplaying(fmt.Sprint(o.Content)) {
			return true
		}
	}
	return false
}
