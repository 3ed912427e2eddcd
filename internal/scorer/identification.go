package scorer

import (
	"github.com/danielpatrickdp/multimodal-planner/internal/modality"
	"github.com/danielpatrickdp/multimodal-planner/internal/plan"
)

// ObjectIdentification matches the verbal style to how well the attribute
// selector could identify the object, and discourages bare deixis when a
// same-type object sits inside the referenced object's attention cone.
type ObjectIdentification struct {
	W float64
}

func (ObjectIdentification) Name() string { return NameObjectIdentification }
func (s ObjectIdentification) Weight() float64 { return weightOr1(s.W) }

func (ObjectIdentification) Score(c *plan.Candidate, ctx *Context) Result {
	var pointDesc, styleDesc, pointNear, styleNear penalty
	for _, comp := range active(c) {
		id := comp.Identifier
		if id == nil {
			continue
		}
		pointed := comp.Modalities.Contains(modality.Pointing)
		switch {
		case !id.Success:
			if comp.Eligible(modality.Pointing) {
				pointDesc.check(!pointed, 1)
			}
			styleDesc.check(comp.Style != modality.StyleTheType, 1)
		case id.Partial:
			if comp.Eligible(modality.Pointing) {
				pointDesc.check(!pointed, 1)
			}
			styleDesc.check(comp.Style != modality.StyleAttributive && comp.Style != modality.StyleThisType, 1)
		default:
			styleDesc.check(comp.Style != modality.StyleAttributive, 1)
		}

		if !comp.Eligible(modality.Pointing) || !id.Success || id.Partial || ctx == nil || ctx.Model == nil {
			continue
		}
		if !sameTypeNearby(ctx, comp.Element.ObjectID, id.Type) {
			continue
		}
		switch comp.Style {
		case modality.StyleThis:
			styleNear.soft -= 2
		case modality.StyleAttributive:
		default:
			styleNear.soft--
		}
		styleNear.max -= 2
		pointNear.check(pointed, 1)
	}
	return Result{
		Soft:       pointDesc.soft + styleDesc.soft + 3*pointNear.soft + styleNear.soft,
		MaxReduced: pointDesc.max + styleDesc.max + 3*pointNear.max + styleNear.max,
	}
}

func sameTypeNearby(ctx *Context, id, typ string) bool {
	for _, o := range ctx.Model.ConeNeighbors(id) {
		if o.Type() == typ {
			return true
		}
	}
	return false
}
