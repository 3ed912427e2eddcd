package attrsel

import (
	"fmt"

	"github.com/danielpatrickdp/multimodal-planner/internal/world"
)

// #region identify

// Identify builds the referring expression for the world object target as
// it appears in element text. Distractors are the visible objects of the
// same type. Outcomes:
//   - no distractors: Success with nil Selected, the type alone suffices
//   - no candidates at all: Success false
//   - partial candidates: their union, Partial and Success set
//   - otherwise: the candidate picked by cfg.Strategy
func Identify(model *world.Model, target world.Object, elementText string, cfg Config) (Identifier, error) {
	if target.ID() == "" {
		return Identifier{}, fmt.Errorf("identify %q: %w", elementText, world.ErrMissingObjectID)
	}
	if target.Type() == "" {
		return Identifier{}, fmt.Errorf("identify %q: %w", target.ID(), world.ErrMissingObjectType)
	}
	id := Identifier{
		ElementText: elementText,
		WorldID:     target.ID(),
		Type:        target.Type(),
	}

	distractors := model.Distractors(target)
	if len(distractors) == 0 {
		id.Success = true
		return id, nil
	}

	cands, err := Compute(target, distractors, model.Saliency(), cfg)
	if err != nil {
		return id, fmt.Errorf("identify %s: %w", target.ID(), err)
	}
	if len(cands.Sets) == 0 {
		return id, nil
	}

	if cands.Partial {
		id.Selected = Union(cands.Sets)
		id.Partial = true
		id.Success = true
		return id, nil
	}

	selected, err := Select(cfg.Strategy, cands.Sets, model.Saliency(), cfg.Threshold)
	if err != nil {
		return id, fmt.Errorf("identify %s: %w", target.ID(), err)
	}
	id.Selected = selected
	id.Success = selected != nil
	return id, nil
}

// #endregion identify
