package planner

import (
	"slices"
	"strings"

	"github.com/danielpatrickdp/multimodal-planner/internal/plan"
	"github.com/danielpatrickdp/multimodal-planner/internal/world"
)

// #region tag

// tag links elements to world objects and rewrites references to the
// robot and to the addressed users. An element already carrying an
// ObjectID keeps it; otherwise the first word of its text naming a world
// object wins. The input predicate is not modified.
func tag(p plan.Predicate, model *world.Model, talkingTo []string) plan.Predicate {
	out := plan.Predicate{
		Name:      p.Name,
		Modifiers: slices.Clone(p.Modifiers),
		Elements:  make([]plan.Element, len(p.Elements)),
	}
	robotID := ""
	if r := model.Robot(); r != nil {
		robotID = r.ID
	}

	for i, el := range p.Elements {
		if el.ObjectID == "" {
			el.ObjectID = findObject(el.Text, model)
		}
		el.ObjectID = strings.ToLower(el.ObjectID)
		if el.ObjectID != "" && el.ObjectType == "" {
			if obj, ok := model.Object(el.ObjectID); ok {
				el.ObjectType = obj.Type()
			}
		}

		switch {
		case el.ObjectID != "" && el.ObjectID == robotID:
			el.Text = replaceWord(el.Text, el.ObjectID, world.RobotAlias)
			el.ObjectType = world.TypeRobot
		case el.ObjectID != "" && addressed(el.ObjectID, talkingTo):
			el.Text = replaceWord(el.Text, el.ObjectID, world.InterlocutorAlias)
			el.ObjectType = world.TypeUser
		}
		out.Elements[i] = el
	}
	return out
}

func findObject(text string, model *world.Model) string {
	for _, w := range strings.Fields(text) {
		if _, ok := model.Object(strings.ToLower(w)); ok {
			return strings.ToLower(w)
		}
	}
	return ""
}

// replaceWord swaps every word equal to id (case-insensitive) for with.
func replaceWord(text, id, with string) string {
	words := strings.Fields(text)
	replaced := false
	for i, w := range words {
		if strings.EqualFold(w, id) {
			words[i] = with
			replaced = true
		}
	}
	if !replaced {
		return text
	}
	return strings.Join(words, " ")
}

func addressed(id string, talkingTo []string) bool {
	for _, u := range talkingTo {
		if strings.EqualFold(u, id) {
			return true
		}
	}
	return false
}

// #endregion tag

// #region identifiable

// identifiable reports whether el needs a referring expression: it names a
// known world object other than the robot or an addressed user.
func identifiable(el plan.Element, model *world.Model, talkingTo []string) (world.Object, bool) {
	if !el.References() {
		return nil, false
	}
	if el.ObjectType == world.TypeRobot || addressed(el.ObjectID, talkingTo) {
		return nil, false
	}
	if r := model.Robot(); r != nil && r.ID == el.ObjectID {
		return nil, false
	}
	return model.Object(el.ObjectID)
}

// #endregion identifiable
