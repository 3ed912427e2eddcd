package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/danielpatrickdp/multimodal-planner/internal/modality"
)

// #region describe

// Describe returns the speech content for a component. Components without
// an identifier speak their element text; the others are verbalized in
// their style, keeping any words of the element text around the object id.
func Describe(c *Component) string {
	if c.Identifier == nil {
		return c.Element.Text
	}
	id := c.Identifier
	prefix := preposition(c.Element.Text, id.WorldID)
	switch c.Style {
	case modality.StyleThis:
		return prefix + "this"
	case modality.StyleThisType:
		return prefix + "this " + id.Type
	case modality.StyleTheType:
		return prefix + "the " + id.Type
	case modality.StyleIt:
		return prefix + "it"
	case modality.StyleAttributive:
		if len(id.Selected) == 0 {
			return prefix + "the " + id.Type
		}
		return prefix + id.Type + " " + strings.Join(modifiers(id.Selected), ", ")
	}
	return c.Element.Text
}

// preposition keeps the words of text that are not the object id itself,
// e.g. "on" in "on vase1". Ids match without regard to case or trailing
// punctuation; longer words such as "vase12" are kept.
func preposition(text, worldID string) string {
	var b strings.Builder
	for _, w := range strings.Fields(text) {
		if !strings.EqualFold(strings.TrimRight(w, ".,;:!?"), worldID) {
			b.WriteString(w)
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func modifiers(attrs map[string]any) []string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []string
	for _, k := range keys {
		switch v := attrs[k].(type) {
		case []any:
			words := make([]string, len(v))
			for i, e := range v {
				words[i] = fmt.Sprint(e)
			}
			out = append(out, "with "+k+" "+strings.Join(words, " "))
		case map[string]any:
			inner := make([]string, 0, len(v))
			for ik := range v {
				inner = append(inner, ik)
			}
			sort.Strings(inner)
			for _, ik := range inner {
				out = append(out, fmt.Sprintf("with %s %v", ik, v[ik]))
			}
		default:
			out = append(out, fmt.Sprintf("with %s %v", k, v))
		}
	}
	return out
}

// #endregion describe
