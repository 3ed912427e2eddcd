package plan

import (
	"strings"

	"github.com/danielpatrickdp/multimodal-planner/internal/modality"
)

// References reports whether the element denotes a world object.
func (e Element) References() bool {
	return e.ObjectID != ""
}

// Eligible reports whether m may present the component's element.
func (c *Component) Eligible(m modality.ID) bool {
	return c.Presentability[m] > EligibleThreshold
}

// EligibleModalities lists the eligible modalities in canonical order.
func (c *Component) EligibleModalities() []modality.ID {
	var out []modality.ID
	for _, m := range modality.All {
		if c.Eligible(m) {
			out = append(out, m)
		}
	}
	return out
}

// Chosen reports whether m is both chosen and eligible.
func (c *Component) Chosen(m modality.ID) bool {
	return c.Eligible(m) && c.Modalities.Contains(m)
}

// Clone copies the mutable decision fields; lookup tables are shared.
func (c Candidate) Clone() Candidate {
	out := Candidate{Predicate: c.Predicate, Components: make([]Component, len(c.Components))}
	copy(out.Components, c.Components)
	return out
}

// String renders the decisions compactly, e.g. "vase1:[speech,pointing]/this".
func (c Candidate) String() string {
	parts := make([]string, len(c.Components))
	for i, comp := range c.Components {
		label := comp.Element.Text
		if comp.Element.ObjectID != "" {
			label = comp.Element.ObjectID
		}
		s := label + ":" + comp.Modalities.String()
		if comp.Style != "" {
			s += "/" + string(comp.Style)
		}
		parts[i] = s
	}
	return strings.Join(parts, " ")
}

// Speech returns the speech content of the step, if any.
func (s Step) Speech() (string, bool) {
	for _, o := range s.Outputs {
		if o.Modality == modality.Speech {
			str, ok := o.Content.(string)
			return str, ok
		}
	}
	return "", false
}

// Text joins the speech content of all steps into the utterance.
func Text(steps []Step) string {
	var words []string
	for _, s := range steps {
		if str, ok := s.Speech(); ok && str != "" {
			words = append(words, str)
		}
	}
	return strings.Join(words, " ")
}
