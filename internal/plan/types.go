package plan

import (
	"github.com/danielpatrickdp/multimodal-planner/internal/attrsel"
	"github.com/danielpatrickdp/multimodal-planner/internal/device"
	"github.com/danielpatrickdp/multimodal-planner/internal/modality"
)

// EligibleThreshold is the presentability a modality must exceed before it
// may present an element.
const EligibleThreshold = 0.5

// #region predicate
// Element is one slot of the sentence being produced. ObjectID and
// ObjectType are set when the slot denotes a world object.
type Element struct {
	Text       string `json:"text" yaml:"text"`
	ObjectID   string `json:"object_id,omitempty" yaml:"object_id,omitempty"`
	ObjectType string `json:"object_type,omitempty" yaml:"object_type,omitempty"`
}

// Predicate is the sentence handed to the planner: a predicate name plus
// its ordered elements.
type Predicate struct {
	Name      string    `json:"name" yaml:"name"`
	Modifiers []string  `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Elements  []Element `json:"elements" yaml:"elements"`
}

// #endregion predicate

// #region component
// Component is the decision for one element inside a candidate plan.
type Component struct {
	Index   int
	Element Element

	// Presentability holds one value in [0,1] per modality.
	Presentability map[modality.ID]float64
	// Outputs is what each modality would present for this element.
	Outputs map[modality.ID]any
	// Devices holds the assigned device per eligible modality.
	Devices map[modality.ID]device.Device
	// Identifier is nil for elements that do not reference an identifiable
	// world object.
	Identifier *attrsel.Identifier

	Modalities modality.Set
	// Style is empty when Identifier is nil.
	Style modality.Style
}

// Candidate is one full assignment of (modality set, style) to every
// element of a predicate.
type Candidate struct {
	Predicate  Predicate
	Components []Component
}

// #endregion component

// #region output
// Output is a single (modality, device, content) triple to be issued.
type Output struct {
	Modality   modality.ID   `json:"modality"`
	DeviceName string        `json:"device"`
	Content    any           `json:"content"`
	Device     device.Device `json:"-"`
}

// Step groups the outputs realizing one element; its outputs run in
// parallel, steps run in order.
type Step struct {
	ElementIndex int      `json:"element_index"`
	ObjectID     string   `json:"object_id,omitempty"`
	ObjectType   string   `json:"object_type,omitempty"`
	Outputs      []Output `json:"outputs"`
}

// #endregion output
