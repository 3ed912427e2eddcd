package device

import (
	"context"
	"errors"

	"github.com/danielpatrickdp/multimodal-planner/internal/geometry"
	"github.com/danielpatrickdp/multimodal-planner/internal/modality"
)

// ErrNoDevice is reported when a modality needs a device but its pool is empty.
var ErrNoDevice = errors.New("no device for modality")

// #region device
// Device is one physical output channel endpoint.
type Device interface {
	Name() string
	Modality() modality.ID
	// Position is the fixed mounting point, if known.
	Position() (geometry.Position, bool)
	// EstimateDuration predicts how long presenting content takes, in seconds.
	EstimateDuration(content any) float64
	// Execute presents content and blocks until done or ctx ends.
	Execute(ctx context.Context, content any) error
}

// Bridge forwards a command to the robot side. Devices without a bridge
// only record what they would have done.
type Bridge interface {
	Send(ctx context.Context, cmd Command) error
}

// Command is what a device asks the bridge to perform.
type Command struct {
	Device   string
	Modality modality.ID
	Content  any
}

// #endregion device

// #region spec
// Spec is the configuration of one device.
type Spec struct {
	Name     string             `yaml:"name" json:"name"`
	Modality string             `yaml:"modality" json:"modality"`
	Position *geometry.Position `yaml:"position,omitempty" json:"position,omitempty"`
	// SecondsPerWord applies to textual content, Duration to everything else.
	SecondsPerWord float64 `yaml:"seconds_per_word,omitempty" json:"seconds_per_word,omitempty"`
	Duration       float64 `yaml:"duration,omitempty" json:"duration,omitempty"`
}

// #endregion spec

// #region assignment
// Request describes one (element, modality) pair that needs a device.
type Request struct {
	ElementIndex int
	Modality     modality.ID
	// Object is the referenced object's position, Interlocutor the position
	// of the user being addressed. Either may be nil.
	Object       *geometry.Position
	Interlocutor *geometry.Position
}

// Assignment is the device chosen for a request along with the pool it was
// chosen from.
type Assignment struct {
	Request
	Device Device
	Pool   []Device
}

// #endregion assignment
