package world

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/multimodal-planner/internal/geometry"
)

// Well-known attribute keys. All keys are lower case after ingestion.
const (
	KeyID        = "worldobjectid"
	KeyType      = "worldobjecttype"
	KeyInvisible = "isinvisible"
	KeySize      = "worldobjectsizecategory"

	TypeRobot = "robot"
	TypeUser  = "user"
	TypeImage = "image"

	// Surface forms substituted for the robot and the current interlocutor.
	RobotAlias        = "I"
	InterlocutorAlias = "you"
)

var (
	ErrMissingObjectID   = errors.New("world object without worldobjectid")
	ErrMissingObjectType = errors.New("world object without worldobjecttype")
	ErrDuplicateObjectID = errors.New("duplicate worldobjectid")
	ErrUnknownObject     = errors.New("unknown world object")
)

// #region object
// Object is one attribute map describing a world object. Values are scalars,
// lists ([]any) or nested maps (map[string]any).
type Object map[string]any

// ID returns the worldobjectid, or "" when absent.
func (o Object) ID() string {
	return o.String(KeyID)
}

// Type returns the worldobjecttype, or "" when absent.
func (o Object) Type() string {
	return o.String(KeyType)
}

// String returns the scalar under key in its string form.
func (o Object) String(key string) string {
	v, ok := o[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// Bool reads a boolean attribute; "true"/"false" strings are accepted.
func (o Object) Bool(key string) (value bool, present bool) {
	v, ok := o[key]
	if !ok {
		return false, false
	}
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		return strings.EqualFold(b, "true"), true
	}
	return false, true
}

// Invisible reports the runtime isinvisible flag.
func (o Object) Invisible() bool {
	v, _ := o.Bool(KeyInvisible)
	return v
}

// Position returns the object's position if it has one.
func (o Object) Position() (geometry.Position, bool) {
	return geometry.PositionOf(o)
}

// Clone returns a deep copy.
func (o Object) Clone() Object {
	return Object(cloneMap(o))
}

// #endregion object

// #region saliency
// Saliency maps attribute name to a weight in [0,1].
type Saliency map[string]float64

// Weight returns the weight of attr and whether it is annotated.
func (s Saliency) Weight(attr string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	w, ok := s[attr]
	return w, ok
}

// #endregion saliency

// #region agents
// UserModel is a world object of type user.
type UserModel struct {
	ID         string
	Position   *geometry.Position
	Properties Object
}

// RobotModel is the world object of type robot.
type RobotModel struct {
	ID         string
	Position   *geometry.Position
	Properties Object
}

// #endregion agents

// #region model
// Model is an immutable snapshot of the world used by one planning call.
// Mutations (SetInvisible, WithSaliency) return a new snapshot.
type Model struct {
	objects  []Object
	byID     map[string]Object
	saliency Saliency
	robot    *RobotModel
	users    []UserModel
	cones    map[string][]string
}

// #endregion model
