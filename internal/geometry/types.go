package geometry

// #region position
// Position is a point (or direction) in the robot's world frame, in meters.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// #endregion position

// #region size-category
// SizeCategory groups objects for the attention cone radius.
type SizeCategory string

const (
	SizeBig    SizeCategory = "big"
	SizeMedium SizeCategory = "medium"
	SizeSmall  SizeCategory = "small"
)

// #endregion size-category

// #region cone
// Cone is the attention cone from an observer to one object.
type Cone struct {
	ObjectID  string
	Direction Position // observer -> object, not normalized
	Radius    float64
	HalfAngle float64 // radians
}

// #endregion cone
