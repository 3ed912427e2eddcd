package scorer

import (
	"errors"

	"github.com/danielpatrickdp/multimodal-planner/internal/device"
	"github.com/danielpatrickdp/multimodal-planner/internal/history"
	"github.com/danielpatrickdp/multimodal-planner/internal/plan"
	"github.com/danielpatrickdp/multimodal-planner/internal/world"
)

// ErrUnknownScorer is returned by New for names it does not know.
var ErrUnknownScorer = errors.New("unknown scorer")

// Scorer names accepted by New and used in configuration.
const (
	NameHumanLikeness        = "human_likeness"
	NameObjectIdentification = "object_identification"
	NameOutputHistory        = "output_history"
	NameUserInfo             = "user_info"
	NameTechnicalEfficiency  = "technical_efficiency"
	NameModalityRestriction  = "modality_restriction"
)

// #region context
// Context is the shared state a scorer may read: the world snapshot, the
// output history, who the robot is talking to, and the device pools.
type Context struct {
	Model     *world.Model
	History   *history.History
	TalkingTo []string
	Pools     device.Pools
}

// #endregion context

// #region scorer
// Result is one scorer's verdict on a candidate. Soft is a penalty (<= 0);
// MaxReduced is the largest penalty the scorer could have given, used only
// for normalization.
type Result struct {
	Soft       int
	MaxReduced int
}

// Scorer rates candidate plans.
type Scorer interface {
	Name() string
	Weight() float64
	Score(c *plan.Candidate, ctx *Context) Result
}

// #endregion scorer

// #region breakdown
// Violation kinds.
const (
	KindIneligible = "ineligible_modality"
	KindSilent     = "silent_element"
	KindDeixis     = "deixis_without_pointing"
)

// Violation is one broken hard constraint.
type Violation struct {
	ElementIndex int    `json:"element_index"`
	Kind         string `json:"kind"`
	Reason       string `json:"reason"`
}

// ScorerResult is one row of a Breakdown.
type ScorerResult struct {
	Name       string  `json:"name"`
	Weight     float64 `json:"weight"`
	Soft       int     `json:"soft"`
	MaxReduced int     `json:"max_reduced"`
}

// Breakdown is the full evaluation of a candidate.
type Breakdown struct {
	Hard       int            `json:"hard"`
	Soft       float64        `json:"soft"`
	Violations []Violation    `json:"violations,omitempty"`
	Scorers    []ScorerResult `json:"scorers"`
}

// #endregion breakdown

// #region options
// Options configures scorers built by New.
type Options struct {
	// FastThreshold and SlowThreshold are average element durations in
	// seconds; negative disables the efficiency penalty.
	FastThreshold float64 `yaml:"fast_threshold" json:"fast_threshold"`
	SlowThreshold float64 `yaml:"slow_threshold" json:"slow_threshold"`

	UseMaxModalities bool   `yaml:"use_max_modalities" json:"use_max_modalities"`
	SpecificModality string `yaml:"specific_modality,omitempty" json:"specific_modality,omitempty"`
	LimitModality    string `yaml:"limit_modality,omitempty" json:"limit_modality,omitempty"`
	NoPointingInRow  bool   `yaml:"no_pointing_in_row" json:"no_pointing_in_row"`
}

// DefaultOptions disables every optional rule.
func DefaultOptions() Options {
	return Options{FastThreshold: -1, SlowThreshold: -1}
}

// #endregion options
