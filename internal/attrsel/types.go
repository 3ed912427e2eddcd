package attrsel

import (
	"errors"

	"github.com/danielpatrickdp/multimodal-planner/internal/world"
)

var (
	// ErrTooManyAttributes guards the power set enumeration.
	ErrTooManyAttributes = errors.New("too many discriminating attributes")
	ErrUnknownStrategy   = errors.New("unknown attribute selection strategy")
)

// #region strategy
// Strategy picks one identifier out of the valid candidate set.
type Strategy string

const (
	StrategyShortest                 Strategy = "shortest"
	StrategyMostSalient              Strategy = "most_salient"
	StrategyShortestSalientThreshold Strategy = "shortest_most_salient_above_threshold"
	StrategyMaxSaliencyAndShortness  Strategy = "maximized_saliency_and_shortness"
)

// Valid reports whether s names a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyShortest, StrategyMostSalient, StrategyShortestSalientThreshold, StrategyMaxSaliencyAndShortness:
		return true
	}
	return false
}

// #endregion strategy

// #region config
// Config controls pruning, selection and the enumeration bound.
type Config struct {
	Strategy Strategy
	// Threshold is the raw saliency threshold of the threshold strategy.
	// Negative means unset and falls back to DefaultThreshold.
	Threshold float64
	// Prune drops target attributes whose saliency weight is below it.
	Prune float64
	// MaxAttributes bounds the union size before the power set is built.
	MaxAttributes int
}

const (
	DefaultThreshold     = 0.8
	DefaultPrune         = 0.5
	DefaultMaxAttributes = 12
)

// DefaultConfig returns the selection defaults.
func DefaultConfig() Config {
	return Config{
		Strategy:      StrategyShortestSalientThreshold,
		Threshold:     -1,
		Prune:         DefaultPrune,
		MaxAttributes: DefaultMaxAttributes,
	}
}

// #endregion config

// #region candidates
// Candidates is the outcome of the discrimination and enumeration steps.
type Candidates struct {
	// Sets are valid candidates in canonical order, or the non-empty
	// per-distractor discriminators when Partial is set.
	Sets []world.Object
	// Partial means no candidate covers every distractor.
	Partial bool
	// PerDistractor holds one discriminator map per distractor, aligned
	// with the distractor slice.
	PerDistractor []world.Object
}

// #endregion candidates

// #region identifier
// Identifier is the referring expression chosen for one sentence element.
// Selected is nil when the type alone suffices or when selection failed;
// Success tells the two apart.
type Identifier struct {
	ElementText string       `json:"element"`
	WorldID     string       `json:"world_id"`
	Type        string       `json:"type"`
	Selected    world.Object `json:"selected_attributes,omitempty"`
	Partial     bool         `json:"partial"`
	Success     bool         `json:"success"`
}

// #endregion identifier
