package planner

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/multimodal-planner/internal/attrsel"
	"github.com/danielpatrickdp/multimodal-planner/internal/device"
	"github.com/danielpatrickdp/multimodal-planner/internal/gate"
	"github.com/danielpatrickdp/multimodal-planner/internal/history"
	"github.com/danielpatrickdp/multimodal-planner/internal/metrics"
	"github.com/danielpatrickdp/multimodal-planner/internal/plan"
	"github.com/danielpatrickdp/multimodal-planner/internal/presenter"
	"github.com/danielpatrickdp/multimodal-planner/internal/scorer"
	"github.com/danielpatrickdp/multimodal-planner/internal/world"
)

var (
	// ErrInfeasible is returned together with the best plan found when the
	// gate rejects it.
	ErrInfeasible = errors.New("no plan satisfies the hard constraints")
	ErrNoModel    = errors.New("planning requires a world model")
)

// #region config
// Config wires the planner. Zero values fall back to defaults in New.
type Config struct {
	Selector   attrsel.Config
	Scorers    []scorer.Scorer
	Presenters []presenter.Presenter
	Pools      device.Pools
	Gate       gate.GateConfig

	// ExhaustiveLimit is the largest joint domain searched exhaustively.
	// Bigger domains use coordinate descent.
	ExhaustiveLimit int
	// MaxSweeps bounds the coordinate descent passes.
	MaxSweeps int

	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Recorder Recorder
}

const (
	DefaultExhaustiveLimit = 4096
	DefaultMaxSweeps       = 8
)

// DefaultConfig returns a planner with speech only and the default scorer.
func DefaultConfig() Config {
	return Config{
		Selector:        attrsel.DefaultConfig(),
		Scorers:         scorer.Defaults(),
		Gate:            gate.DefaultGateConfig(),
		ExhaustiveLimit: DefaultExhaustiveLimit,
		MaxSweeps:       DefaultMaxSweeps,
	}
}

// Recorder persists a trace of each planning call.
type Recorder interface {
	RecordPlan(ctx context.Context, r *Result) error
}

// #endregion config

// #region request
// Request is one sentence to plan. All mutable process state travels with
// it; the planner itself keeps none between calls.
type Request struct {
	Sentence plan.Predicate
	// TalkingTo lists the user ids the robot addresses.
	TalkingTo []string
	Model     *world.Model
	History   *history.History
	// DryRun skips the history update.
	DryRun bool
}

// #endregion request

// #region result
// Result is the chosen plan and everything that explains it.
type Result struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Sentence  plan.Predicate   `json:"sentence"`
	TalkingTo []string         `json:"talking_to,omitempty"`
	Candidate plan.Candidate   `json:"-"`
	Breakdown scorer.Breakdown `json:"breakdown"`

	DeviceHard int               `json:"device_hard"`
	DeviceSoft int               `json:"device_soft"`
	Decision   gate.GateDecision `json:"decision"`
	// Feasible means neither the plan nor its devices broke a hard constraint.
	Feasible bool        `json:"feasible"`
	Steps    []plan.Step `json:"steps"`

	Search SearchStats `json:"search"`
	// RoundID is set when the plan was recorded in the history.
	RoundID string `json:"round_id,omitempty"`
}

// SearchStats describes how the plan was found.
type SearchStats struct {
	Exhaustive  bool  `json:"exhaustive"`
	DomainSize  int64 `json:"domain_size"`
	Evaluations int   `json:"evaluations"`
	Sweeps      int   `json:"sweeps,omitempty"`
}

// Text is the spoken sentence of the plan.
func (r *Result) Text() string {
	return plan.Text(r.Steps)
}

// #endregion result
