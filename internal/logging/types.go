package logging

import (
	"time"

	"github.com/danielpatrickdp/multimodal-planner/internal/gate"
	"github.com/danielpatrickdp/multimodal-planner/internal/plan"
	"github.com/danielpatrickdp/multimodal-planner/internal/scorer"
)

// #region plan-entry
// PlanEntry is a single row in the plan_log table.
type PlanEntry struct {
	PlanID     string
	Predicate  string
	Text       string
	Decision   string // "accept" | "reject"
	Reason     string
	Hard       int
	Soft       float64
	Feasible   bool
	RecordJSON string
	CreatedAt  time.Time
}

// #endregion plan-entry

// #region plan-record
// PlanRecord captures the inputs and verdict of one planning call.
// Serialized as JSON into plan_log.record_json so the call can be replayed.
type PlanRecord struct {
	PlanID    string         `json:"plan_id"`
	Sentence  plan.Predicate `json:"sentence"`
	TalkingTo []string       `json:"talking_to,omitempty"`
	Candidate string         `json:"candidate"`

	Breakdown  scorer.Breakdown `json:"breakdown"`
	DeviceHard int              `json:"device_hard"`
	DeviceSoft int              `json:"device_soft"`

	// Gate output
	Decision gate.GateDecision `json:"decision"`

	Exhaustive  bool   `json:"exhaustive"`
	Evaluations int    `json:"evaluations"`
	RoundID     string `json:"round_id,omitempty"`
}

// #endregion plan-record
