package gate

// #region veto-type
// VetoType enumerates hard veto categories.
type VetoType string

const (
	VetoIneligible VetoType = "ineligible_modality"
	VetoSilent     VetoType = "silent_element"
	VetoDeixis     VetoType = "deixis_without_pointing"
	VetoDevice     VetoType = "device_unassigned"
	VetoSoftFloor  VetoType = "soft_floor"
)

// #endregion veto-type

// #region veto-signal
// VetoSignal represents one detected hard veto condition.
type VetoSignal struct {
	Type         VetoType `json:"type"`
	ElementIndex int      `json:"element_index"`
	Reason       string   `json:"reason"`
}

// #endregion veto-signal

// #region gate-config
// GateConfig holds the acceptance policy.
type GateConfig struct {
	// AllowInfeasible accepts the least-bad plan even when it breaks hard
	// constraints. The vetoes are still reported.
	AllowInfeasible bool `yaml:"allow_infeasible" json:"allow_infeasible"`
	// MinQuality rejects feasible plans whose quality (0-1) falls below it.
	// Zero disables the floor.
	MinQuality float64 `yaml:"min_quality" json:"min_quality"`
}

// DefaultGateConfig rejects infeasible plans and has no quality floor.
func DefaultGateConfig() GateConfig {
	return GateConfig{}
}

// #endregion gate-config

// #region gate-decision
// GateDecision is the output of the gate evaluation.
type GateDecision struct {
	Action      string       `json:"action"` // "accept" | "reject"
	Reason      string       `json:"reason"`
	Vetoed      bool         `json:"vetoed"`
	VetoSignals []VetoSignal `json:"veto_signals,omitempty"`
	Quality     float64      `json:"quality"` // 0-1, 1 means no scorer penalized
}

const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

// #endregion gate-decision
