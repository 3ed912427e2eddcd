package executor

import (
	"errors"
	"time"
)

// Wire names of the robot bridge service. Messages are google.protobuf.Struct
// so no generated code is needed on either side.
const (
	ServiceName   = "mmf.executor.v1.Executor"
	ExecuteMethod = "/" + ServiceName + "/Execute"
)

var (
	// ErrRejected is returned when the bridge answers ok=false.
	ErrRejected = errors.New("bridge rejected command")
	ErrNoDevice = errors.New("output has no device")
)

// #region client-config
// ClientConfig configures the bridge connection and its retry policy.
type ClientConfig struct {
	Addr string `yaml:"addr" json:"addr"`
	// Timeout bounds the first attempt; each retry gets one more Timeout.
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`
	MaxRetries int           `yaml:"max_retries" json:"max_retries"`
	Backoff    time.Duration `yaml:"backoff" json:"backoff"`
}

// DefaultClientConfig returns 2 retries (3 attempts) with a 2s first timeout.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Addr:       "localhost:50071",
		Timeout:    2 * time.Second,
		MaxRetries: 2,
		Backoff:    100 * time.Millisecond,
	}
}

// #endregion client-config

// #region report
// OutputReport is the outcome of one executed output.
type OutputReport struct {
	Modality string        `json:"modality"`
	Device   string        `json:"device"`
	Took     time.Duration `json:"took"`
	Error    string        `json:"error,omitempty"`
}

// StepReport groups the outputs of one step.
type StepReport struct {
	ElementIndex int            `json:"element_index"`
	Outputs      []OutputReport `json:"outputs"`
}

// Report is the outcome of running a plan. Steps after a failed one are
// not run and not reported.
type Report struct {
	Steps []StepReport `json:"steps"`
}

// #endregion report
