package replay

import (
	"embed"
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/multimodal-planner/internal/device"
	"github.com/danielpatrickdp/multimodal-planner/internal/plan"
	"github.com/danielpatrickdp/multimodal-planner/internal/world"
)

//go:embed scenarios/*.yaml
var builtin embed.FS

// #region scenario-types

// Scenario is a scripted conversation: a world, the people the robot talks
// to, and the sentences it says in order.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	TalkingTo   []string       `yaml:"talking_to"`
	Saliency    world.Saliency `yaml:"saliency"`
	Objects     []world.Object `yaml:"objects"`
	// Devices replaces the configured device pools when set.
	Devices []device.Spec `yaml:"devices,omitempty"`
	Turns   []Turn        `yaml:"turns"`
}

// History operations applied before a turn is planned.
const (
	HistoryClearLast = "clear_last"
	HistoryClearAll  = "clear_all"
)

// Turn is one sentence of a scenario.
type Turn struct {
	ID       string         `yaml:"id"`
	Sentence plan.Predicate `yaml:"sentence"`
	// Saliency entries override the scenario's for this turn only.
	Saliency world.Saliency `yaml:"saliency,omitempty"`
	History  string         `yaml:"history,omitempty"`
	Expect   Expectation    `yaml:"expect,omitempty"`
}

// Expectation is checked against a turn's outcome. Empty fields are not
// checked.
type Expectation struct {
	Action    string `yaml:"action,omitempty"`
	Text      string `yaml:"text,omitempty"`
	Candidate string `yaml:"candidate,omitempty"`
}

// #endregion scenario-types

// #region scenario-loader

// LoadScenario reads and parses a YAML scenario file.
func LoadScenario(p string) (*Scenario, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", p, err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", p, err)
	}
	return sc, nil
}

// ParseScenario decodes and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks that the world builds and every turn is well formed.
func (sc *Scenario) Validate() error {
	if sc.Name == "" {
		return fmt.Errorf("scenario: empty name")
	}
	if _, err := world.NewModel(sc.Objects, sc.Saliency, nil); err != nil {
		return fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	seen := make(map[string]bool, len(sc.Turns))
	for i, t := range sc.Turns {
		if t.ID == "" {
			return fmt.Errorf("scenario %s: turn %d: empty id", sc.Name, i)
		}
		if seen[t.ID] {
			return fmt.Errorf("scenario %s: duplicate turn %q", sc.Name, t.ID)
		}
		seen[t.ID] = true
		if len(t.Sentence.Elements) == 0 {
			return fmt.Errorf("scenario %s: turn %s: empty sentence", sc.Name, t.ID)
		}
		switch t.History {
		case "", HistoryClearLast, HistoryClearAll:
		default:
			return fmt.Errorf("scenario %s: turn %s: unknown history operation %q", sc.Name, t.ID, t.History)
		}
		switch t.Expect.Action {
		case "", ActionCommit, ActionGateReject, ActionEvalRollback:
		default:
			return fmt.Errorf("scenario %s: turn %s: unknown action %q", sc.Name, t.ID, t.Expect.Action)
		}
	}
	return nil
}

// Builtin returns the scenarios shipped with the binary, sorted by file name.
func Builtin() ([]*Scenario, error) {
	entries, err := builtin.ReadDir("scenarios")
	if err != nil {
		return nil, err
	}
	out := make([]*Scenario, 0, len(entries))
	for _, e := range entries {
		data, err := builtin.ReadFile(path.Join("scenarios", e.Name()))
		if err != nil {
			return nil, err
		}
		sc, err := ParseScenario(data)
		if err != nil {
			return nil, fmt.Errorf("builtin %s: %w", e.Name(), err)
		}
		out = append(out, sc)
	}
	return out, nil
}

// #endregion scenario-loader

// turnSaliency layers a turn's overrides on the scenario saliency.
func turnSaliency(base, override world.Saliency) world.Saliency {
	out := make(world.Saliency, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
