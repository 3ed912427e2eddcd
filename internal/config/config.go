package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/multimodal-planner/internal/attrsel"
	"github.com/danielpatrickdp/multimodal-planner/internal/device"
	"github.com/danielpatrickdp/multimodal-planner/internal/executor"
	"github.com/danielpatrickdp/multimodal-planner/internal/gate"
	"github.com/danielpatrickdp/multimodal-planner/internal/geometry"
	"github.com/danielpatrickdp/multimodal-planner/internal/modality"
	"github.com/danielpatrickdp/multimodal-planner/internal/presenter"
	"github.com/danielpatrickdp/multimodal-planner/internal/scorer"
)

// EnvPrefix prefixes every environment override, e.g. MMF_DB_PATH.
const EnvPrefix = "MMF"

// #region config
// Config is the whole planner configuration as stored in YAML.
type Config struct {
	Planner    PlannerConfig         `yaml:"planner"`
	Scorers    []ScorerConfig        `yaml:"scorers"`
	Scoring    scorer.Options        `yaml:"scoring"`
	Gate       gate.GateConfig       `yaml:"gate"`
	Modalities ModalityConfig        `yaml:"modalities"`
	Devices    []device.Spec         `yaml:"devices"`
	Storage    StorageConfig         `yaml:"storage"`
	Executor   executor.ClientConfig `yaml:"executor"`
	Log        LogConfig             `yaml:"log"`
}

// PlannerConfig tunes attribute selection and the search.
type PlannerConfig struct {
	Strategy        string  `yaml:"strategy"`
	Threshold       float64 `yaml:"threshold"`
	Prune           float64 `yaml:"prune"`
	MaxAttributes   int     `yaml:"max_attributes"`
	ExhaustiveLimit int     `yaml:"exhaustive_limit"`
	MaxSweeps       int     `yaml:"max_sweeps"`
}

// ScorerConfig enables one scorer with a weight.
type ScorerConfig struct {
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
}

// ModalityConfig selects the presenters and their predicate lists.
type ModalityConfig struct {
	Enabled     []string `yaml:"enabled"`
	Nodding     []string `yaml:"nodding"`
	Headshaking []string `yaml:"headshaking"`
	Waving      []string `yaml:"waving"`
	ImageDir    string   `yaml:"image_dir"`
}

// StorageConfig locates the SQLite database.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// #endregion config

// #region defaults

// DefaultConfig returns a robot with a speaker, a head, two arms and a
// screen, and every scorer except the deployment restrictions.
func DefaultConfig() *Config {
	origin := &geometry.Position{}
	return &Config{
		Planner: PlannerConfig{
			Strategy:        string(attrsel.StrategyShortestSalientThreshold),
			Threshold:       attrsel.DefaultThreshold,
			Prune:           attrsel.DefaultPrune,
			MaxAttributes:   attrsel.DefaultMaxAttributes,
			ExhaustiveLimit: 4096,
			MaxSweeps:       8,
		},
		Scorers: []ScorerConfig{
			{Name: scorer.NameHumanLikeness, Weight: 1},
			{Name: scorer.NameObjectIdentification, Weight: 1},
			{Name: scorer.NameOutputHistory, Weight: 1},
			{Name: scorer.NameUserInfo, Weight: 1},
			{Name: scorer.NameTechnicalEfficiency, Weight: 1},
		},
		Scoring: scorer.DefaultOptions(),
		Gate:    gate.DefaultGateConfig(),
		Modalities: ModalityConfig{
			Enabled:     idsToStrings(modality.All),
			Nodding:     []string{"agree", "confirm", "acknowledge"},
			Headshaking: []string{"disagree", "deny", "refuse"},
			Waving:      []string{"greet", "farewell"},
			ImageDir:    "images",
		},
		Devices: []device.Spec{
			{Name: "speaker", Modality: string(modality.Speech), Position: origin, SecondsPerWord: 0.4},
			{Name: "arm-right", Modality: string(modality.Pointing), Position: origin, Duration: 1.5},
			{Name: "head-gaze", Modality: string(modality.Gaze), Position: origin, Duration: 0.8},
			{Name: "head-nod", Modality: string(modality.NoddingHeadshaking), Position: origin, Duration: 1},
			{Name: "arm-left", Modality: string(modality.Waving), Position: origin, Duration: 2},
			{Name: "screen", Modality: string(modality.Image), Position: origin, Duration: 0.2},
		},
		Storage:  StorageConfig{DBPath: "mmf.db"},
		Executor: executor.DefaultClientConfig(),
		Log:      LogConfig{Level: "info"},
	}
}

func idsToStrings(ids []modality.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// #endregion defaults

// #region load-save

// Load reads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// envOverrides are the settings that can be changed per deployment without
// editing the file.
type envOverrides struct {
	DBPath          string        `envconfig:"DB_PATH"`
	LogLevel        string        `envconfig:"LOG_LEVEL"`
	ExecutorAddr    string        `envconfig:"EXECUTOR_ADDR"`
	ExecutorTimeout time.Duration `envconfig:"EXECUTOR_TIMEOUT"`
	Strategy        string        `envconfig:"STRATEGY"`
	ImageDir        string        `envconfig:"IMAGE_DIR"`
}

func (c *Config) applyEnvOverrides() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("env overrides: %w", err)
	}
	if env.DBPath != "" {
		c.Storage.DBPath = env.DBPath
	}
	if env.LogLevel != "" {
		c.Log.Level = env.LogLevel
	}
	if env.ExecutorAddr != "" {
		c.Executor.Addr = env.ExecutorAddr
	}
	if env.ExecutorTimeout > 0 {
		c.Executor.Timeout = env.ExecutorTimeout
	}
	if env.Strategy != "" {
		c.Planner.Strategy = env.Strategy
	}
	if env.ImageDir != "" {
		c.Modalities.ImageDir = env.ImageDir
	}
	return nil
}

// #endregion load-save

// #region validate

// Validate checks names that are only resolved at startup.
func (c *Config) Validate() error {
	if !attrsel.Strategy(c.Planner.Strategy).Valid() {
		return fmt.Errorf("planner.strategy %q: %w", c.Planner.Strategy, attrsel.ErrUnknownStrategy)
	}
	if _, err := c.BuildScorers(); err != nil {
		return err
	}
	for _, name := range c.Modalities.Enabled {
		if _, err := modality.Parse(name); err != nil {
			return fmt.Errorf("modalities.enabled: %w", err)
		}
	}
	for i, d := range c.Devices {
		if _, err := modality.Parse(d.Modality); err != nil {
			return fmt.Errorf("devices[%d] %q: %w", i, d.Name, err)
		}
	}
	return nil
}

// #endregion validate

// #region build

// Selector returns the attribute selection settings.
func (c *Config) Selector() attrsel.Config {
	return attrsel.Config{
		Strategy:      attrsel.Strategy(c.Planner.Strategy),
		Threshold:     c.Planner.Threshold,
		Prune:         c.Planner.Prune,
		MaxAttributes: c.Planner.MaxAttributes,
	}
}

// BuildScorers instantiates the configured scorers in order.
func (c *Config) BuildScorers() ([]scorer.Scorer, error) {
	out := make([]scorer.Scorer, 0, len(c.Scorers))
	for _, sc := range c.Scorers {
		s, err := scorer.New(sc.Name, sc.Weight, c.Scoring)
		if err != nil {
			return nil, fmt.Errorf("scorers: %w", err)
		}
		out = append(out, s)
	}
	return out, nil
}

// Presenters returns the enabled presenters in canonical modality order.
func (c *Config) Presenters(logger *zap.Logger) []presenter.Presenter {
	all := presenter.Defaults(c.Modalities.Nodding, c.Modalities.Headshaking, c.Modalities.Waving, c.Modalities.ImageDir, logger)
	enabled := make(map[modality.ID]bool, len(c.Modalities.Enabled))
	for _, name := range c.Modalities.Enabled {
		if m, err := modality.Parse(name); err == nil {
			enabled[m] = true
		}
	}
	out := make([]presenter.Presenter, 0, len(all))
	for _, p := range all {
		if enabled[p.Modality()] {
			out = append(out, p)
		}
	}
	return out
}

// #endregion build
