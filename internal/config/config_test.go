package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/multimodal-planner/internal/attrsel"
	"github.com/danielpatrickdp/multimodal-planner/internal/modality"
	"github.com/danielpatrickdp/multimodal-planner/internal/scorer"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mmf.yaml")
	want := DefaultConfig()
	want.Planner.Strategy = string(attrsel.StrategyMostSalient)
	want.Scorers = append(want.Scorers, ScorerConfig{Name: scorer.NameModalityRestriction, Weight: 2})
	want.Scoring.NoPointingInRow = true
	want.Executor.Timeout = 750 * time.Millisecond

	require.NoError(t, want.Save(path))
	got, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mmf.yaml")
	require.NoError(t, os.WriteFile(path, []byte("planner:\n  max_sweeps: 3\nlog:\n  level: debug\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Planner.MaxSweeps)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 4096, cfg.Planner.ExhaustiveLimit)
	assert.Len(t, cfg.Devices, 6)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MMF_DB_PATH", "/var/lib/mmf/state.db")
	t.Setenv("MMF_EXECUTOR_TIMEOUT", "5s")
	t.Setenv("MMF_STRATEGY", "shortest")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/mmf/state.db", cfg.Storage.DBPath)
	assert.Equal(t, 5*time.Second, cfg.Executor.Timeout)
	assert.Equal(t, string(attrsel.StrategyShortest), cfg.Planner.Strategy)
}

func TestValidateRejectsUnknownNames(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"strategy", func(c *Config) { c.Planner.Strategy = "longest" }},
		{"scorer", func(c *Config) { c.Scorers = []ScorerConfig{{Name: "charisma"}} }},
		{"modality", func(c *Config) { c.Modalities.Enabled = []string{"telepathy"} }},
		{"device modality", func(c *Config) { c.Devices[0].Modality = "smell" }},
		{"restriction modality", func(c *Config) {
			c.Scorers = []ScorerConfig{{Name: scorer.NameModalityRestriction}}
			c.Scoring.LimitModality = "telepathy"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPresentersFollowEnabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Modalities.Enabled = []string{"image", "speech"}

	ps := cfg.Presenters(zap.NewNop())
	require.Len(t, ps, 2)
	assert.Equal(t, modality.Speech, ps[0].Modality())
	assert.Equal(t, modality.Image, ps[1].Modality())
}

func TestBuildScorers(t *testing.T) {
	scorers, err := DefaultConfig().BuildScorers()
	require.NoError(t, err)
	names := make([]string, len(scorers))
	for i, s := range scorers {
		names[i] = s.Name()
	}
	assert.Equal(t, []string{
		scorer.NameHumanLikeness,
		scorer.NameObjectIdentification,
		scorer.NameOutputHistory,
		scorer.NameUserInfo,
		scorer.NameTechnicalEfficiency,
	}, names)
}
