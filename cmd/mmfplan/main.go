package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/multimodal-planner/internal/config"
	"github.com/danielpatrickdp/multimodal-planner/internal/device"
	"github.com/danielpatrickdp/multimodal-planner/internal/history"
	"github.com/danielpatrickdp/multimodal-planner/internal/logging"
	"github.com/danielpatrickdp/multimodal-planner/internal/metrics"
	"github.com/danielpatrickdp/multimodal-planner/internal/planner"
	"github.com/danielpatrickdp/multimodal-planner/internal/world"
)

// #region app

// app carries what every subcommand needs after flags and config are read.
type app struct {
	configPath string
	dbPath     string
	logLevel   string
	jsonOut    bool

	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Metrics
}

// stores is the SQLite-backed state of one invocation. All three share the
// world store's database.
type stores struct {
	world   *world.Store
	history *history.Store
	plans   *logging.PlanLog
}

func (a *app) openStores() (*stores, error) {
	ws, err := world.NewStore(a.cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open world store: %w", err)
	}
	hs, err := history.NewStore(ws.DB())
	if err != nil {
		ws.Close()
		return nil, fmt.Errorf("open history store: %w", err)
	}
	pl, err := logging.NewPlanLog(ws.DB())
	if err != nil {
		ws.Close()
		return nil, fmt.Errorf("open plan log: %w", err)
	}
	return &stores{world: ws, history: hs, plans: pl}, nil
}

func (s *stores) Close() error {
	return s.world.Close()
}

// plannerConfig builds the planner configuration from the loaded config.
// bridge is attached to every device; nil plans without executing.
func (a *app) plannerConfig(bridge device.Bridge, recorder planner.Recorder) (planner.Config, error) {
	scorers, err := a.cfg.BuildScorers()
	if err != nil {
		return planner.Config{}, err
	}
	pools, err := device.NewPools(a.cfg.Devices, bridge)
	if err != nil {
		return planner.Config{}, err
	}
	return planner.Config{
		Selector:        a.cfg.Selector(),
		Scorers:         scorers,
		Presenters:      a.cfg.Presenters(a.log),
		Pools:           pools,
		Gate:            a.cfg.Gate,
		ExhaustiveLimit: a.cfg.Planner.ExhaustiveLimit,
		MaxSweeps:       a.cfg.Planner.MaxSweeps,
		Logger:          a.log,
		Metrics:         a.metrics,
		Recorder:        recorder,
	}, nil
}

// #endregion app

// #region main

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "mmfplan",
		Short:         "Plan and execute multimodal robot output",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A missing .env is fine.
			_ = godotenv.Load()

			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.Storage.DBPath = a.dbPath
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = a.logLevel
			}
			log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
			if err != nil {
				return err
			}
			a.cfg, a.log, a.metrics = cfg, log, metrics.New()
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "mmfplan.yaml", "path to the YAML config (defaults apply when missing)")
	f.StringVar(&a.dbPath, "db", "", "SQLite database, overrides storage.db_path")
	f.StringVar(&a.logLevel, "log-level", "", "log level, overrides log.level")
	f.BoolVar(&a.jsonOut, "json", false, "output as JSON instead of text")

	root.AddCommand(
		newPlanCmd(a),
		newExecuteCmd(a),
		newReplayCmd(a),
		newImportCmd(a),
		newInspectCmd(a),
		newServeSimCmd(a),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main
