package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"questsolver/internal/config"
	"questsolver/internal/logging"
	"questsolver/internal/persistence/indexdb"
	"questsolver/internal/persistence/runlog"
	"questsolver/internal/pipeline"
	"questsolver/internal/sim/catalogs"
	"questsolver/internal/sim/rules"
)

// app carries the global flags and everything resolved from them before a
// subcommand runs.
type app struct {
	configPath string
	rulesPath  string
	dataDir    string
	indexPath  string
	theme      string
	preset     string
	maxExp     int
	timeout    time.Duration
	workers    int
	verbose    bool
	record     bool

	cfg     config.Solver
	rules   rules.Config
	catalog *catalogs.ToolboxCatalog
	log     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "questsolver",
		Short: "Solve quest levels and compile block programs",
		Long: `questsolver finds the cheapest action sequence that completes a quest
level and compresses it into loops and procedures allowed by the level's
toolbox.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to solver.yaml (default: built-in defaults)")
	pf.StringVar(&a.rulesPath, "rules", "", "path to rules.yaml (overrides rules_path)")
	pf.StringVar(&a.dataDir, "data", "", "runtime data directory (overrides data_dir)")
	pf.StringVar(&a.indexPath, "index", "", "sqlite index path (default: <data>/index.sqlite)")
	pf.StringVar(&a.theme, "theme", "", "rule theme")
	pf.StringVar(&a.preset, "preset", "", "toolbox preset replacing each level's toolbox")
	pf.IntVar(&a.maxExp, "max-expansions", 0, "search expansion cap")
	pf.DurationVar(&a.timeout, "timeout", 0, "per-level search timeout")
	pf.IntVar(&a.workers, "workers", 0, "batch workers")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&a.record, "record", true, "write runs to the run log and index")

	root.AddCommand(
		newSolveCmd(a),
		newBatchCmd(a),
		newServeCmd(a),
		newReplayCmd(a),
		newIndexCmd(a),
		newPresetsCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	var err error
	a.log, err = logging.New(a.verbose, cmd.Name())
	if err != nil {
		return err
	}

	a.cfg, err = config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("rules") {
		a.cfg.RulesPath = a.rulesPath
	}
	if flags.Changed("data") {
		a.cfg.DataDir = a.dataDir
	}
	if flags.Changed("index") {
		a.cfg.IndexPath = a.indexPath
	}
	if flags.Changed("theme") {
		a.cfg.Theme = a.theme
	}
	if flags.Changed("preset") {
		a.cfg.ToolboxPreset = a.preset
	}
	if flags.Changed("max-expansions") {
		a.cfg.MaxExpansions = a.maxExp
	}
	if flags.Changed("timeout") {
		a.cfg.TimeoutMs = int(a.timeout / time.Millisecond)
	}
	if flags.Changed("workers") {
		a.cfg.BatchWorkers = a.workers
	}
	a.cfg.Normalize()
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(a.cfg.IndexPath) == "" {
		a.cfg.IndexPath = filepath.Join(a.cfg.DataDir, "index.sqlite")
	}

	a.rules, err = rules.Load(a.cfg.RulesPath)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	a.catalog, err = catalogs.Default()
	if err != nil {
		return fmt.Errorf("load toolbox presets: %w", err)
	}
	return nil
}

func (a *app) options() (pipeline.Options, error) {
	return pipeline.NewOptions(a.cfg, a.rules, a.catalog)
}

// recorder opens the run log and index, or returns nil when recording is off.
// An index that fails to open is logged and skipped; the run log is enough
// for replay.
func (a *app) recorder() *pipeline.Recorder {
	if !a.record {
		return nil
	}
	rec := &pipeline.Recorder{Runs: runlog.NewLogger(a.cfg.DataDir)}
	idx, err := indexdb.OpenSQLite(a.cfg.IndexPath)
	if err != nil {
		a.log.Warn("index disabled", zap.String("path", a.cfg.IndexPath), zap.Error(err))
		return rec
	}
	if err := idx.UpsertCatalog(context.Background(), a.catalog); err != nil {
		a.log.Warn("index: upsert toolbox presets", zap.Error(err))
	}
	rec.Index = idx
	return rec
}

func (a *app) source(path string, raw []byte) pipeline.Source {
	return pipeline.Source{
		Path:          path,
		Raw:           raw,
		Theme:         a.cfg.Theme,
		ToolboxPreset: a.cfg.ToolboxPreset,
		MaxExpansions: a.cfg.MaxExpansions,
	}
}
