package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"questsolver/internal/level"
	"questsolver/internal/persistence/runlog"
	"questsolver/internal/pipeline"
)

func newReplayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "replay [runs-dir]",
		Short: "Re-solve logged runs and verify the action sequences match",
		Long: `Read the run log (default: <data>/runs), solve every logged level again
with the settings it was solved with, and fail if any solved run now yields a
different action sequence.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := filepath.Join(a.cfg.DataDir, "runs")
			if len(args) == 1 {
				dir = args[0]
			}
			entries, err := runlog.ReadDir(dir)
			if err != nil {
				return fmt.Errorf("read run log: %w", err)
			}

			var checked, skipped int
			var mismatched []string
			for _, e := range entries {
				if e.Status != "solved" || len(e.Level) == 0 {
					skipped++
					continue
				}
				ok, err := a.replayEntry(cmd, e)
				if err != nil {
					return fmt.Errorf("run %s: %w", e.RunID, err)
				}
				checked++
				if !ok {
					mismatched = append(mismatched, e.RunID)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "replay: checked=%d skipped=%d mismatched=%d\n", checked, skipped, len(mismatched))
			if len(mismatched) > 0 {
				return fmt.Errorf("replay mismatch: %v", mismatched)
			}
			return nil
		},
	}
}

func (a *app) replayEntry(cmd *cobra.Command, e runlog.Entry) (bool, error) {
	doc, err := level.Parse(e.Level)
	if err != nil {
		return false, err
	}
	cfg := a.cfg
	cfg.Theme = e.Theme
	cfg.ToolboxPreset = e.ToolboxPreset
	if e.MaxExpansions > 0 {
		cfg.MaxExpansions = e.MaxExpansions
	}
	opts, err := pipeline.NewOptions(cfg, a.rules, a.catalog)
	if err != nil {
		return false, err
	}
	rep, err := pipeline.Run(cmd.Context(), doc, level.Digest(e.Level), opts)
	if err != nil {
		return false, err
	}
	got := runlog.ActionsDigest(rep.Actions)
	if got != e.ActionsDigest {
		a.log.Warn("replay mismatch",
			zap.String("run_id", e.RunID),
			zap.String("level", e.LevelID),
			zap.String("want", e.ActionsDigest),
			zap.String("got", got),
		)
		return false, nil
	}
	a.log.Debug("replay ok", zap.String("run_id", e.RunID), zap.String("level", e.LevelID))
	return true, nil
}
