package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"questsolver/internal/level"
	"questsolver/internal/pipeline"
	"questsolver/internal/sim/program"
)

func newSolveCmd(a *app) *cobra.Command {
	var (
		write   bool
		listing bool
	)
	cmd := &cobra.Command{
		Use:   "solve <level.json>...",
		Short: "Solve levels and print their programs",
		Long: `Solve each level file in turn. With --write the solution is stored in the
level's "solution" object; every other field of the file is kept as is.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options()
			if err != nil {
				return err
			}
			rec := a.recorder()
			defer func() {
				if err := rec.Close(); err != nil {
					a.log.Warn("close recorder", zap.Error(err))
				}
			}()

			failed := 0
			for _, path := range args {
				rep, err := a.solveFile(cmd.Context(), path, opts, rec, write)
				if listing {
					printReport(cmd.OutOrStdout(), path, rep, err)
				}
				if err != nil || !rep.Solved() {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d levels not solved", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "write the solution back into each level file")
	cmd.Flags().BoolVar(&listing, "print", true, "print the program listing")
	return cmd
}

// solveFile loads, solves, records and optionally annotates one level.
func (a *app) solveFile(ctx context.Context, path string, opts pipeline.Options, rec *pipeline.Recorder, write bool) (pipeline.Report, error) {
	f, err := level.Load(path)
	if err != nil {
		a.log.Warn("load level", zap.String("path", path), zap.Error(err))
		return pipeline.Report{}, err
	}

	rep, runErr := pipeline.Run(ctx, f.Doc, f.Digest, opts)
	entry, recErr := rec.Record(rep, a.source(path, f.Raw), runErr)
	if recErr != nil {
		a.log.Warn("record run", zap.String("path", path), zap.Error(recErr))
	}

	fields := []zap.Field{
		zap.String("run_id", entry.RunID),
		zap.String("path", path),
		zap.String("level", rep.LevelID),
		zap.String("digest", rep.Digest),
		zap.String("status", rep.Status.String()),
		zap.Int("expanded", rep.Expanded),
		zap.Duration("elapsed", rep.Elapsed),
	}
	if runErr != nil {
		a.log.Warn("solve failed", append(fields, zap.Error(runErr))...)
		return rep, runErr
	}
	if !rep.Solved() {
		a.log.Info("unsolvable", fields...)
		return rep, nil
	}
	a.log.Info("solved", append(fields, zap.Int("actions", rep.Lines()), zap.Int("blocks", rep.Blocks))...)

	if write {
		out, err := level.Annotate(f.Raw, rep.Record())
		if err != nil {
			return rep, err
		}
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return rep, err
		}
	}
	return rep, nil
}

func printReport(w io.Writer, path string, rep pipeline.Report, err error) {
	switch {
	case err != nil:
		fmt.Fprintf(w, "%s: error: %v\n", path, err)
	case !rep.Solved():
		fmt.Fprintf(w, "%s: %s after %d expansions\n", path, rep.Status, rep.Expanded)
	default:
		fmt.Fprintf(w, "%s: %d actions, %d blocks, %d expansions\n", path, rep.Lines(), rep.Blocks, rep.Expanded)
		fmt.Fprint(w, program.Format(rep.Program))
	}
}
