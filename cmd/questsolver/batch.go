package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"questsolver/internal/pipeline"
	"questsolver/internal/sim/search"
)

type batchSummary struct {
	Total      int
	Solved     int
	Unsolvable int
	Exhausted  int
	Failed     int
}

func (s *batchSummary) add(rep pipeline.Report, err error) {
	s.Total++
	switch {
	case err != nil && rep.Status == search.StatusExhausted:
		s.Exhausted++
	case err != nil:
		s.Failed++
	case rep.Solved():
		s.Solved++
	default:
		s.Unsolvable++
	}
}

func newBatchCmd(a *app) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "batch <dir|level.json>...",
		Short: "Solve many levels concurrently",
		Long: `Solve every *.json level under the given directories and files using a
bounded worker pool. A failing level does not stop the others.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := collectLevels(args)
			if err != nil {
				return err
			}
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

			var (
				mu  sync.Mutex
				sum batchSummary
			)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(a.cfg.BatchWorkers)
			for _, path := range paths {
				path := path
				g.Go(func() error {
					rep, err := a.solveFile(ctx, path, opts, rec, write)
					mu.Lock()
					sum.add(rep, err)
					mu.Unlock()
					return nil
				})
			}
			_ = g.Wait()

			a.log.Info("batch done",
				zap.Int("total", sum.Total),
				zap.Int("solved", sum.Solved),
				zap.Int("unsolvable", sum.Unsolvable),
				zap.Int("exhausted", sum.Exhausted),
				zap.Int("failed", sum.Failed),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "total=%d solved=%d unsolvable=%d exhausted=%d failed=%d\n",
				sum.Total, sum.Solved, sum.Unsolvable, sum.Exhausted, sum.Failed)
			if sum.Solved != sum.Total {
				return fmt.Errorf("%d of %d levels not solved", sum.Total-sum.Solved, sum.Total)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "write solutions back into the level files")
	return cmd
}

// collectLevels expands directories into their *.json files, sorted.
func collectLevels(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			out = append(out, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), ".json") {
				out = append(out, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(out)
	return out, nil
}
