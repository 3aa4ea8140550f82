package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"questsolver/internal/persistence/indexdb"
)

func newIndexCmd(a *app) *cobra.Command {
	var (
		limit  int
		digest string
	)
	cmd := &cobra.Command{
		Use:   "index",
		Short: "List indexed runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := indexdb.OpenSQLite(a.cfg.IndexPath)
			if err != nil {
				return fmt.Errorf("open index: %w", err)
			}
			defer idx.Close()

			var runs []indexdb.Run
			if digest != "" {
				runs, err = idx.RunsForLevel(cmd.Context(), digest)
			} else {
				runs, err = idx.Runs(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tLEVEL\tSTATUS\tACTIONS\tBLOCKS\tEXPANDED\tRECORDED")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
					r.RunID, r.LevelID, r.Status, r.Actions, r.Blocks, r.Expanded, r.RecordedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows")
	cmd.Flags().StringVar(&digest, "level", "", "only runs of the level with this digest")
	return cmd
}
