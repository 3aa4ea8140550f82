package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPresetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the built-in toolbox presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range a.catalog.Names() {
				p, _ := a.catalog.Get(name)
				fmt.Fprintf(out, "%-36s %s  %s\n", name, p.Digest[:12], strings.Join(p.Vocabulary().Tokens(), ","))
			}
			return nil
		},
	}
}
