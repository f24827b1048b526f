package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/t77yq/bamcfg/internal/compiler"
	"github.com/t77yq/bamcfg/internal/datastore"
)

func newNodesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "List the active nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			source, err := datastore.Open(ctx, opts.cfg.SQL(), opts.logger)
			if err != nil {
				return err
			}
			defer source.Close()

			nodes, err := compiler.ListNodes(ctx, source)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tADDRESS\tCENTRAL")
			for _, n := range nodes {
				fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", n.ID, n.Name, n.Address, n.Central)
			}
			return w.Flush()
		},
	}
}
