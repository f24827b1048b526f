package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newGenerateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [node-id...]",
		Short: "Generate the configuration of the given nodes, or of every active node",
		RunE: func(cmd *cobra.Command, args []string) error {
			nodeIDs, err := parseNodeIDs(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.run(ctx, nodeIDs)
		},
	}
}

func parseNodeIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid node id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
