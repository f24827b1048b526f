package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/t77yq/bamcfg/internal/schedule"
)

func newWatchCommand(opts *rootOptions) *cobra.Command {
	var runAtStart bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate every active node on the configured schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			regenerate := func(ctx context.Context) error {
				return a.run(ctx, nil)
			}

			if runAtStart {
				if err := regenerate(ctx); err != nil {
					opts.logger.Error("Initial generation failed", zap.Error(err))
				}
			}

			scheduler := schedule.New(opts.logger)
			if err := scheduler.Add(ctx, "regenerate", opts.cfg.Schedule.Expression, regenerate); err != nil {
				return err
			}
			scheduler.Start()
			opts.logger.Info("Watching for changes", zap.String("schedule", opts.cfg.Schedule.Expression))

			<-ctx.Done()
			opts.logger.Info("Received shutdown signal, waiting for running generation")
			scheduler.Stop()
			return nil
		},
	}

	cmd.Flags().BoolVar(&runAtStart, "now", true, "generate once before the first tick")
	return cmd
}
