package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/t77yq/bamcfg/internal/compiler"
	"github.com/t77yq/bamcfg/internal/config"
	"github.com/t77yq/bamcfg/internal/datastore"
	"github.com/t77yq/bamcfg/internal/metrics"
	"github.com/t77yq/bamcfg/internal/notify"
	"github.com/t77yq/bamcfg/internal/report"
)

// app wires the datastore, the runner and the optional outputs of a run
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	source    *datastore.SQLSource
	runner    *compiler.Runner
	recorder  *metrics.Recorder
	publisher *notify.Publisher
	closers   []func()
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	source, err := datastore.Open(ctx, cfg.SQL(), logger)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		source:   source,
		recorder: metrics.NewRecorder(logger),
		closers:  []func(){func() { source.Close() }},
	}
	a.runner = compiler.NewRunner(compiler.RunnerOptions{
		Source:    source,
		OutputDir: cfg.Output.Dir,
		Naming:    cfg.Naming(),
		Workers:   cfg.Generation.Workers,
		Logger:    logger,
		Metrics:   a.recorder,
	})

	if cfg.Notify.NATSURL != "" {
		nc, err := notify.Connect(cfg.Notify.NATSURL, "bamcfg", logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, nc.Close)

		js, err := nc.JetStream()
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create JetStream context: %w", err)
		}
		if a.publisher, err = notify.NewPublisher(ctx, js, cfg.Notify.SubjectPrefix, logger); err != nil {
			a.Close()
			return nil, err
		}
	}

	return a, nil
}

// Close releases connections in reverse order of acquisition
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// run generates the given nodes, or every active node when none are given
func (a *app) run(ctx context.Context, nodeIDs []int) error {
	if len(nodeIDs) == 0 {
		nodes, err := compiler.ListNodes(ctx, a.source)
		if err != nil {
			return err
		}
		nodeIDs = compiler.NodeIDs(nodes)
	}

	rep := report.New(time.Now())
	manifests, runErr := a.runner.GenerateNodes(ctx, nodeIDs)
	if runErr != nil {
		// the node id is taken from the error when it names one
		rep.AddFailure(0, runErr)
	}

	for _, m := range manifests {
		rep.AddManifest(m)
		if a.publisher == nil {
			continue
		}
		if err := a.publisher.Publish(ctx, m); err != nil {
			a.logger.Error("Failed to announce generation", zap.Int("node_id", m.NodeID), zap.Error(err))
		}
	}

	if a.cfg.Output.Report != "" {
		if err := rep.Write(a.cfg.Output.Report); err != nil {
			a.logger.Error("Failed to write report", zap.Error(err))
		}
	}
	if a.cfg.Metrics.Textfile != "" {
		if err := a.recorder.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
			a.logger.Error("Failed to write metrics", zap.Error(err))
		}
	}

	return runErr
}
