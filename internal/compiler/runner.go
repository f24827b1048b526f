package compiler

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/t77yq/bamcfg/internal/datastore"
	"github.com/t77yq/bamcfg/internal/generator"
	"github.com/t77yq/bamcfg/internal/metrics"
	"github.com/t77yq/bamcfg/internal/model"
)

// RunnerOptions configures a Runner
type RunnerOptions struct {
	Source    datastore.Source
	OutputDir string
	Naming    generator.Naming
	// Workers bounds the number of nodes generated at once
	Workers int
	Logger  *zap.Logger
	Metrics *metrics.Recorder
}

// Runner generates several nodes concurrently. Every node gets its own
// orchestrator, so no state is shared between passes except the source.
type Runner struct {
	opts   RunnerOptions
	logger *zap.Logger
}

// NewRunner creates a runner
func NewRunner(opts RunnerOptions) *Runner {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Runner{
		opts:   opts,
		logger: opts.Logger.Named("runner"),
	}
}

// GenerateNodes runs one pass per node and returns the manifests in the
// order of nodeIDs, repeated ids counted once. Each pass starts by removing
// the node's output of any earlier run. The first fatal error cancels the
// remaining passes.
func (r *Runner) GenerateNodes(ctx context.Context, nodeIDs []int) ([]*Manifest, error) {
	nodeIDs = uniqueNodeIDs(nodeIDs)
	manifests := make([]*Manifest, len(nodeIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for i, nodeID := range nodeIDs {
		g.Go(func() error {
			o := New(Options{
				NodeID:    nodeID,
				Source:    r.opts.Source,
				OutputDir: r.opts.OutputDir,
				Naming:    r.opts.Naming,
				Logger:    r.opts.Logger,
				Metrics:   r.opts.Metrics,
			})
			m, err := o.Regenerate(gctx)
			if err != nil {
				return err
			}
			manifests[i] = m
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.logger.Info("Nodes generated", zap.Ints("node_ids", nodeIDs))
	return manifests, nil
}

// uniqueNodeIDs drops repeated ids, keeping the first occurrence. Two passes
// over the same node would write the same files.
func uniqueNodeIDs(nodeIDs []int) []int {
	seen := make(map[int]struct{}, len(nodeIDs))
	out := make([]int, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ListNodes returns the active nodes of the datastore in id order
func ListNodes(ctx context.Context, source datastore.Source) ([]model.Node, error) {
	rows, err := source.Query(ctx, datastore.TableNodes)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", &datastore.QueryError{Table: datastore.TableNodes, Err: err})
	}

	var nodes []model.Node
	for _, row := range rows {
		node := model.NodeFromRow(row)
		if node.Active {
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

// NodeIDs returns the ids of nodes
func NodeIDs(nodes []model.Node) []int {
	ids := make([]int, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids
}
