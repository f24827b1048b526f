// Package compiler drives generation passes: one Orchestrator per node,
// and a Runner that generates several nodes concurrently.
package compiler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/t77yq/bamcfg/internal/datastore"
	"github.com/t77yq/bamcfg/internal/generator"
	"github.com/t77yq/bamcfg/internal/manifest"
	"github.com/t77yq/bamcfg/internal/metrics"
)

// State is the lifecycle state of an orchestrator
type State int

const (
	StateIdle State = iota
	StateGenerating
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGenerating:
		return "generating"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// passOrder is the order a pass steps through the generators. Contacts are
// not stepped; contact groups pull them.
var passOrder = []generator.Kind{
	generator.KindCommand,
	generator.KindTimeperiod,
	generator.KindHost,
	generator.KindService,
	generator.KindContactGroup,
	generator.KindDependency,
	generator.KindEscalation,
}

// Options configures an orchestrator
type Options struct {
	NodeID    int
	Source    datastore.Source
	OutputDir string
	Naming    generator.Naming
	Logger    *zap.Logger
	Metrics   *metrics.Recorder
}

// Manifest lists what a completed pass produced
type Manifest struct {
	PassID      string                 `json:"pass_id" yaml:"pass_id"`
	NodeID      int                    `json:"node_id" yaml:"node_id"`
	Paths       []string               `json:"paths" yaml:"paths"`
	Counts      map[generator.Kind]int `json:"counts" yaml:"counts"`
	Duration    time.Duration          `json:"duration" yaml:"duration"`
	GeneratedAt time.Time              `json:"generated_at" yaml:"generated_at"`
}

// Orchestrator runs generation passes for one node. It owns the node's
// data cache, registry and path accumulator.
type Orchestrator struct {
	nodeID   int
	logger   *zap.Logger
	metrics  *metrics.Recorder
	registry *generator.Registry

	mu    sync.Mutex
	state State
}

// New creates an idle orchestrator for a node
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("orchestrator").With(zap.Int("node_id", opts.NodeID))

	cache := datastore.NewCache(opts.Source, logger)
	registry := generator.NewRegistry(generator.Scope{
		NodeID:      opts.NodeID,
		OutputDir:   opts.OutputDir,
		Cache:       cache,
		Accumulator: manifest.NewAccumulator(),
		Naming:      opts.Naming,
		Logger:      logger,
		Metrics:     opts.Metrics,
	})

	return &Orchestrator{
		nodeID:   opts.NodeID,
		logger:   logger,
		metrics:  opts.Metrics,
		registry: registry,
		state:    StateIdle,
	}
}

// State returns the current lifecycle state
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = s
}

// HasRelevantObjects reports whether the node owns at least one active
// business activity
func (o *Orchestrator) HasRelevantObjects(ctx context.Context) (bool, error) {
	bas, err := o.registry.BusinessActivities(ctx)
	if err != nil {
		return false, err
	}
	return len(bas) > 0, nil
}

// Generate runs one pass. A node without relevant objects completes with an
// empty manifest and writes nothing. On a fatal error the files written so
// far are removed and a *PassError is returned.
func (o *Orchestrator) Generate(ctx context.Context) (*Manifest, error) {
	o.mu.Lock()
	if o.state != StateIdle {
		state := o.state
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: state is %s", ErrNotIdle, state)
	}
	o.state = StateGenerating
	o.mu.Unlock()

	start := time.Now()
	passID := uuid.NewString()
	logger := o.logger.With(zap.String("pass_id", passID))

	relevant, err := o.HasRelevantObjects(ctx)
	if err != nil {
		return nil, o.fail(logger, "", err)
	}
	if !relevant {
		logger.Info("Node owns no business activity, nothing to generate")
		o.setState(StateDone)
		return o.manifest(passID, start), nil
	}

	primary, err := o.registry.PrimaryNode(ctx)
	if err != nil {
		return nil, o.fail(logger, generator.KindHost, err)
	}
	logger.Debug("Primary node resolved",
		zap.Int("primary_node_id", primary.ID),
		zap.String("primary_node", primary.Name))

	for _, kind := range passOrder {
		g, err := o.registry.InstanceFor(kind)
		if err != nil {
			return nil, o.fail(logger, kind, err)
		}
		if err := g.GenerateAll(ctx); err != nil {
			return nil, o.fail(logger, kind, err)
		}
		logger.Debug("Step completed",
			zap.String("kind", string(kind)),
			zap.Int("emitted", g.Count()))
	}

	m := o.manifest(passID, start)
	o.setState(StateDone)

	o.metrics.ObservePass(m.Duration)
	if _, err := o.metrics.SampleProcess(); err != nil {
		logger.Debug("Failed to sample process", zap.Error(err))
	}

	logger.Info("Generation pass completed",
		zap.Int("files", len(m.Paths)),
		zap.Duration("duration", m.Duration))

	return m, nil
}

// Reset returns the orchestrator to Idle from any state. Memo tables, the
// data cache and the path list are cleared and generated files removed.
func (o *Orchestrator) Reset() error {
	if err := o.registry.Reset(); err != nil {
		return err
	}
	o.setState(StateIdle)
	return nil
}

// Regenerate resets the orchestrator and runs a new pass
func (o *Orchestrator) Regenerate(ctx context.Context) (*Manifest, error) {
	if err := o.Reset(); err != nil {
		return nil, fmt.Errorf("failed to reset node %d: %w", o.nodeID, err)
	}
	return o.Generate(ctx)
}

func (o *Orchestrator) manifest(passID string, start time.Time) *Manifest {
	return &Manifest{
		PassID:      passID,
		NodeID:      o.nodeID,
		Paths:       o.registry.Accumulator().Paths(),
		Counts:      o.registry.Counts(),
		Duration:    time.Since(start),
		GeneratedAt: time.Now().UTC(),
	}
}

// fail aborts the pass. Partial output is removed so that a caller never
// sees a half-written file set.
func (o *Orchestrator) fail(logger *zap.Logger, step generator.Kind, err error) error {
	passErr := newPassError(o.nodeID, step, err)

	if resetErr := o.registry.Reset(); resetErr != nil {
		logger.Error("Failed to remove partial output", zap.Error(resetErr))
	}
	o.setState(StateFailed)
	o.metrics.PassFailed(passErr.Code.String())

	logger.Error("Generation pass aborted",
		zap.String("kind", string(passErr.Kind)),
		zap.String("code", passErr.Code.String()),
		zap.Error(err))

	return passErr
}
