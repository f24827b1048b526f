// Package generator turns cached datastore rows into engine configuration
// blocks. Each object type has one generator per pass; generators pull the
// objects they reference from each other through the Registry, and every
// generator writes a given key at most once per pass.
package generator

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/t77yq/bamcfg/internal/datastore"
	"github.com/t77yq/bamcfg/internal/manifest"
	"github.com/t77yq/bamcfg/internal/metrics"
	"github.com/t77yq/bamcfg/internal/model"
)

// Naming holds the engine object names the generated configuration refers
// to but does not define itself
type Naming struct {
	// CheckCommand is the command that computes a business activity state
	CheckCommand string
	// HostCheckCommand is the check command of the virtual host
	HostCheckCommand string
}

// DefaultNaming returns the names used by a stock installation
func DefaultNaming() Naming {
	return Naming{
		CheckCommand:     "centreon-bam-check",
		HostCheckCommand: "check_centreon_dummy",
	}
}

// Scope is the state one generation pass owns
type Scope struct {
	NodeID      int
	OutputDir   string
	Cache       *datastore.Cache
	Accumulator *manifest.Accumulator
	Naming      Naming
	Logger      *zap.Logger
	Metrics     *metrics.Recorder
}

// Registry hands out the single generator instance of each kind for a pass.
// It is not safe for concurrent use; concurrent passes use one Registry each.
type Registry struct {
	scope   Scope
	logger  *zap.Logger
	dir     string
	catalog *catalog
	stack   []string

	commands      *CommandGenerator
	timeperiods   *TimeperiodGenerator
	hosts         *HostGenerator
	services      *ServiceGenerator
	contactGroups *ContactGroupGenerator
	contacts      *ContactGenerator
	dependencies  *DependencyGenerator
	escalations   *EscalationGenerator
}

// NewRegistry creates an empty registry. Generators are created on first use.
func NewRegistry(scope Scope) *Registry {
	if scope.Logger == nil {
		scope.Logger = zap.NewNop()
	}
	if scope.Accumulator == nil {
		scope.Accumulator = manifest.NewAccumulator()
	}
	if scope.Naming == (Naming{}) {
		scope.Naming = DefaultNaming()
	}

	return &Registry{
		scope:   scope,
		logger:  scope.Logger.Named("generator").With(zap.Int("node_id", scope.NodeID)),
		dir:     filepath.Join(scope.OutputDir, strconv.Itoa(scope.NodeID)),
		catalog: newCatalog(scope.Cache, scope.NodeID),
	}
}

// NodeID returns the node the registry generates for
func (r *Registry) NodeID() int {
	return r.scope.NodeID
}

// Dir returns the directory the generated files are written to
func (r *Registry) Dir() string {
	return r.dir
}

// Accumulator returns the path accumulator of the pass
func (r *Registry) Accumulator() *manifest.Accumulator {
	return r.scope.Accumulator
}

// PrimaryNode returns the central node anchoring the virtual host
func (r *Registry) PrimaryNode(ctx context.Context) (model.Node, error) {
	return r.catalog.primaryNode(ctx)
}

// BusinessActivities returns the active business activities owned by the node
func (r *Registry) BusinessActivities(ctx context.Context) ([]model.BusinessActivity, error) {
	return r.catalog.nodeBusinessActivities(ctx)
}

// InstanceFor returns the generator of a kind
func (r *Registry) InstanceFor(kind Kind) (Generator, error) {
	switch kind {
	case KindCommand:
		return r.Commands(), nil
	case KindTimeperiod:
		return r.Timeperiods(), nil
	case KindHost:
		return r.Hosts(), nil
	case KindService:
		return r.Services(), nil
	case KindContactGroup:
		return r.ContactGroups(), nil
	case KindContact:
		return r.Contacts(), nil
	case KindDependency:
		return r.Dependencies(), nil
	case KindEscalation:
		return r.Escalations(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func (r *Registry) Commands() *CommandGenerator {
	if r.commands == nil {
		r.commands = newCommandGenerator(r)
	}
	return r.commands
}

func (r *Registry) Timeperiods() *TimeperiodGenerator {
	if r.timeperiods == nil {
		r.timeperiods = newTimeperiodGenerator(r)
	}
	return r.timeperiods
}

func (r *Registry) Hosts() *HostGenerator {
	if r.hosts == nil {
		r.hosts = newHostGenerator(r)
	}
	return r.hosts
}

func (r *Registry) Services() *ServiceGenerator {
	if r.services == nil {
		r.services = newServiceGenerator(r)
	}
	return r.services
}

func (r *Registry) ContactGroups() *ContactGroupGenerator {
	if r.contactGroups == nil {
		r.contactGroups = newContactGroupGenerator(r)
	}
	return r.contactGroups
}

func (r *Registry) Contacts() *ContactGenerator {
	if r.contacts == nil {
		r.contacts = newContactGenerator(r)
	}
	return r.contacts
}

func (r *Registry) Dependencies() *DependencyGenerator {
	if r.dependencies == nil {
		r.dependencies = newDependencyGenerator(r)
	}
	return r.dependencies
}

func (r *Registry) Escalations() *EscalationGenerator {
	if r.escalations == nil {
		r.escalations = newEscalationGenerator(r)
	}
	return r.escalations
}

// Counts returns the number of emitted objects per kind
func (r *Registry) Counts() map[Kind]int {
	counts := make(map[Kind]int, len(fileNames))
	for _, kind := range Kinds() {
		g, _ := r.InstanceFor(kind)
		counts[kind] = g.Count()
	}
	return counts
}

// Reset clears every memo table, removes every output file of the node,
// empties the path accumulator and flushes the data cache, so that the
// next pass starts from a clean slate
func (r *Registry) Reset() error {
	var firstErr error
	for _, kind := range Kinds() {
		g, _ := r.InstanceFor(kind)
		if err := g.Reset(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	r.stack = r.stack[:0]
	r.catalog = newCatalog(r.scope.Cache, r.scope.NodeID)
	r.scope.Accumulator.Reset()
	if r.scope.Cache != nil {
		r.scope.Cache.Flush()
	}

	if firstErr != nil {
		return fmt.Errorf("failed to reset registry: %w", firstErr)
	}
	r.logger.Debug("Registry reset")
	return nil
}

func (r *Registry) push(kind Kind, key string) {
	r.stack = append(r.stack, string(kind)+":"+key)
}

func (r *Registry) pop() {
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *Registry) cycle(kind Kind, key string) error {
	path := make([]string, 0, len(r.stack)+1)
	path = append(path, r.stack...)
	path = append(path, string(kind)+":"+key)

	r.logger.Error("Reference cycle detected",
		zap.String("kind", string(kind)),
		zap.String("key", key),
		zap.Strings("path", path))

	return &CycleError{Kind: kind, Key: key, Path: path}
}
