package generator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/t77yq/bamcfg/internal/objcfg"
)

// HostGenerator writes the virtual host carrying every business activity
// service of a node. There is exactly one such host per node.
type HostGenerator struct {
	base[int]
}

func newHostGenerator(reg *Registry) *HostGenerator {
	return &HostGenerator{base: newBase[int](reg, KindHost)}
}

// HostName returns the deterministic name of the node's virtual host
func (g *HostGenerator) HostName() string {
	return VirtualHostName(g.reg.scope.NodeID)
}

// VirtualHostName returns the virtual host name of a node
func VirtualHostName(nodeID int) string {
	return fmt.Sprintf("_Module_BAM_%d", nodeID)
}

// Generate emits the virtual host. It fails with ErrNoPrimaryNode when no
// central node exists to provide its address.
func (g *HostGenerator) Generate(ctx context.Context) (Result, error) {
	return g.once(ctx, g.reg.scope.NodeID, func() (*objcfg.Block, error) {
		primary, err := g.reg.catalog.primaryNode(ctx)
		if err != nil {
			return nil, err
		}

		g.logger.Debug("Anchoring virtual host",
			zap.Int("primary_node_id", primary.ID),
			zap.String("address", primary.Address))

		return objcfg.NewBlock("host").
			Add("host_name", g.HostName()).
			Add("alias", "Centreon BAM Module").
			Add("address", primary.Address).
			Add("check_command", g.reg.scope.Naming.HostCheckCommand).
			AddInt("max_check_attempts", 1).
			AddBool("active_checks_enabled", false).
			AddBool("passive_checks_enabled", true).
			AddBool("register", true), nil
	})
}

// GenerateAll emits the virtual host
func (g *HostGenerator) GenerateAll(ctx context.Context) error {
	_, err := g.Generate(ctx)
	return err
}
