package generator

import (
	"context"

	"go.uber.org/zap"

	"github.com/t77yq/bamcfg/internal/objcfg"
)

// DependencyGenerator writes service dependencies between business
// activities of the node
type DependencyGenerator struct {
	base[int]
}

func newDependencyGenerator(reg *Registry) *DependencyGenerator {
	return &DependencyGenerator{base: newBase[int](reg, KindDependency)}
}

// Generate emits a dependency restricted to the business activities the node
// owns. A dependency left without parents or children on the node is skipped.
func (g *DependencyGenerator) Generate(ctx context.Context, id int) (Result, error) {
	return g.once(ctx, id, func() (*objcfg.Block, error) {
		cat := g.reg.catalog

		dep, found, err := cat.dependency(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found {
			g.logger.Warn("Dependency not found", zap.Int("dep_id", id))
			return nil, nil
		}

		parentIDs, err := cat.dependencyParents(ctx, id)
		if err != nil {
			return nil, err
		}
		if parentIDs, err = cat.nodeBAFilter(ctx, parentIDs); err != nil {
			return nil, err
		}
		childIDs, err := cat.dependencyChildren(ctx, id)
		if err != nil {
			return nil, err
		}
		if childIDs, err = cat.nodeBAFilter(ctx, childIDs); err != nil {
			return nil, err
		}

		services := g.reg.Services()
		parents, err := services.resolveAll(ctx, parentIDs)
		if err != nil {
			return nil, err
		}
		children, err := services.resolveAll(ctx, childIDs)
		if err != nil {
			return nil, err
		}
		if len(parents) == 0 || len(children) == 0 {
			g.logger.Warn("Dependency has no parent or no child on this node",
				zap.Int("dep_id", id),
				zap.Int("parents", len(parents)),
				zap.Int("children", len(children)))
			return nil, nil
		}

		hostName := g.reg.Hosts().HostName()
		block := objcfg.NewBlock("servicedependency").
			Add("dependent_host_name", hostName).
			AddList("dependent_service_description", children).
			Add("host_name", hostName).
			AddList("service_description", parents).
			AddBool("inherits_parent", dep.InheritsParent).
			Add("execution_failure_criteria", dep.ExecutionFailureCriteria).
			Add("notification_failure_criteria", dep.NotificationFailureCriteria)
		block.Comment = objcfg.Decode(dep.Name)
		return block, nil
	})
}

// GenerateAll emits every dependency that involves a business activity of
// the node
func (g *DependencyGenerator) GenerateAll(ctx context.Context) error {
	deps, err := g.reg.catalog.dependencies(ctx)
	if err != nil {
		return g.wrapAll(err)
	}
	for _, dep := range deps {
		relevant, err := g.relevant(ctx, dep.ID)
		if err != nil {
			return g.wrapAll(err)
		}
		if !relevant {
			g.logger.Debug("Dependency does not involve this node", zap.Int("dep_id", dep.ID))
			continue
		}
		if _, err := g.Generate(ctx, dep.ID); err != nil {
			return err
		}
	}
	return nil
}

func (g *DependencyGenerator) relevant(ctx context.Context, id int) (bool, error) {
	cat := g.reg.catalog
	parents, err := cat.dependencyParents(ctx, id)
	if err != nil {
		return false, err
	}
	children, err := cat.dependencyChildren(ctx, id)
	if err != nil {
		return false, err
	}
	for _, baID := range append(append([]int(nil), parents...), children...) {
		owned, err := cat.ownsBA(ctx, baID)
		if err != nil || owned {
			return owned, err
		}
	}
	return false, nil
}
