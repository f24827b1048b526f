package generator

import (
	"context"

	"go.uber.org/zap"

	"github.com/t77yq/bamcfg/internal/objcfg"
)

// ContactGroupGenerator writes contact group definitions and pulls their
// member contacts
type ContactGroupGenerator struct {
	base[int]
}

func newContactGroupGenerator(reg *Registry) *ContactGroupGenerator {
	return &ContactGroupGenerator{base: newBase[int](reg, KindContactGroup)}
}

// Generate emits a contact group. Members are the contacts of the group, in
// relation order, that resolve to a materialized contact.
func (g *ContactGroupGenerator) Generate(ctx context.Context, id int) (Result, error) {
	return g.once(ctx, id, func() (*objcfg.Block, error) {
		cg, found, err := g.reg.catalog.contactGroup(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found {
			g.logger.Warn("Contact group not found", zap.Int("cg_id", id))
			return nil, nil
		}
		if !cg.Active {
			g.logger.Warn("Contact group is disabled", zap.Int("cg_id", id))
			return nil, nil
		}

		memberIDs, err := g.reg.catalog.groupMembers(ctx, id)
		if err != nil {
			return nil, err
		}
		members, err := g.reg.Contacts().resolveAll(ctx, memberIDs)
		if err != nil {
			return nil, err
		}

		return objcfg.NewBlock("contactgroup").
			Add("contactgroup_name", objcfg.Decode(cg.Name)).
			Add("alias", objcfg.Decode(cg.Alias)).
			AddList("members", members), nil
	})
}

// GenerateAll emits the contact groups of the node's business activities
func (g *ContactGroupGenerator) GenerateAll(ctx context.Context) error {
	bas, err := g.reg.catalog.nodeBusinessActivities(ctx)
	if err != nil {
		return g.wrapAll(err)
	}
	for _, ba := range bas {
		ids, err := g.reg.catalog.baContactGroups(ctx, ba.ID)
		if err != nil {
			return g.wrapAll(err)
		}
		if _, err := g.resolveAll(ctx, ids); err != nil {
			return err
		}
	}
	return nil
}

// resolveAll pulls the given contact groups and returns the names of those
// that resolved
func (g *ContactGroupGenerator) resolveAll(ctx context.Context, ids []int) ([]string, error) {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		res, err := g.Generate(ctx, id)
		if err != nil {
			return nil, err
		}
		if !res.Resolved() {
			continue
		}
		cg, _, err := g.reg.catalog.contactGroup(ctx, id)
		if err != nil {
			return nil, err
		}
		names = append(names, objcfg.Decode(cg.Name))
	}
	return names, nil
}
