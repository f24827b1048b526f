package generator

import (
	"context"

	"go.uber.org/zap"

	"github.com/t77yq/bamcfg/internal/objcfg"
)

// EscalationGenerator writes service escalations for business activities
// of the node
type EscalationGenerator struct {
	base[int]
}

func newEscalationGenerator(reg *Registry) *EscalationGenerator {
	return &EscalationGenerator{base: newBase[int](reg, KindEscalation)}
}

// Generate emits an escalation over the node's business activities it
// applies to, pulling its contact groups and escalation period
func (g *EscalationGenerator) Generate(ctx context.Context, id int) (Result, error) {
	return g.once(ctx, id, func() (*objcfg.Block, error) {
		cat := g.reg.catalog

		esc, found, err := cat.escalation(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found {
			g.logger.Warn("Escalation not found", zap.Int("esc_id", id))
			return nil, nil
		}

		baIDs, err := cat.escalationBAs(ctx, id)
		if err != nil {
			return nil, err
		}
		if baIDs, err = cat.nodeBAFilter(ctx, baIDs); err != nil {
			return nil, err
		}
		services, err := g.reg.Services().resolveAll(ctx, baIDs)
		if err != nil {
			return nil, err
		}
		if len(services) == 0 {
			g.logger.Warn("Escalation has no business activity on this node", zap.Int("esc_id", id))
			return nil, nil
		}

		groupIDs, err := cat.escalationContactGroups(ctx, id)
		if err != nil {
			return nil, err
		}
		groups, err := g.reg.ContactGroups().resolveAll(ctx, groupIDs)
		if err != nil {
			return nil, err
		}

		period, err := g.reg.Timeperiods().resolve(ctx, esc.PeriodID)
		if err != nil {
			return nil, err
		}

		block := objcfg.NewBlock("serviceescalation").
			Add("host_name", g.reg.Hosts().HostName()).
			AddList("service_description", services).
			AddList("contact_groups", groups).
			AddInt("first_notification", esc.FirstNotification).
			AddInt("last_notification", esc.LastNotification).
			AddInt("notification_interval", esc.NotificationInterval).
			Add("escalation_period", period).
			Add("escalation_options", esc.Options)
		block.Comment = objcfg.Decode(esc.Name)
		return block, nil
	})
}

// GenerateAll emits every escalation linked to a business activity of the node
func (g *EscalationGenerator) GenerateAll(ctx context.Context) error {
	escs, err := g.reg.catalog.escalations(ctx)
	if err != nil {
		return g.wrapAll(err)
	}
	for _, esc := range escs {
		baIDs, err := g.reg.catalog.escalationBAs(ctx, esc.ID)
		if err != nil {
			return g.wrapAll(err)
		}
		owned, err := g.reg.catalog.nodeBAFilter(ctx, baIDs)
		if err != nil {
			return g.wrapAll(err)
		}
		if len(owned) == 0 {
			g.logger.Debug("Escalation does not involve this node", zap.Int("esc_id", esc.ID))
			continue
		}
		if _, err := g.Generate(ctx, esc.ID); err != nil {
			return err
		}
	}
	return nil
}
