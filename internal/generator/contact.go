package generator

import (
	"context"

	"go.uber.org/zap"

	"github.com/t77yq/bamcfg/internal/objcfg"
)

// ContactGenerator writes contact definitions. Contacts are only pulled by
// contact groups; templates and disabled contacts are never materialized.
type ContactGenerator struct {
	base[int]
}

func newContactGenerator(reg *Registry) *ContactGenerator {
	return &ContactGenerator{base: newBase[int](reg, KindContact)}
}

// Generate emits a contact along with its notification periods and commands
func (g *ContactGenerator) Generate(ctx context.Context, id int) (Result, error) {
	return g.once(ctx, id, func() (*objcfg.Block, error) {
		cat := g.reg.catalog

		contact, found, err := cat.contact(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found {
			g.logger.Warn("Contact not found", zap.Int("contact_id", id))
			return nil, nil
		}
		if contact.Template {
			g.logger.Warn("Contact is a template, excluded from group membership",
				zap.Int("contact_id", id),
				zap.String("contact_name", contact.Name))
			return nil, nil
		}
		if !contact.Active {
			g.logger.Warn("Contact is disabled", zap.Int("contact_id", id))
			return nil, nil
		}

		timeperiods := g.reg.Timeperiods()
		hostPeriod, err := timeperiods.resolve(ctx, contact.HostNotificationPeriodID)
		if err != nil {
			return nil, err
		}
		servicePeriod, err := timeperiods.resolve(ctx, contact.ServiceNotificationPeriodID)
		if err != nil {
			return nil, err
		}

		hostCommandIDs, err := cat.contactHostCommands(ctx, id)
		if err != nil {
			return nil, err
		}
		hostCommands, err := g.resolveCommands(ctx, hostCommandIDs)
		if err != nil {
			return nil, err
		}
		serviceCommandIDs, err := cat.contactServiceCommands(ctx, id)
		if err != nil {
			return nil, err
		}
		serviceCommands, err := g.resolveCommands(ctx, serviceCommandIDs)
		if err != nil {
			return nil, err
		}

		return objcfg.NewBlock("contact").
			Add("contact_name", objcfg.Decode(contact.Name)).
			Add("alias", objcfg.Decode(contact.Alias)).
			Add("email", contact.Email).
			Add("host_notification_period", hostPeriod).
			Add("service_notification_period", servicePeriod).
			Add("host_notification_options", contact.HostNotificationOptions).
			Add("service_notification_options", contact.ServiceNotificationOptions).
			AddList("host_notification_commands", hostCommands).
			AddList("service_notification_commands", serviceCommands).
			AddBool("host_notifications_enabled", contact.NotificationsEnabled).
			AddBool("service_notifications_enabled", contact.NotificationsEnabled).
			AddBool("register", true), nil
	})
}

func (g *ContactGenerator) resolveCommands(ctx context.Context, ids []int) ([]string, error) {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		name, err := g.reg.Commands().resolve(ctx, id)
		if err != nil {
			return nil, err
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// GenerateAll emits the members of the node's contact groups. A pass does
// not need it since contact groups pull their members.
func (g *ContactGenerator) GenerateAll(ctx context.Context) error {
	bas, err := g.reg.catalog.nodeBusinessActivities(ctx)
	if err != nil {
		return g.wrapAll(err)
	}
	for _, ba := range bas {
		groupIDs, err := g.reg.catalog.baContactGroups(ctx, ba.ID)
		if err != nil {
			return g.wrapAll(err)
		}
		for _, cgID := range groupIDs {
			memberIDs, err := g.reg.catalog.groupMembers(ctx, cgID)
			if err != nil {
				return g.wrapAll(err)
			}
			if _, err := g.resolveAll(ctx, memberIDs); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveAll pulls the given contacts and returns the names of those that
// were materialized
func (g *ContactGenerator) resolveAll(ctx context.Context, ids []int) ([]string, error) {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		res, err := g.Generate(ctx, id)
		if err != nil {
			return nil, err
		}
		if !res.Resolved() {
			continue
		}
		contact, _, err := g.reg.catalog.contact(ctx, id)
		if err != nil {
			return nil, err
		}
		names = append(names, objcfg.Decode(contact.Name))
	}
	return names, nil
}
