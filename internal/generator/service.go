package generator

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/t77yq/bamcfg/internal/model"
	"github.com/t77yq/bamcfg/internal/objcfg"
)

// ServiceGenerator writes the virtual service of each business activity
// owned by the node
type ServiceGenerator struct {
	base[int]
}

func newServiceGenerator(reg *Registry) *ServiceGenerator {
	return &ServiceGenerator{base: newBase[int](reg, KindService)}
}

// ServiceName returns the service description of a business activity
func ServiceName(baID int) string {
	return "ba_" + strconv.Itoa(baID)
}

// Generate emits the virtual service of a business activity, pulling the
// virtual host, its notification period, event handler, contact groups
// and, for KPIs on other business activities of the node, their services
func (g *ServiceGenerator) Generate(ctx context.Context, baID int) (Result, error) {
	return g.once(ctx, baID, func() (*objcfg.Block, error) {
		cat := g.reg.catalog

		ba, found, err := cat.businessActivity(ctx, baID)
		if err != nil {
			return nil, err
		}
		if !found {
			g.logger.Warn("Business activity not found", zap.Int("ba_id", baID))
			return nil, nil
		}
		if !ba.Active {
			g.logger.Warn("Business activity is disabled", zap.Int("ba_id", baID))
			return nil, nil
		}
		owned, err := cat.ownsBA(ctx, baID)
		if err != nil {
			return nil, err
		}
		if !owned {
			g.logger.Debug("Business activity belongs to another node", zap.Int("ba_id", baID))
			return nil, nil
		}

		hosts := g.reg.Hosts()
		if _, err := hosts.Generate(ctx); err != nil {
			return nil, err
		}

		checkCommand, err := g.reg.Commands().resolveByName(ctx, g.reg.scope.Naming.CheckCommand)
		if err != nil {
			return nil, err
		}

		period, err := g.reg.Timeperiods().resolve(ctx, ba.NotificationPeriodID)
		if err != nil {
			return nil, err
		}

		var eventHandler string
		if ba.HasEventHandler() {
			if eventHandler, err = g.reg.Commands().resolve(ctx, ba.EventHandlerCommandID); err != nil {
				return nil, err
			}
		}

		groupIDs, err := cat.baContactGroups(ctx, baID)
		if err != nil {
			return nil, err
		}
		groups, err := g.reg.ContactGroups().resolveAll(ctx, groupIDs)
		if err != nil {
			return nil, err
		}

		targets, err := g.kpiTargets(ctx, ba)
		if err != nil {
			return nil, err
		}

		block := objcfg.NewBlock("service").
			Add("host_name", hosts.HostName()).
			Add("service_description", ServiceName(baID)).
			Add("display_name", objcfg.Decode(ba.Name)).
			Add("check_command", checkCommand+"!"+strconv.Itoa(baID)).
			AddInt("max_check_attempts", 1).
			AddBool("active_checks_enabled", true).
			AddBool("passive_checks_enabled", false).
			AddInt("notification_interval", ba.NotificationInterval).
			Add("notification_period", period).
			Add("notification_options", ba.NotificationOptions).
			AddBool("notifications_enabled", ba.NotificationsEnabled).
			AddList("contact_groups", groups).
			AddBool("event_handler_enabled", ba.EventHandlerEnabled && eventHandler != "").
			Add("event_handler", eventHandler).
			AddInt("_BA_ID", baID).
			AddFloat("_LEVEL_W", ba.WarningThreshold).
			AddFloat("_LEVEL_C", ba.CriticalThreshold).
			AddList("_KPI_TARGETS", targets).
			AddBool("register", true)
		block.Comment = objcfg.Decode(ba.Description)
		return block, nil
	})
}

// kpiTargets resolves the active KPIs of a business activity to target
// references. KPIs whose target cannot be resolved are skipped.
func (g *ServiceGenerator) kpiTargets(ctx context.Context, ba model.BusinessActivity) ([]string, error) {
	cat := g.reg.catalog

	kpis, err := cat.kpis(ctx, ba.ID)
	if err != nil {
		return nil, err
	}

	targets := make([]string, 0, len(kpis))
	for _, kpi := range kpis {
		if !kpi.Active {
			continue
		}

		target, err := g.kpiTarget(ctx, kpi)
		if err != nil {
			return nil, err
		}
		if target == "" {
			g.logger.Warn("Skipping KPI with unresolved target",
				zap.Int("ba_id", ba.ID),
				zap.Int("kpi_id", kpi.ID),
				zap.String("kpi_type", string(kpi.Type)),
				zap.Int("target_id", kpi.TargetID))
			continue
		}
		targets = append(targets, target)
	}
	return targets, nil
}

func (g *ServiceGenerator) kpiTarget(ctx context.Context, kpi model.KPI) (string, error) {
	cat := g.reg.catalog

	switch kpi.Type {
	case model.KPITypeHost:
		host, found, err := cat.host(ctx, kpi.TargetID)
		if err != nil || !found || host.Template {
			return "", err
		}
		return "host:" + objcfg.Decode(host.Name), nil

	case model.KPITypeMetaService:
		meta, found, err := cat.metaService(ctx, kpi.TargetID)
		if err != nil || !found {
			return "", err
		}
		return "meta:" + objcfg.Decode(meta.Name), nil

	case model.KPITypeBooleanRule:
		rule, found, err := cat.booleanRule(ctx, kpi.TargetID)
		if err != nil || !found {
			return "", err
		}
		return "bool:" + objcfg.Decode(rule.Name), nil

	case model.KPITypeBusinessActivity:
		target, found, err := cat.businessActivity(ctx, kpi.TargetID)
		if err != nil || !found || !target.Active {
			return "", err
		}
		owned, err := cat.ownsBA(ctx, target.ID)
		if err != nil {
			return "", err
		}
		if owned {
			res, err := g.Generate(ctx, target.ID)
			if err != nil || !res.Resolved() {
				return "", err
			}
		}
		return "ba:" + ServiceName(target.ID), nil

	default:
		return "", nil
	}
}

// GenerateAll emits the services of every active business activity owned
// by the node
func (g *ServiceGenerator) GenerateAll(ctx context.Context) error {
	bas, err := g.reg.catalog.nodeBusinessActivities(ctx)
	if err != nil {
		return g.wrapAll(err)
	}
	for _, ba := range bas {
		if _, err := g.Generate(ctx, ba.ID); err != nil {
			return err
		}
	}
	return nil
}

// resolveAll pulls the services of the given business activities and
// returns their descriptions
func (g *ServiceGenerator) resolveAll(ctx context.Context, baIDs []int) ([]string, error) {
	names := make([]string, 0, len(baIDs))
	for _, id := range baIDs {
		res, err := g.Generate(ctx, id)
		if err != nil {
			return nil, err
		}
		if res.Resolved() {
			names = append(names, ServiceName(id))
		}
	}
	return names, nil
}
