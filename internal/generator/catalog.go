package generator

import (
	"context"

	"github.com/t77yq/bamcfg/internal/datastore"
	"github.com/t77yq/bamcfg/internal/model"
	"github.com/t77yq/bamcfg/internal/objcfg"
)

// catalog indexes cached rows by primary key and relation tables by their
// left column. Indexes are built on first use and dropped on reset.
type catalog struct {
	cache     *datastore.Cache
	nodeID    int
	indexes   map[datastore.Table]any
	relations map[datastore.Table]map[int][]int
	owned     map[int]bool
}

func newCatalog(cache *datastore.Cache, nodeID int) *catalog {
	return &catalog{
		cache:     cache,
		nodeID:    nodeID,
		indexes:   make(map[datastore.Table]any),
		relations: make(map[datastore.Table]map[int][]int),
	}
}

// lookup returns the row of table with the given id, parsed
func lookup[T any](ctx context.Context, c *catalog, table datastore.Table, id int, parse func(datastore.Row) T, key func(T) int) (T, bool, error) {
	var zero T
	if idx, ok := c.indexes[table]; ok {
		v, found := idx.(map[int]T)[id]
		return v, found, nil
	}

	rows, err := c.cache.Load(ctx, table)
	if err != nil {
		return zero, false, err
	}

	idx := make(map[int]T, len(rows))
	for _, row := range rows {
		v := parse(row)
		if _, dup := idx[key(v)]; !dup {
			idx[key(v)] = v
		}
	}
	c.indexes[table] = idx

	v, found := idx[id]
	return v, found, nil
}

// all returns every row of table, parsed, in query order
func all[T any](ctx context.Context, c *catalog, table datastore.Table, parse func(datastore.Row) T) ([]T, error) {
	rows, err := c.cache.Load(ctx, table)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		out = append(out, parse(row))
	}
	return out, nil
}

// relation returns the right-hand ids linked to from, in query order
func (c *catalog) relation(ctx context.Context, table datastore.Table, fromCol, toCol string, from int) ([]int, error) {
	if rel, ok := c.relations[table]; ok {
		return rel[from], nil
	}

	rows, err := c.cache.Load(ctx, table)
	if err != nil {
		return nil, err
	}

	rel := make(map[int][]int)
	for _, link := range model.LinksFromRows(rows, fromCol, toCol) {
		rel[link.From] = append(rel[link.From], link.To)
	}
	c.relations[table] = rel
	return rel[from], nil
}

func (c *catalog) nodes(ctx context.Context) ([]model.Node, error) {
	return all(ctx, c, datastore.TableNodes, model.NodeFromRow)
}

func (c *catalog) primaryNode(ctx context.Context) (model.Node, error) {
	nodes, err := c.nodes(ctx)
	if err != nil {
		return model.Node{}, err
	}
	primary, ok := model.PrimaryNode(nodes)
	if !ok {
		return model.Node{}, ErrNoPrimaryNode
	}
	return primary, nil
}

func (c *catalog) businessActivity(ctx context.Context, id int) (model.BusinessActivity, bool, error) {
	return lookup(ctx, c, datastore.TableBusinessActivities, id, model.BusinessActivityFromRow,
		func(ba model.BusinessActivity) int { return ba.ID })
}

func (c *catalog) businessActivities(ctx context.Context) ([]model.BusinessActivity, error) {
	return all(ctx, c, datastore.TableBusinessActivities, model.BusinessActivityFromRow)
}

// ownsBA reports whether the business activity is assigned to the node
func (c *catalog) ownsBA(ctx context.Context, baID int) (bool, error) {
	if c.owned == nil {
		rows, err := c.cache.Load(ctx, datastore.TableBANodeRelations)
		if err != nil {
			return false, err
		}
		owned := make(map[int]bool)
		for _, link := range model.LinksFromRows(rows, "poller_id", "ba_id") {
			if link.From == c.nodeID {
				owned[link.To] = true
			}
		}
		c.owned = owned
	}
	return c.owned[baID], nil
}

// nodeBusinessActivities returns the active business activities owned by
// the node, in id order
func (c *catalog) nodeBusinessActivities(ctx context.Context) ([]model.BusinessActivity, error) {
	bas, err := c.businessActivities(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.BusinessActivity
	for _, ba := range bas {
		if !ba.Active {
			continue
		}
		owned, err := c.ownsBA(ctx, ba.ID)
		if err != nil {
			return nil, err
		}
		if owned {
			out = append(out, ba)
		}
	}
	return out, nil
}

// nodeBAFilter keeps the ids of active business activities owned by the node
func (c *catalog) nodeBAFilter(ctx context.Context, ids []int) ([]int, error) {
	var out []int
	for _, id := range ids {
		owned, err := c.ownsBA(ctx, id)
		if err != nil {
			return nil, err
		}
		if !owned {
			continue
		}
		ba, found, err := c.businessActivity(ctx, id)
		if err != nil {
			return nil, err
		}
		if found && ba.Active {
			out = append(out, id)
		}
	}
	return out, nil
}

func (c *catalog) kpis(ctx context.Context, baID int) ([]model.KPI, error) {
	if idx, ok := c.indexes[datastore.TableKPIs]; ok {
		return idx.(map[int][]model.KPI)[baID], nil
	}
	kpis, err := all(ctx, c, datastore.TableKPIs, model.KPIFromRow)
	if err != nil {
		return nil, err
	}
	byBA := make(map[int][]model.KPI)
	for _, kpi := range kpis {
		byBA[kpi.BAID] = append(byBA[kpi.BAID], kpi)
	}
	c.indexes[datastore.TableKPIs] = byBA
	return byBA[baID], nil
}

func (c *catalog) host(ctx context.Context, id int) (model.Host, bool, error) {
	return lookup(ctx, c, datastore.TableHosts, id, model.HostFromRow,
		func(h model.Host) int { return h.ID })
}

func (c *catalog) metaService(ctx context.Context, id int) (model.MetaService, bool, error) {
	return lookup(ctx, c, datastore.TableMetaServices, id, model.MetaServiceFromRow,
		func(m model.MetaService) int { return m.ID })
}

func (c *catalog) booleanRule(ctx context.Context, id int) (model.BooleanRule, bool, error) {
	return lookup(ctx, c, datastore.TableBooleanRules, id, model.BooleanRuleFromRow,
		func(b model.BooleanRule) int { return b.ID })
}

func (c *catalog) contactGroup(ctx context.Context, id int) (model.ContactGroup, bool, error) {
	return lookup(ctx, c, datastore.TableContactGroups, id, model.ContactGroupFromRow,
		func(cg model.ContactGroup) int { return cg.ID })
}

func (c *catalog) groupMembers(ctx context.Context, cgID int) ([]int, error) {
	return c.relation(ctx, datastore.TableContactGroupMembers, "contactgroup_cg_id", "contact_contact_id", cgID)
}

func (c *catalog) baContactGroups(ctx context.Context, baID int) ([]int, error) {
	return c.relation(ctx, datastore.TableBAContactGroups, "id_ba", "id_cg", baID)
}

func (c *catalog) contact(ctx context.Context, id int) (model.Contact, bool, error) {
	return lookup(ctx, c, datastore.TableContacts, id, model.ContactFromRow,
		func(ct model.Contact) int { return ct.ID })
}

func (c *catalog) contactHostCommands(ctx context.Context, contactID int) ([]int, error) {
	return c.relation(ctx, datastore.TableContactHostCommands, "contact_contact_id", "command_command_id", contactID)
}

func (c *catalog) contactServiceCommands(ctx context.Context, contactID int) ([]int, error) {
	return c.relation(ctx, datastore.TableContactServiceCommands, "contact_contact_id", "command_command_id", contactID)
}

func (c *catalog) command(ctx context.Context, id int) (model.Command, bool, error) {
	return lookup(ctx, c, datastore.TableCommands, id, model.CommandFromRow,
		func(cmd model.Command) int { return cmd.ID })
}

// commandByName returns the first command with that name. Composed and
// decomposed spellings of the same name match.
func (c *catalog) commandByName(ctx context.Context, name string) (model.Command, bool, error) {
	cmds, err := all(ctx, c, datastore.TableCommands, model.CommandFromRow)
	if err != nil {
		return model.Command{}, false, err
	}
	for _, cmd := range cmds {
		if objcfg.SameName(cmd.Name, name) {
			return cmd, true, nil
		}
	}
	return model.Command{}, false, nil
}

func (c *catalog) timeperiod(ctx context.Context, id int) (model.Timeperiod, bool, error) {
	return lookup(ctx, c, datastore.TableTimeperiods, id, model.TimeperiodFromRow,
		func(tp model.Timeperiod) int { return tp.ID })
}

func (c *catalog) dependency(ctx context.Context, id int) (model.Dependency, bool, error) {
	return lookup(ctx, c, datastore.TableDependencies, id, model.DependencyFromRow,
		func(d model.Dependency) int { return d.ID })
}

func (c *catalog) dependencies(ctx context.Context) ([]model.Dependency, error) {
	return all(ctx, c, datastore.TableDependencies, model.DependencyFromRow)
}

func (c *catalog) dependencyParents(ctx context.Context, depID int) ([]int, error) {
	return c.relation(ctx, datastore.TableDependencyParents, "id_dep", "id_ba", depID)
}

func (c *catalog) dependencyChildren(ctx context.Context, depID int) ([]int, error) {
	return c.relation(ctx, datastore.TableDependencyChildren, "id_dep", "id_ba", depID)
}

func (c *catalog) escalation(ctx context.Context, id int) (model.Escalation, bool, error) {
	return lookup(ctx, c, datastore.TableEscalations, id, model.EscalationFromRow,
		func(e model.Escalation) int { return e.ID })
}

func (c *catalog) escalations(ctx context.Context) ([]model.Escalation, error) {
	return all(ctx, c, datastore.TableEscalations, model.EscalationFromRow)
}

func (c *catalog) escalationBAs(ctx context.Context, escID int) ([]int, error) {
	return c.relation(ctx, datastore.TableBAEscalations, "id_esc", "id_ba", escID)
}

func (c *catalog) escalationContactGroups(ctx context.Context, escID int) ([]int, error) {
	return c.relation(ctx, datastore.TableEscalationContactGroups, "escalation_esc_id", "contactgroup_cg_id", escID)
}
