package testutil

import (
	"strconv"

	"github.com/t77yq/bamcfg/internal/datastore"
	"github.com/t77yq/bamcfg/internal/model"
)

// Option overrides a column of a fixture row
type Option func(datastore.Row)

// With sets a column of a fixture row
func With(col, value string) Option {
	return func(r datastore.Row) {
		r[col] = value
	}
}

// Disabled clears the activation flag of a fixture row
func Disabled(col string) Option {
	return With(col, "0")
}

var kpiTypeCodes = map[model.KPIType]string{
	model.KPITypeHost:             "0",
	model.KPITypeMetaService:      "1",
	model.KPITypeBusinessActivity: "2",
	model.KPITypeBooleanRule:      "3",
}

// Fixture builds datastore rows for tests
type Fixture struct {
	source *datastore.MemorySource
}

// NewFixture creates an empty fixture
func NewFixture() *Fixture {
	return &Fixture{source: datastore.NewMemorySource()}
}

// Source returns the in-memory source holding the fixture rows
func (f *Fixture) Source() *datastore.MemorySource {
	return f.source
}

func (f *Fixture) add(table datastore.Table, row datastore.Row, opts []Option) *Fixture {
	for _, opt := range opts {
		opt(row)
	}
	f.source.Add(table, row)
	return f
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func flag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// Central adds an active default central node
func (f *Fixture) Central(id int, address string, opts ...Option) *Fixture {
	return f.Node(id, "Central", true, address, opts...)
}

// Node adds an active node
func (f *Fixture) Node(id int, name string, central bool, address string, opts ...Option) *Fixture {
	return f.add(datastore.TableNodes, datastore.Row{
		"id":            itoa(id),
		"name":          name,
		"localhost":     flag(central),
		"is_default":    flag(central),
		"ns_activate":   "1",
		"ns_ip_address": address,
	}, opts)
}

// BA adds an active business activity owned by nodeID
func (f *Fixture) BA(id int, name string, nodeID int, opts ...Option) *Fixture {
	f.add(datastore.TableBusinessActivities, datastore.Row{
		"ba_id":                  itoa(id),
		"name":                   name,
		"description":            "",
		"level_w":                "80",
		"level_c":                "60",
		"notification_interval":  "5",
		"notifications_enabled":  "1",
		"notification_options":   "w,c,r",
		"id_notification_period": "",
		"event_handler_enabled":  "0",
		"event_handler_command":  "",
		"activate":               "1",
	}, opts)
	if nodeID > 0 {
		f.Assign(id, nodeID)
	}
	return f
}

// Assign adds a business activity to a node
func (f *Fixture) Assign(baID, nodeID int) *Fixture {
	f.source.Add(datastore.TableBANodeRelations, datastore.Row{
		"ba_id":     itoa(baID),
		"poller_id": itoa(nodeID),
	})
	return f
}

// KPI adds an active KPI of baID pointing at targetID
func (f *Fixture) KPI(id, baID int, kind model.KPIType, targetID int, opts ...Option) *Fixture {
	row := datastore.Row{
		"kpi_id":          itoa(id),
		"id_ba":           itoa(baID),
		"kpi_type":        kpiTypeCodes[kind],
		"host_id":         "",
		"meta_id":         "",
		"id_indicator_ba": "",
		"boolean_id":      "",
		"drop_warning":    "10",
		"drop_critical":   "50",
		"drop_unknown":    "0",
		"activate":        "1",
	}
	switch kind {
	case model.KPITypeHost:
		row["host_id"] = itoa(targetID)
	case model.KPITypeMetaService:
		row["meta_id"] = itoa(targetID)
	case model.KPITypeBusinessActivity:
		row["id_indicator_ba"] = itoa(targetID)
	case model.KPITypeBooleanRule:
		row["boolean_id"] = itoa(targetID)
	}
	return f.add(datastore.TableKPIs, row, opts)
}

// Host adds a host a KPI may target
func (f *Fixture) Host(id int, name string, opts ...Option) *Fixture {
	return f.add(datastore.TableHosts, datastore.Row{
		"host_id":       itoa(id),
		"host_name":     name,
		"host_register": "1",
	}, opts)
}

// MetaService adds a meta-service a KPI may target
func (f *Fixture) MetaService(id int, name string) *Fixture {
	return f.add(datastore.TableMetaServices, datastore.Row{
		"meta_id":   itoa(id),
		"meta_name": name,
	}, nil)
}

// BooleanRule adds a boolean rule a KPI may target
func (f *Fixture) BooleanRule(id int, name string) *Fixture {
	return f.add(datastore.TableBooleanRules, datastore.Row{
		"boolean_id": itoa(id),
		"name":       name,
	}, nil)
}

// ContactGroup adds an active contact group with the given members, in order
func (f *Fixture) ContactGroup(id int, name string, memberIDs []int, opts ...Option) *Fixture {
	f.add(datastore.TableContactGroups, datastore.Row{
		"cg_id":       itoa(id),
		"cg_name":     name,
		"cg_alias":    name,
		"cg_activate": "1",
	}, opts)
	for _, m := range memberIDs {
		f.source.Add(datastore.TableContactGroupMembers, datastore.Row{
			"contactgroup_cg_id": itoa(id),
			"contact_contact_id": itoa(m),
		})
	}
	return f
}

// NotifyGroups links contact groups to a business activity
func (f *Fixture) NotifyGroups(baID int, cgIDs ...int) *Fixture {
	for _, cg := range cgIDs {
		f.source.Add(datastore.TableBAContactGroups, datastore.Row{
			"id_ba": itoa(baID),
			"id_cg": itoa(cg),
		})
	}
	return f
}

// Contact adds an active, registered contact
func (f *Fixture) Contact(id int, name string, opts ...Option) *Fixture {
	return f.add(datastore.TableContacts, datastore.Row{
		"contact_id":                           itoa(id),
		"contact_name":                         name,
		"contact_alias":                        name,
		"contact_email":                        name + "@example.com",
		"contact_register":                     "1",
		"contact_activate":                     "1",
		"contact_enable_notifications":         "1",
		"contact_host_notification_options":    "d,u,r",
		"contact_service_notification_options": "w,u,c,r",
		"timeperiod_tp_id":                     "",
		"timeperiod_tp_id2":                    "",
	}, opts)
}

// ContactTemplate adds a contact template
func (f *Fixture) ContactTemplate(id int, name string) *Fixture {
	return f.Contact(id, name, With("contact_register", "0"))
}

// ContactCommands links host and service notification commands to a contact
func (f *Fixture) ContactCommands(contactID int, hostCommandIDs, serviceCommandIDs []int) *Fixture {
	for _, id := range hostCommandIDs {
		f.source.Add(datastore.TableContactHostCommands, datastore.Row{
			"contact_contact_id": itoa(contactID),
			"command_command_id": itoa(id),
		})
	}
	for _, id := range serviceCommandIDs {
		f.source.Add(datastore.TableContactServiceCommands, datastore.Row{
			"contact_contact_id": itoa(contactID),
			"command_command_id": itoa(id),
		})
	}
	return f
}

// Command adds a command
func (f *Fixture) Command(id int, name, line string) *Fixture {
	return f.add(datastore.TableCommands, datastore.Row{
		"command_id":   itoa(id),
		"command_name": name,
		"command_line": line,
		"command_type": "2",
	}, nil)
}

// Timeperiod adds a timeperiod covering every day
func (f *Fixture) Timeperiod(id int, name string) *Fixture {
	row := datastore.Row{
		"tp_id":    itoa(id),
		"tp_name":  name,
		"tp_alias": name,
	}
	for _, day := range model.Weekdays {
		row["tp_"+day] = "00:00-24:00"
	}
	return f.add(datastore.TableTimeperiods, row, nil)
}

// Dependency adds a dependency between parent and child business activities
func (f *Fixture) Dependency(id int, name string, parents, children []int) *Fixture {
	f.add(datastore.TableDependencies, datastore.Row{
		"dep_id":                        itoa(id),
		"dep_name":                      name,
		"dep_description":               name,
		"inherits_parent":               "1",
		"execution_failure_criteria":    "n",
		"notification_failure_criteria": "c,w",
	}, nil)
	for _, ba := range parents {
		f.source.Add(datastore.TableDependencyParents, datastore.Row{"id_dep": itoa(id), "id_ba": itoa(ba)})
	}
	for _, ba := range children {
		f.source.Add(datastore.TableDependencyChildren, datastore.Row{"id_dep": itoa(id), "id_ba": itoa(ba)})
	}
	return f
}

// Escalation adds an escalation over business activities to contact groups
func (f *Fixture) Escalation(id int, name string, baIDs, cgIDs []int, opts ...Option) *Fixture {
	f.add(datastore.TableEscalations, datastore.Row{
		"esc_id":                itoa(id),
		"esc_name":              name,
		"esc_alias":             name,
		"first_notification":    "2",
		"last_notification":     "5",
		"notification_interval": "10",
		"escalation_period":     "",
		"escalation_options2":   "w,c",
	}, opts)
	for _, ba := range baIDs {
		f.source.Add(datastore.TableBAEscalations, datastore.Row{"id_ba": itoa(ba), "id_esc": itoa(id)})
	}
	for _, cg := range cgIDs {
		f.source.Add(datastore.TableEscalationContactGroups, datastore.Row{
			"escalation_esc_id":  itoa(id),
			"contactgroup_cg_id": itoa(cg),
		})
	}
	return f
}

// Diamond returns a complete fixture for node 2 in which contact 30 is
// reachable through contact groups 20 and 21, and both business activities
// share host 5 as a KPI target. Contact 31 is a template member of group 21.
func Diamond() *Fixture {
	return NewFixture().
		Central(1, "10.0.0.1").
		Node(2, "Poller-East", false, "10.0.0.2").
		Command(1, "centreon-bam-check", "$CENTREONPLUGINS$/check_bam $ARG1$").
		Command(2, "notify-by-email", "/usr/bin/mail -s $NOTIFICATIONTYPE$").
		Command(3, "restart#S#web", "/usr/bin/systemctl restart web").
		Timeperiod(1, "24x7").
		Host(5, "web-01").
		BA(10, "Web#S#Shop", 2,
			With("id_notification_period", "1"),
			With("event_handler_enabled", "1"),
			With("event_handler_command", "3")).
		BA(11, "Payments#BS#EU", 2).
		KPI(100, 10, model.KPITypeHost, 5).
		KPI(101, 11, model.KPITypeHost, 5).
		KPI(102, 11, model.KPITypeBusinessActivity, 10).
		ContactGroup(20, "ops", []int{30}).
		ContactGroup(21, "web-team", []int{31, 30}).
		NotifyGroups(10, 20, 21).
		NotifyGroups(11, 21).
		Contact(30, "alice", With("timeperiod_tp_id", "1"), With("timeperiod_tp_id2", "1")).
		ContactTemplate(31, "generic-contact").
		ContactCommands(30, []int{2}, []int{2}).
		Dependency(40, "shop-needs-payments", []int{11}, []int{10}).
		Escalation(50, "shop-escalation", []int{10}, []int{20})
}
