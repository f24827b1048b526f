package datastore

// Table identifies one relational object type read by the compiler
type Table string

const (
	TableNodes                   Table = "nagios_server"
	TableBusinessActivities      Table = "mod_bam"
	TableBANodeRelations         Table = "mod_bam_poller_relations"
	TableKPIs                    Table = "mod_bam_kpi"
	TableHosts                   Table = "host"
	TableMetaServices            Table = "meta_service"
	TableBooleanRules            Table = "mod_bam_boolean"
	TableContactGroups           Table = "contactgroup"
	TableContactGroupMembers     Table = "contactgroup_contact_relation"
	TableContacts                Table = "contact"
	TableContactHostCommands     Table = "contact_hostcommands_relation"
	TableContactServiceCommands  Table = "contact_servicecommands_relation"
	TableBAContactGroups         Table = "mod_bam_cg_relation"
	TableCommands                Table = "command"
	TableTimeperiods             Table = "timeperiod"
	TableDependencies            Table = "dependency"
	TableDependencyParents       Table = "mod_bam_dep_parent_relations"
	TableDependencyChildren      Table = "mod_bam_dep_child_relations"
	TableEscalations             Table = "escalation"
	TableBAEscalations           Table = "mod_bam_escal_relations"
	TableEscalationContactGroups Table = "escalation_contactgroup_relation"
)

// queries holds the single read query issued for each table. Filtering is
// done in memory by the callers, so none of them take arguments.
var queries = map[Table]string{
	TableNodes: `SELECT id, name, localhost, is_default, ns_activate, ns_ip_address
		FROM nagios_server ORDER BY id`,
	TableBusinessActivities: `SELECT ba_id, name, description, level_w, level_c,
		notification_interval, notifications_enabled, notification_options,
		id_notification_period, event_handler_enabled, event_handler_command, activate
		FROM mod_bam ORDER BY ba_id`,
	TableBANodeRelations: `SELECT ba_id, poller_id FROM mod_bam_poller_relations ORDER BY poller_id, ba_id`,
	TableKPIs: `SELECT kpi_id, id_ba, kpi_type, host_id, meta_id, id_indicator_ba, boolean_id,
		drop_warning, drop_critical, drop_unknown, activate
		FROM mod_bam_kpi ORDER BY kpi_id`,
	TableHosts:         `SELECT host_id, host_name, host_register FROM host ORDER BY host_id`,
	TableMetaServices:  `SELECT meta_id, meta_name FROM meta_service ORDER BY meta_id`,
	TableBooleanRules:  `SELECT boolean_id, name FROM mod_bam_boolean ORDER BY boolean_id`,
	TableContactGroups: `SELECT cg_id, cg_name, cg_alias, cg_activate FROM contactgroup ORDER BY cg_id`,
	TableContactGroupMembers: `SELECT contactgroup_cg_id, contact_contact_id
		FROM contactgroup_contact_relation ORDER BY contactgroup_cg_id, contact_contact_id`,
	TableContacts: `SELECT contact_id, contact_name, contact_alias, contact_email, contact_register,
		contact_activate, contact_enable_notifications, contact_host_notification_options,
		contact_service_notification_options, timeperiod_tp_id, timeperiod_tp_id2
		FROM contact ORDER BY contact_id`,
	TableContactHostCommands: `SELECT contact_contact_id, command_command_id
		FROM contact_hostcommands_relation ORDER BY contact_contact_id, command_command_id`,
	TableContactServiceCommands: `SELECT contact_contact_id, command_command_id
		FROM contact_servicecommands_relation ORDER BY contact_contact_id, command_command_id`,
	TableBAContactGroups: `SELECT id_ba, id_cg FROM mod_bam_cg_relation ORDER BY id_ba, id_cg`,
	TableCommands:        `SELECT command_id, command_name, command_line, command_type FROM command ORDER BY command_id`,
	TableTimeperiods: `SELECT tp_id, tp_name, tp_alias, tp_sunday, tp_monday, tp_tuesday,
		tp_wednesday, tp_thursday, tp_friday, tp_saturday
		FROM timeperiod ORDER BY tp_id`,
	TableDependencies: `SELECT dep_id, dep_name, dep_description, inherits_parent,
		execution_failure_criteria, notification_failure_criteria
		FROM dependency ORDER BY dep_id`,
	TableDependencyParents:  `SELECT id_dep, id_ba FROM mod_bam_dep_parent_relations ORDER BY id_dep, id_ba`,
	TableDependencyChildren: `SELECT id_dep, id_ba FROM mod_bam_dep_child_relations ORDER BY id_dep, id_ba`,
	TableEscalations: `SELECT esc_id, esc_name, esc_alias, first_notification, last_notification,
		notification_interval, escalation_period, escalation_options2
		FROM escalation ORDER BY esc_id`,
	TableBAEscalations: `SELECT id_ba, id_esc FROM mod_bam_escal_relations ORDER BY id_esc, id_ba`,
	TableEscalationContactGroups: `SELECT escalation_esc_id, contactgroup_cg_id
		FROM escalation_contactgroup_relation ORDER BY escalation_esc_id, contactgroup_cg_id`,
}

// Tables returns every table the compiler may read
func Tables() []Table {
	return []Table{
		TableNodes, TableBusinessActivities, TableBANodeRelations, TableKPIs,
		TableHosts, TableMetaServices, TableBooleanRules,
		TableContactGroups, TableContactGroupMembers, TableContacts,
		TableContactHostCommands, TableContactServiceCommands, TableBAContactGroups,
		TableCommands, TableTimeperiods,
		TableDependencies, TableDependencyParents, TableDependencyChildren,
		TableEscalations, TableBAEscalations, TableEscalationContactGroups,
	}
}

// Query returns the read query for a table
func (t Table) Query() (string, bool) {
	q, ok := queries[t]
	return q, ok
}
