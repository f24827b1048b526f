package model

import "github.com/t77yq/bamcfg/internal/datastore"

// Dependency links parent business activities to dependent ones
type Dependency struct {
	ID                          int    `json:"id"`
	Name                        string `json:"name"`
	Description                 string `json:"description"`
	InheritsParent              bool   `json:"inherits_parent"`
	ExecutionFailureCriteria    string `json:"execution_failure_criteria"`
	NotificationFailureCriteria string `json:"notification_failure_criteria"`
}

// DependencyFromRow parses a dependency row
func DependencyFromRow(r datastore.Row) Dependency {
	return Dependency{
		ID:                          r.Int("dep_id"),
		Name:                        r.String("dep_name"),
		Description:                 r.String("dep_description"),
		InheritsParent:              r.Bool("inherits_parent"),
		ExecutionFailureCriteria:    r.String("execution_failure_criteria"),
		NotificationFailureCriteria: r.String("notification_failure_criteria"),
	}
}

// Escalation widens notification of business activities to more contact
// groups after a number of notifications
type Escalation struct {
	ID                   int    `json:"id"`
	Name                 string `json:"name"`
	Alias                string `json:"alias"`
	FirstNotification    int    `json:"first_notification"`
	LastNotification     int    `json:"last_notification"`
	NotificationInterval int    `json:"notification_interval"`
	PeriodID             int    `json:"period_id,omitempty"`
	Options              string `json:"options"`
}

// EscalationFromRow parses an escalation row
func EscalationFromRow(r datastore.Row) Escalation {
	return Escalation{
		ID:                   r.Int("esc_id"),
		Name:                 r.String("esc_name"),
		Alias:                r.String("esc_alias"),
		FirstNotification:    r.Int("first_notification"),
		LastNotification:     r.Int("last_notification"),
		NotificationInterval: r.Int("notification_interval"),
		PeriodID:             r.Int("escalation_period"),
		Options:              r.String("escalation_options2"),
	}
}

// Link is one row of a many-to-many relation table
type Link struct {
	From int
	To   int
}

// LinksFromRows reads the two id columns of a relation table
func LinksFromRows(rows []datastore.Row, fromCol, toCol string) []Link {
	links := make([]Link, 0, len(rows))
	for _, r := range rows {
		links = append(links, Link{From: r.Int(fromCol), To: r.Int(toCol)})
	}
	return links
}
