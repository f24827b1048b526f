package model

import "github.com/t77yq/bamcfg/internal/datastore"

// ContactGroup is a named set of contacts
type ContactGroup struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Alias  string `json:"alias"`
	Active bool   `json:"active"`
}

// ContactGroupFromRow parses a contactgroup row
func ContactGroupFromRow(r datastore.Row) ContactGroup {
	return ContactGroup{
		ID:     r.Int("cg_id"),
		Name:   r.String("cg_name"),
		Alias:  r.String("cg_alias"),
		Active: r.Bool("cg_activate"),
	}
}

// Contact is a notification recipient. Templates are never materialized
// as group members.
type Contact struct {
	ID                          int    `json:"id"`
	Name                        string `json:"name"`
	Alias                       string `json:"alias"`
	Email                       string `json:"email"`
	Template                    bool   `json:"template"`
	Active                      bool   `json:"active"`
	NotificationsEnabled        bool   `json:"notifications_enabled"`
	HostNotificationOptions     string `json:"host_notification_options"`
	ServiceNotificationOptions  string `json:"service_notification_options"`
	HostNotificationPeriodID    int    `json:"host_notification_period_id,omitempty"`
	ServiceNotificationPeriodID int    `json:"service_notification_period_id,omitempty"`
}

// ContactFromRow parses a contact row
func ContactFromRow(r datastore.Row) Contact {
	return Contact{
		ID:                          r.Int("contact_id"),
		Name:                        r.String("contact_name"),
		Alias:                       r.String("contact_alias"),
		Email:                       r.String("contact_email"),
		Template:                    r.String("contact_register") == "0",
		Active:                      r.Bool("contact_activate"),
		NotificationsEnabled:        r.Bool("contact_enable_notifications"),
		HostNotificationOptions:     r.String("contact_host_notification_options"),
		ServiceNotificationOptions:  r.String("contact_service_notification_options"),
		HostNotificationPeriodID:    r.Int("timeperiod_tp_id"),
		ServiceNotificationPeriodID: r.Int("timeperiod_tp_id2"),
	}
}
