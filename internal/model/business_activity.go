package model

import "github.com/t77yq/bamcfg/internal/datastore"

// BusinessActivity aggregates KPIs into one monitored business state. The
// monitoring engine sees it as a virtual service.
type BusinessActivity struct {
	ID                    int     `json:"id"`
	Name                  string  `json:"name"`
	Description           string  `json:"description"`
	WarningThreshold      float64 `json:"warning_threshold"`
	CriticalThreshold     float64 `json:"critical_threshold"`
	NotificationInterval  int     `json:"notification_interval"`
	NotificationsEnabled  bool    `json:"notifications_enabled"`
	NotificationOptions   string  `json:"notification_options"`
	NotificationPeriodID  int     `json:"notification_period_id,omitempty"`
	EventHandlerEnabled   bool    `json:"event_handler_enabled"`
	EventHandlerCommandID int     `json:"event_handler_command_id,omitempty"`
	Active                bool    `json:"active"`
}

// BusinessActivityFromRow parses a mod_bam row
func BusinessActivityFromRow(r datastore.Row) BusinessActivity {
	return BusinessActivity{
		ID:                    r.Int("ba_id"),
		Name:                  r.String("name"),
		Description:           r.String("description"),
		WarningThreshold:      r.Float("level_w"),
		CriticalThreshold:     r.Float("level_c"),
		NotificationInterval:  r.Int("notification_interval"),
		NotificationsEnabled:  r.Bool("notifications_enabled"),
		NotificationOptions:   r.String("notification_options"),
		NotificationPeriodID:  r.Int("id_notification_period"),
		EventHandlerEnabled:   r.Bool("event_handler_enabled"),
		EventHandlerCommandID: r.Int("event_handler_command"),
		Active:                r.Bool("activate"),
	}
}

// HasEventHandler reports whether the BA references an enabled event handler
func (ba BusinessActivity) HasEventHandler() bool {
	return ba.EventHandlerEnabled && ba.EventHandlerCommandID > 0
}
