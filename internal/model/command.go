package model

import "github.com/t77yq/bamcfg/internal/datastore"

// Command is an engine command definition
type Command struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Line string `json:"line"`
	Type int    `json:"type"`
}

// CommandFromRow parses a command row
func CommandFromRow(r datastore.Row) Command {
	return Command{
		ID:   r.Int("command_id"),
		Name: r.String("command_name"),
		Line: r.String("command_line"),
		Type: r.Int("command_type"),
	}
}

// Weekdays lists timeperiod day columns in engine order
var Weekdays = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// Timeperiod is a named weekly schedule
type Timeperiod struct {
	ID    int               `json:"id"`
	Name  string            `json:"name"`
	Alias string            `json:"alias"`
	Days  map[string]string `json:"days"`
}

// TimeperiodFromRow parses a timeperiod row
func TimeperiodFromRow(r datastore.Row) Timeperiod {
	tp := Timeperiod{
		ID:    r.Int("tp_id"),
		Name:  r.String("tp_name"),
		Alias: r.String("tp_alias"),
		Days:  make(map[string]string, len(Weekdays)),
	}
	for _, day := range Weekdays {
		if v := r.String("tp_" + day); v != "" {
			tp.Days[day] = v
		}
	}
	return tp
}
