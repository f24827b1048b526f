package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/t77yq/bamcfg/internal/datastore"
)

func TestPrimaryNode(t *testing.T) {
	tests := []struct {
		name   string
		nodes  []Node
		wantID int
		wantOK bool
	}{
		{
			name:   "No nodes",
			wantOK: false,
		},
		{
			name: "No central node",
			nodes: []Node{
				{ID: 1, Active: true},
				{ID: 2, Active: true},
			},
			wantOK: false,
		},
		{
			name: "Inactive central ignored",
			nodes: []Node{
				{ID: 1, Central: true, Active: false},
				{ID: 2, Central: true, Active: true},
			},
			wantID: 2,
			wantOK: true,
		},
		{
			name: "Default central preferred",
			nodes: []Node{
				{ID: 1, Central: true, Active: true},
				{ID: 3, Central: true, Active: true, Default: true},
			},
			wantID: 3,
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, ok := PrimaryNode(tt.nodes)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, node.ID)
		})
	}
}

func TestKPIFromRow(t *testing.T) {
	tests := []struct {
		name       string
		row        datastore.Row
		wantType   KPIType
		wantTarget int
	}{
		{"Host", datastore.Row{"kpi_type": "0", "host_id": "5", "meta_id": "9"}, KPITypeHost, 5},
		{"Meta", datastore.Row{"kpi_type": "1", "meta_id": "9"}, KPITypeMetaService, 9},
		{"BA", datastore.Row{"kpi_type": "2", "id_indicator_ba": "4"}, KPITypeBusinessActivity, 4},
		{"Boolean", datastore.Row{"kpi_type": "3", "boolean_id": "2"}, KPITypeBooleanRule, 2},
		{"Unknown", datastore.Row{"kpi_type": "7", "host_id": "5"}, KPITypeUnknown, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kpi := KPIFromRow(tt.row)
			assert.Equal(t, tt.wantType, kpi.Type)
			assert.Equal(t, tt.wantTarget, kpi.TargetID)
		})
	}
}

func TestTemplatesAndTimeperiods(t *testing.T) {
	contact := ContactFromRow(datastore.Row{"contact_id": "1", "contact_register": "0"})
	assert.True(t, contact.Template)

	host := HostFromRow(datastore.Row{"host_id": "1", "host_register": "1"})
	assert.False(t, host.Template)

	tp := TimeperiodFromRow(datastore.Row{"tp_id": "1", "tp_name": "workhours", "tp_monday": "09:00-17:00"})
	assert.Equal(t, map[string]string{"monday": "09:00-17:00"}, tp.Days)
}
