package model

import "github.com/t77yq/bamcfg/internal/datastore"

// KPIType discriminates what a KPI points at
type KPIType string

const (
	KPITypeHost             KPIType = "host"
	KPITypeMetaService      KPIType = "meta"
	KPITypeBusinessActivity KPIType = "ba"
	KPITypeBooleanRule      KPIType = "bool"
	KPITypeUnknown          KPIType = "unknown"
)

// kpiTypeCodes maps the stored kpi_type code to a KPIType
var kpiTypeCodes = map[string]KPIType{
	"0": KPITypeHost,
	"1": KPITypeMetaService,
	"2": KPITypeBusinessActivity,
	"3": KPITypeBooleanRule,
}

// KPI is one indicator contributing to a business activity
type KPI struct {
	ID             int     `json:"id"`
	BAID           int     `json:"ba_id"`
	Type           KPIType `json:"type"`
	TargetID       int     `json:"target_id"`
	ImpactWarning  float64 `json:"impact_warning"`
	ImpactCritical float64 `json:"impact_critical"`
	ImpactUnknown  float64 `json:"impact_unknown"`
	Active         bool    `json:"active"`
}

// KPIFromRow parses a mod_bam_kpi row. Only the target column matching the
// KPI type is read; an unrecognised type yields KPITypeUnknown.
func KPIFromRow(r datastore.Row) KPI {
	kpi := KPI{
		ID:             r.Int("kpi_id"),
		BAID:           r.Int("id_ba"),
		ImpactWarning:  r.Float("drop_warning"),
		ImpactCritical: r.Float("drop_critical"),
		ImpactUnknown:  r.Float("drop_unknown"),
		Active:         r.Bool("activate"),
	}

	t, ok := kpiTypeCodes[r.String("kpi_type")]
	if !ok {
		kpi.Type = KPITypeUnknown
		return kpi
	}
	kpi.Type = t

	switch t {
	case KPITypeHost:
		kpi.TargetID = r.Int("host_id")
	case KPITypeMetaService:
		kpi.TargetID = r.Int("meta_id")
	case KPITypeBusinessActivity:
		kpi.TargetID = r.Int("id_indicator_ba")
	case KPITypeBooleanRule:
		kpi.TargetID = r.Int("boolean_id")
	}
	return kpi
}

// Host is a monitored host a KPI may reference
type Host struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Template bool   `json:"template"`
}

// HostFromRow parses a host row
func HostFromRow(r datastore.Row) Host {
	return Host{
		ID:       r.Int("host_id"),
		Name:     r.String("host_name"),
		Template: r.String("host_register") == "0",
	}
}

// MetaService is an aggregated service a KPI may reference
type MetaService struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MetaServiceFromRow parses a meta_service row
func MetaServiceFromRow(r datastore.Row) MetaService {
	return MetaService{ID: r.Int("meta_id"), Name: r.String("meta_name")}
}

// BooleanRule is a boolean expression KPI target
type BooleanRule struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// BooleanRuleFromRow parses a mod_bam_boolean row
func BooleanRuleFromRow(r datastore.Row) BooleanRule {
	return BooleanRule{ID: r.Int("boolean_id"), Name: r.String("name")}
}
