package datastore

import (
	"strconv"
	"strings"
)

// Row is a single result row keyed by column name. NULL columns are stored
// as the empty string. Columns are only ever read by name, so the SELECT
// column order is not kept.
type Row map[string]string

// String returns the raw value of a column
func (r Row) String(col string) string {
	return r[col]
}

// Int returns the column as an integer, or 0 when empty or not numeric
func (r Row) Int(col string) int {
	v, err := strconv.Atoi(strings.TrimSpace(r[col]))
	if err != nil {
		return 0
	}
	return v
}

// Float returns the column as a float, or 0 when empty or not numeric
func (r Row) Float(col string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(r[col]), 64)
	if err != nil {
		return 0
	}
	return v
}

// Bool reports whether the column holds an enabled flag ("1", "true", "yes")
func (r Row) Bool(col string) bool {
	switch strings.ToLower(strings.TrimSpace(r[col])) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

// Has reports whether the column is present and not empty
func (r Row) Has(col string) bool {
	return r[col] != ""
}
