package datastore

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTable is returned when no read query is registered for a table
	ErrUnknownTable = errors.New("unknown table")

	// ErrUnsupportedDriver is returned when the configured SQL driver is not registered
	ErrUnsupportedDriver = errors.New("unsupported datastore driver")
)

// QueryError reports a failed read of one table. It is fatal for the
// generation pass that triggered it.
type QueryError struct {
	Table Table
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Table, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
