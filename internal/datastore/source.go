package datastore

import (
	"context"
	"sync"
)

// Source is the relational read interface the compiler consumes
type Source interface {
	// Query returns every row of a table in a stable order
	Query(ctx context.Context, table Table) ([]Row, error)
}

// MemorySource serves rows held in memory. It records how many times each
// table was queried and can be told to fail on a table.
type MemorySource struct {
	mu       sync.Mutex
	rows     map[Table][]Row
	failures map[Table]error
	calls    map[Table]int
}

// NewMemorySource creates an empty in-memory source
func NewMemorySource() *MemorySource {
	return &MemorySource{
		rows:     make(map[Table][]Row),
		failures: make(map[Table]error),
		calls:    make(map[Table]int),
	}
}

// Add appends rows to a table
func (s *MemorySource) Add(table Table, rows ...Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[table] = append(s.rows[table], rows...)
}

// FailOn makes every query of table return err
func (s *MemorySource) FailOn(table Table, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[table] = err
}

// Calls returns how many times table was queried
func (s *MemorySource) Calls(table Table) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[table]
}

// Query implements Source.Query
func (s *MemorySource) Query(ctx context.Context, table Table) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[table]++
	if err, ok := s.failures[table]; ok {
		return nil, err
	}

	rows := make([]Row, 0, len(s.rows[table]))
	for _, r := range s.rows[table] {
		copied := make(Row, len(r))
		for k, v := range r {
			copied[k] = v
		}
		rows = append(rows, copied)
	}
	return rows, nil
}
