package sheet

import (
	"context"
	"errors"
	"sync"
)

// StaticSource serves tables from memory. Used for tests and dry runs.
type StaticSource struct {
	mu     sync.RWMutex
	tables map[string][][]string
}

// NewStaticSource creates a StaticSource from raw values keyed by table
// name. Each table's first row is its header.
func NewStaticSource(tables map[string][][]string) *StaticSource {
	s := &StaticSource{tables: make(map[string][][]string, len(tables))}
	for name, values := range tables {
		s.tables[name] = values
	}
	return s
}

// Set replaces the values of a table.
func (s *StaticSource) Set(table string, values [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = values
}

// Fetch returns the rows of a table. Unknown tables are unavailable.
func (s *StaticSource) Fetch(ctx context.Context, table string) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(table, err)
	}

	s.mu.RLock()
	values, ok := s.tables[table]
	s.mu.RUnlock()

	if !ok {
		return nil, unavailable(table, errors.New("no such table"))
	}
	return RowsFromValues(values), nil
}
