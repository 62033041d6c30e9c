package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/mitchellh/copystructure"
)

// MemoryStore keeps entities in process memory. Used for dry runs and tests.
// Stored values are deep copies, so callers cannot mutate them afterwards.
type MemoryStore struct {
	mu       sync.RWMutex
	entities map[string]map[string]map[string]any // kind -> id -> data
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entities: make(map[string]map[string]map[string]any)}
}

func (m *MemoryStore) Load(_ context.Context, kind, id string) (map[string]any, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.entities[kind][id]
	if !ok {
		return nil, false, nil
	}
	c, err := deepCopy(data)
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (m *MemoryStore) Create(_ context.Context, kind string, data map[string]any) (string, error) {
	id, err := entityID(data)
	if err != nil {
		return "", err
	}
	c, err := deepCopy(data)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entities[kind][id]; ok {
		return "", existsError(kind, id)
	}
	if m.entities[kind] == nil {
		m.entities[kind] = make(map[string]map[string]any)
	}
	m.entities[kind][id] = c
	return id, nil
}

func (m *MemoryStore) Update(_ context.Context, kind, id string, data map[string]any) error {
	c, err := deepCopy(data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.entities[kind][id]
	if !ok {
		return notFoundError(kind, id)
	}
	m.entities[kind][id] = merge(existing, c, id)
	return nil
}

// Count returns the number of entities of a kind.
func (m *MemoryStore) Count(kind string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entities[kind])
}

func deepCopy(data map[string]any) (map[string]any, error) {
	if data == nil {
		return map[string]any{}, nil
	}
	v, err := copystructure.Copy(data)
	if err != nil {
		return nil, fmt.Errorf("copy entity: %w", err)
	}
	return v.(map[string]any), nil
}
