package core

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
)

// fakeStore is an in-memory EntityStore with failure injection.
type fakeStore struct {
	mu       sync.Mutex
	entities map[string]map[string]any // "kind/id" -> data

	loadErr   error
	createErr error
	panicOn   string // "load", "create" or "update"

	creates int
	updates int
}

func newFakeStore() *fakeStore {
	return &fakeStore{entities: make(map[string]map[string]any)}
}

func (f *fakeStore) put(kind, id string, data map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entities[kind+"/"+id] = data
}

func (f *fakeStore) get(kind, id string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entities[kind+"/"+id]
}

func (f *fakeStore) Load(_ context.Context, kind, id string) (map[string]any, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOn == "load" {
		panic("load exploded")
	}
	if f.loadErr != nil {
		return nil, false, f.loadErr
	}
	data, ok := f.entities[kind+"/"+id]
	if !ok {
		return nil, false, nil
	}
	return maps.Clone(data), true, nil
}

func (f *fakeStore) Create(_ context.Context, kind string, data map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOn == "create" {
		panic("create exploded")
	}
	if f.createErr != nil {
		return "", f.createErr
	}
	id, _ := data[IDKey].(string)
	if _, ok := f.entities[kind+"/"+id]; ok {
		return "", fmt.Errorf("%s %q already exists", kind, id)
	}
	f.creates++
	f.entities[kind+"/"+id] = maps.Clone(data)
	return id, nil
}

func (f *fakeStore) Update(_ context.Context, kind, id string, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOn == "update" {
		panic("update exploded")
	}
	existing, ok := f.entities[kind+"/"+id]
	if !ok {
		return errors.New("entity not found")
	}
	f.updates++
	maps.Copy(existing, data)
	return nil
}
