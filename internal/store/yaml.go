package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// YAMLStore writes one "<kind>.<id>.yml" file per entity into a directory,
// in the layout of a configuration export.
type YAMLStore struct {
	mu  sync.Mutex
	dir string
}

// NewYAMLStore creates dir if needed and returns a store writing into it.
func NewYAMLStore(dir string) (*YAMLStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	return &YAMLStore{dir: dir}, nil
}

// Path returns the file an entity is stored in.
func (s *YAMLStore) Path(kind, id string) string {
	return filepath.Join(s.dir, kind+"."+id+".yml")
}

func (s *YAMLStore) Load(_ context.Context, kind, id string) (map[string]any, bool, error) {
	if err := checkID(id); err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(kind, id)
}

func (s *YAMLStore) Create(_ context.Context, kind string, data map[string]any) (string, error) {
	id, err := entityID(data)
	if err != nil {
		return "", err
	}
	raw, err := yaml.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode %s %q: %w", kind, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.Path(kind, id), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return "", existsError(kind, id)
	}
	if err != nil {
		return "", fmt.Errorf("create %s %q: %w", kind, id, err)
	}
	if _, err := f.Write(raw); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s %q: %w", kind, id, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write %s %q: %w", kind, id, err)
	}
	return id, nil
}

func (s *YAMLStore) Update(_ context.Context, kind, id string, data map[string]any) error {
	if err := checkID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, found, err := s.read(kind, id)
	if err != nil {
		return err
	}
	if !found {
		return notFoundError(kind, id)
	}

	raw, err := yaml.Marshal(merge(existing, data, id))
	if err != nil {
		return fmt.Errorf("encode %s %q: %w", kind, id, err)
	}

	// Write to a temp file and rename so readers never see a partial file.
	tmp, err := os.CreateTemp(s.dir, ".specsync-*.yml")
	if err != nil {
		return fmt.Errorf("update %s %q: %w", kind, id, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("update %s %q: %w", kind, id, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("update %s %q: %w", kind, id, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(kind, id)); err != nil {
		return fmt.Errorf("update %s %q: %w", kind, id, err)
	}
	return nil
}

// read loads an entity file. Callers hold s.mu.
func (s *YAMLStore) read(kind, id string) (map[string]any, bool, error) {
	raw, err := os.ReadFile(s.Path(kind, id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s %q: %w", kind, id, err)
	}

	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, false, fmt.Errorf("decode %s %q: %w", kind, id, err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, true, nil
}
