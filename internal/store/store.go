// Package store provides the entity store backends configuration entities
// are synchronized into: memory, Postgres, Redis and a YAML directory.
//
// Every backend follows the same rules:
//   - Load reports absence with found=false, never an error
//   - Create fails with ErrExists when the id is taken
//   - Update shallow-merges the given attributes and fails with ErrNotFound
//     when the entity is missing
package store

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/JonMunkholm/specsync/internal/core"
)

var (
	// ErrNotFound is returned by Update for a missing entity.
	ErrNotFound = errors.New("entity not found")

	// ErrExists is returned by Create for a taken id.
	ErrExists = errors.New("entity already exists")

	// ErrInvalidID is returned when the data has no usable id.
	ErrInvalidID = errors.New("invalid entity id")
)

// Compile-time interface checks.
var (
	_ core.EntityStore = (*MemoryStore)(nil)
	_ core.EntityStore = (*PostgresStore)(nil)
	_ core.EntityStore = (*RedisStore)(nil)
	_ core.EntityStore = (*YAMLStore)(nil)
)

// entityID extracts and checks the id of data.
func entityID(data map[string]any) (string, error) {
	id, _ := data[core.IDKey].(string)
	if err := checkID(id); err != nil {
		return "", err
	}
	return id, nil
}

// checkID rejects ids that cannot be used as a key or file name.
func checkID(id string) error {
	if id == "" || strings.ContainsAny(id, "/\\") || id == "." || id == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// merge applies a shallow merge of data onto existing. The id is kept.
func merge(existing, data map[string]any, id string) map[string]any {
	out := make(map[string]any, len(existing)+len(data))
	maps.Copy(out, existing)
	maps.Copy(out, data)
	out[core.IDKey] = id
	return out
}

func existsError(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrExists, kind, id)
}

func notFoundError(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}
