// Package core provides the business logic for spreadsheet-to-config sync operations.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/specsync/internal/sheet"
)

// SyncFlag is the sync state derived from a row's status column.
type SyncFlag int

const (
	FlagNone SyncFlag = iota
	FlagCreatePending
	FlagUpdatePending
)

func (f SyncFlag) String() string {
	switch f {
	case FlagCreatePending:
		return "create"
	case FlagUpdatePending:
		return "update"
	default:
		return "none"
	}
}

// FilterConfig holds the status column settings used by Classify.
type FilterConfig struct {
	StatusColumn string // Normalized column name holding the flag
	CreateToken  string // Value marking a row ready to create
	UpdateToken  string // Value marking a row ready to re-sync
	UpdateMode   bool   // Whether UpdateToken rows are honoured
}

// SyncConfig is the explicit configuration for one sync run.
type SyncConfig struct {
	Filter FilterConfig

	// WorkflowType is assigned to newly created workflows.
	WorkflowType string

	// WorkflowsFlaggedOnly limits workflow rows to flagged ones.
	WorkflowsFlaggedOnly bool

	// MaxConcurrentRuns and RunWait configure the service's RunLimiter.
	MaxConcurrentRuns int
	RunWait           time.Duration
}

// DefaultWorkflowType is used when SyncConfig.WorkflowType is empty.
const DefaultWorkflowType = "content_moderation"

// Spec is the attribute mapping handed to the entity store for one entity.
// Every spec carries its machine name under IDKey.
type Spec map[string]any

// IDKey is the attribute holding an entity's machine name.
const IDKey = "id"

// ID returns the entity id of the spec.
func (s Spec) ID() string {
	id, _ := s[IDKey].(string)
	return id
}

// EntityStore persists configuration entities by kind and id.
// Satisfied by every backend in package store.
type EntityStore interface {
	Load(ctx context.Context, kind, id string) (map[string]any, bool, error)
	Create(ctx context.Context, kind string, data map[string]any) (string, error)
	Update(ctx context.Context, kind, id string, data map[string]any) error
}

// MapFunc maps a sheet row to an entity spec. Returning a *SkipError
// excludes the row without failing the run.
type MapFunc func(row sheet.Row) (Spec, error)

// KindInfo contains display information about an entity kind.
type KindInfo struct {
	Key   string // Unique identifier: "content_type"
	Group string // Display group: "Structure", "Taxonomy"
	Label string // Human label used in messages: "content type"
	Table string // Sheet tab name: "Content types"
}

// KindDefinition contains everything needed to sync one entity kind.
type KindDefinition struct {
	Info KindInfo
	Map  MapFunc

	// Order controls the position in SyncAll; bundles before fields.
	Order int
}

// OutcomeStatus is the result category for one row.
type OutcomeStatus string

const (
	StatusCreated OutcomeStatus = "created"
	StatusUpdated OutcomeStatus = "updated"
	StatusSkipped OutcomeStatus = "skipped"
	StatusFailed  OutcomeStatus = "failed"
)

// Outcome records what happened to one row or workflow.
type Outcome struct {
	Kind   string
	ID     string
	Status OutcomeStatus
	Reason string // Skip reason or failure message
	Row    int    // 1-based data row number, 0 when not row-bound
}

// String renders the outcome as one line of status text.
func (o Outcome) String() string {
	id := o.ID
	if id == "" && o.Row > 0 {
		id = fmt.Sprintf("row %d", o.Row)
	}
	if o.Reason == "" {
		return fmt.Sprintf("%s %s %q", o.Status, o.Kind, id)
	}
	return fmt.Sprintf("%s %s %q: %s", o.Status, o.Kind, id, o.Reason)
}

// RunResult contains the final result of a sync run for one kind.
type RunResult struct {
	RunID    string
	Kind     string
	Table    string
	Rows     int
	Outcomes []Outcome
	Created  int
	Updated  int
	Skipped  int
	Failed   int
	Duration time.Duration
	Error    string // Non-empty if the source could not be read
}

// tally fills the per-status counters from Outcomes.
func (r *RunResult) tally() {
	r.Created, r.Updated, r.Skipped, r.Failed = 0, 0, 0, 0
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusCreated:
			r.Created++
		case StatusUpdated:
			r.Updated++
		case StatusSkipped:
			r.Skipped++
		case StatusFailed:
			r.Failed++
		}
	}
}
