package core

// engine.go runs the per-row sync loop for one entity kind.
//
// For each row:
//  1. Classify the status column; unflagged rows are skipped
//  2. Map the row to a Spec; mapper skips become Skipped outcomes
//  3. Load the existing entity by id
//  4. Create when absent, update when flagged for update, skip otherwise
//
// Store failures are recorded per row and never stop the loop.

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/JonMunkholm/specsync/internal/logging"
	"github.com/JonMunkholm/specsync/internal/sheet"
)

// Run synchronizes rows of one kind into store and returns one outcome per row.
func Run(ctx context.Context, def KindDefinition, rows []sheet.Row, cfg FilterConfig, store EntityStore) []Outcome {
	logger := logging.WithFields(ctx, "kind", def.Info.Key)
	outcomes := make([]Outcome, 0, len(rows))

	for i, row := range rows {
		o, level := syncRow(ctx, def, row, cfg, store)
		o.Row = i + 1
		logOutcome(logger, o, level)
		outcomes = append(outcomes, o)
	}

	return outcomes
}

// syncRow handles a single row and returns the level a skip is logged at.
// It never panics on store misbehaviour.
func syncRow(ctx context.Context, def KindDefinition, row sheet.Row, cfg FilterConfig, store EntityStore) (o Outcome, level slog.Level) {
	kind := def.Info.Key
	o = Outcome{Kind: kind, ID: row.Get("machine_name")}
	level = slog.LevelWarn

	flag := Classify(row, cfg)
	if flag == FlagNone {
		o.Status = StatusSkipped
		o.Reason = "not flagged for sync"
		return o, slog.LevelDebug
	}

	spec, err := def.Map(row)
	if err != nil {
		if se, ok := AsSkip(err); ok {
			o.Status = StatusSkipped
			o.Reason = se.Error()
			if se.Level != 0 {
				level = se.Level
			}
			return o, level
		}
		o.Status = StatusFailed
		o.Reason = err.Error()
		return o, level
	}
	if spec == nil || spec.ID() == "" {
		o.Status = StatusSkipped
		o.Reason = "no machine name"
		return o, level
	}
	o.ID = spec.ID()

	defer func() {
		if r := recover(); r != nil {
			o.Status = StatusFailed
			o.Reason = fmt.Sprintf("store panic: %v", r)
		}
	}()

	_, found, err := store.Load(ctx, kind, o.ID)
	if err != nil {
		o.Status = StatusFailed
		o.Reason = fmt.Sprintf("load: %v", err)
		return o, level
	}

	switch {
	case !found:
		if _, err := store.Create(ctx, kind, spec); err != nil {
			o.Status = StatusFailed
			o.Reason = fmt.Sprintf("create: %v", err)
			return o, level
		}
		o.Status = StatusCreated
	case flag == FlagUpdatePending:
		if err := store.Update(ctx, kind, o.ID, spec); err != nil {
			o.Status = StatusFailed
			o.Reason = fmt.Sprintf("update: %v", err)
			return o, level
		}
		o.Status = StatusUpdated
	default:
		o.Status = StatusSkipped
		o.Reason = "already exists"
		level = slog.LevelInfo
	}
	return o, level
}

// WorkflowRows holds the three workflow tabs.
type WorkflowRows struct {
	Workflows   []sheet.Row
	States      []sheet.Row
	Transitions []sheet.Row
}

// WorkflowKind is the store kind for workflow graphs.
const WorkflowKind = "workflow"

// RunWorkflows builds workflow graphs, merges them into persisted graphs
// and saves them. Existing workflows are updated with the merged graph;
// new ones are created with the configured workflow type.
func RunWorkflows(ctx context.Context, rows WorkflowRows, cfg SyncConfig, store EntityStore) []Outcome {
	logger := logging.WithFields(ctx, "kind", WorkflowKind)
	var outcomes []Outcome

	record := func(o Outcome, skipLevel slog.Level) {
		logOutcome(logger, o, skipLevel)
		outcomes = append(outcomes, o)
	}

	existing := make(map[string]*WorkflowGraph)
	failed := make(map[string]bool)
	for i, row := range rows.Workflows {
		id := row.Get("machine_name")
		if cfg.WorkflowsFlaggedOnly && Classify(row, cfg.Filter) == FlagNone {
			record(Outcome{Kind: WorkflowKind, ID: id, Row: i + 1, Status: StatusSkipped, Reason: "not flagged for sync"}, slog.LevelDebug)
			continue
		}
		if err := ValidateMachineName("machine_name", id); err != nil {
			record(Outcome{Kind: WorkflowKind, ID: id, Row: i + 1, Status: StatusSkipped, Reason: err.Error()}, slog.LevelWarn)
			continue
		}
		if err := RequireColumns(row, "name"); err != nil {
			record(Outcome{Kind: WorkflowKind, ID: id, Row: i + 1, Status: StatusSkipped, Reason: err.Error()}, slog.LevelWarn)
			continue
		}

		data, found, err := safeLoad(ctx, store, id)
		if err != nil {
			failed[id] = true
			record(Outcome{Kind: WorkflowKind, ID: id, Row: i + 1, Status: StatusFailed, Reason: fmt.Sprintf("load: %v", err)}, slog.LevelWarn)
			continue
		}
		if !found {
			continue
		}
		g, err := GraphFromEntity(data)
		if err != nil {
			failed[id] = true
			record(Outcome{Kind: WorkflowKind, ID: id, Row: i + 1, Status: StatusFailed, Reason: err.Error()}, slog.LevelWarn)
			continue
		}
		existing[id] = g
	}

	graphs, warnings := BuildWorkflowGraphs(WorkflowInput{
		Workflows:   rows.Workflows,
		States:      rows.States,
		Transitions: rows.Transitions,
		OnlyFlagged: cfg.WorkflowsFlaggedOnly,
		Filter:      cfg.Filter,
		Existing:    existing,
		Type:        cfg.WorkflowType,
	})
	for _, w := range warnings {
		logger.Warn("workflow row dropped", "reason", w)
	}

	for _, id := range slices.Sorted(maps.Keys(graphs)) {
		if failed[id] {
			continue
		}
		g := graphs[id]
		o := Outcome{Kind: WorkflowKind, ID: id}
		if err := saveWorkflow(ctx, store, g); err != nil {
			o.Status = StatusFailed
			o.Reason = err.Error()
		} else if g.Exists {
			o.Status = StatusUpdated
		} else {
			o.Status = StatusCreated
		}
		record(o, slog.LevelWarn)
	}

	return outcomes
}

func saveWorkflow(ctx context.Context, store EntityStore, g *WorkflowGraph) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("store panic: %v", r)
		}
	}()

	if g.Exists {
		if err := store.Update(ctx, WorkflowKind, g.ID, g.Spec()); err != nil {
			return fmt.Errorf("update: %w", err)
		}
		return nil
	}
	if _, err := store.Create(ctx, WorkflowKind, g.Spec()); err != nil {
		return fmt.Errorf("create: %w", err)
	}
	return nil
}

func safeLoad(ctx context.Context, store EntityStore, id string) (data map[string]any, found bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("store panic: %v", r)
		}
	}()
	return store.Load(ctx, WorkflowKind, id)
}

// logOutcome writes one structured log entry per outcome. skipLevel is
// used for skipped outcomes only.
func logOutcome(logger *slog.Logger, o Outcome, skipLevel slog.Level) {
	attrs := []any{"id", o.ID, "status", string(o.Status)}
	if o.Row > 0 {
		attrs = append(attrs, "row", o.Row)
	}
	if o.Reason != "" {
		attrs = append(attrs, "reason", o.Reason)
	}

	switch o.Status {
	case StatusFailed:
		logger.Error("sync failed", attrs...)
	case StatusSkipped:
		logger.Log(context.Background(), skipLevel, "sync skipped", attrs...)
	default:
		logger.Info("sync "+string(o.Status), attrs...)
	}
}
