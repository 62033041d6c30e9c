package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/specsync/internal/logging"
	"github.com/JonMunkholm/specsync/internal/sheet"
)

// Sheet tabs read by SyncWorkflows.
const (
	WorkflowsTable           = "Workflows"
	WorkflowStatesTable      = "Workflow states"
	WorkflowTransitionsTable = "Workflow transitions"
)

// ErrUnknownKind is returned for kind keys missing from the registry.
var ErrUnknownKind = errors.New("unknown kind")

// Service is the main entry point for sync operations.
type Service struct {
	source  sheet.Source
	store   EntityStore
	cfg     SyncConfig
	limiter *RunLimiter
}

// NewService creates a Service reading from source and writing to store.
func NewService(source sheet.Source, store EntityStore, cfg SyncConfig) (*Service, error) {
	if source == nil {
		return nil, fmt.Errorf("service requires a sheet source")
	}
	if store == nil {
		return nil, fmt.Errorf("service requires an entity store")
	}
	if cfg.WorkflowType == "" {
		cfg.WorkflowType = DefaultWorkflowType
	}
	return &Service{
		source:  source,
		store:   store,
		cfg:     cfg,
		limiter: NewRunLimiter(cfg.MaxConcurrentRuns, cfg.RunWait),
	}, nil
}

// Config returns the sync configuration of the service.
func (s *Service) Config() SyncConfig {
	return s.cfg
}

// WaitForRuns blocks until no sync run is active or ctx ends.
func (s *Service) WaitForRuns(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// ActiveRuns returns the number of sync runs in progress.
func (s *Service) ActiveRuns() int {
	return s.limiter.ActiveCount()
}

// SyncKind fetches the kind's sheet tab and synchronizes every row.
// An unreadable tab is logged and treated as empty.
func (s *Service) SyncKind(ctx context.Context, key string) (*RunResult, error) {
	def, ok := Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, key)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	return s.syncKind(ctx, def), nil
}

func (s *Service) syncKind(ctx context.Context, def KindDefinition) *RunResult {
	start := time.Now()
	result := &RunResult{
		RunID: uuid.NewString(),
		Kind:  def.Info.Key,
		Table: def.Info.Table,
	}
	ctx = logging.ContextWithRunID(ctx, result.RunID)

	rows, err := s.fetch(ctx, def.Info.Table)
	if err != nil {
		result.Error = err.Error()
	}

	result.Rows = len(rows)
	result.Outcomes = Run(ctx, def, rows, s.cfg.Filter, s.store)
	result.tally()
	result.Duration = time.Since(start)

	s.logResult(ctx, result)
	return result
}

// SyncAll synchronizes every registered kind in registry order, then
// workflows, as one run. Kinds not reached before ctx ends are left out.
func (s *Service) SyncAll(ctx context.Context) ([]*RunResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	var results []*RunResult
	for _, def := range All() {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		results = append(results, s.syncKind(ctx, def))
	}
	if ctx.Err() != nil {
		return results, ctx.Err()
	}
	return append(results, s.syncWorkflows(ctx)), nil
}

// SyncWorkflows reads the three workflow tabs and synchronizes the graphs.
func (s *Service) SyncWorkflows(ctx context.Context) (*RunResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	return s.syncWorkflows(ctx), nil
}

func (s *Service) syncWorkflows(ctx context.Context) *RunResult {
	start := time.Now()
	result := &RunResult{
		RunID: uuid.NewString(),
		Kind:  WorkflowKind,
		Table: WorkflowsTable,
	}
	ctx = logging.ContextWithRunID(ctx, result.RunID)

	var rows WorkflowRows
	var errs []error
	var err error
	if rows.Workflows, err = s.fetch(ctx, WorkflowsTable); err != nil {
		errs = append(errs, err)
	}
	if rows.States, err = s.fetch(ctx, WorkflowStatesTable); err != nil {
		errs = append(errs, err)
	}
	if rows.Transitions, err = s.fetch(ctx, WorkflowTransitionsTable); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		result.Error = errors.Join(errs...).Error()
	}

	result.Rows = len(rows.Workflows)
	result.Outcomes = RunWorkflows(ctx, rows, s.cfg, s.store)
	result.tally()
	result.Duration = time.Since(start)

	s.logResult(ctx, result)
	return result
}

// fetch reads a table. Failures are logged and yield no rows.
func (s *Service) fetch(ctx context.Context, table string) ([]sheet.Row, error) {
	rows, err := s.source.Fetch(ctx, table)
	if err != nil {
		logging.WithFields(ctx, "table", table).Error("sheet fetch failed",
			"error", err,
			"code", MapError(err).Code,
		)
		return nil, err
	}
	return rows, nil
}

func (s *Service) logResult(ctx context.Context, r *RunResult) {
	logging.FromContext(ctx).Info("sync run complete",
		"kind", r.Kind,
		"trigger", TriggerFromContext(ctx),
		"rows", r.Rows,
		"created", r.Created,
		"updated", r.Updated,
		"skipped", r.Skipped,
		"failed", r.Failed,
		"duration_ms", r.Duration.Milliseconds(),
	)
}
