package core

// scheduler.go re-runs SyncAll on a fixed interval for long-running
// servers. A failed or rejected run is logged and the next tick tries
// again; the scheduler only stops when its context is cancelled.

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// StartScheduler runs SyncAll every interval until ctx is cancelled.
// The first run happens after one interval, not at start.
func (s *Service) StartScheduler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	slog.Info("sync scheduler started", "interval", interval.String())

	ctx = ContextWithTrigger(ctx, TriggerScheduler)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sync scheduler stopped")
			return
		case <-ticker.C:
			s.runScheduled(ctx)
		}
	}
}

// runScheduled performs one scheduled SyncAll.
func (s *Service) runScheduled(ctx context.Context) {
	start := time.Now()

	results, err := s.SyncAll(ctx)
	switch {
	case errors.Is(err, ErrTooManyRuns):
		slog.Warn("scheduled sync skipped: another run is active")
		return
	case errors.Is(err, context.Canceled):
		return
	case err != nil:
		slog.Error("scheduled sync failed", "error", err, "code", MapError(err).Code)
		return
	}

	var created, updated, failed int
	for _, r := range results {
		created += r.Created
		updated += r.Updated
		failed += r.Failed
	}
	slog.Info("scheduled sync completed",
		"kinds", len(results),
		"created", created,
		"updated", updated,
		"failed", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
