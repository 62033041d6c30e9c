package core

import "context"

type contextKey string

const ctxKeyTrigger contextKey = "sync_trigger"

// Triggers recorded on sync run logs.
const (
	TriggerCLI       = "cli"
	TriggerHTTP      = "http"
	TriggerScheduler = "scheduler"
)

// ContextWithTrigger records what started a sync run, for the run log.
func ContextWithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, ctxKeyTrigger, trigger)
}

// TriggerFromContext returns the trigger set by ContextWithTrigger, or "".
func TriggerFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyTrigger).(string); ok {
		return v
	}
	return ""
}
