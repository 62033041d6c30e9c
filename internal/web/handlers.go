package web

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/specsync/internal/core"
	"github.com/JonMunkholm/specsync/internal/web/templates"
)

// KindGroup lists the kinds of one display group.
type KindGroup struct {
	Name  string     `json:"name"`
	Kinds []KindView `json:"kinds"`
}

// KindView is the JSON form of core.KindInfo.
type KindView struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Table string `json:"table"`
}

// OutcomeView is the JSON form of core.Outcome.
type OutcomeView struct {
	Row    int    `json:"row,omitempty"`
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
	Code   string `json:"code,omitempty"`
}

// RunView is the JSON form of core.RunResult.
type RunView struct {
	RunID      string        `json:"run_id"`
	Kind       string        `json:"kind"`
	Table      string        `json:"table"`
	Rows       int           `json:"rows"`
	Created    int           `json:"created"`
	Updated    int           `json:"updated"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	DurationMs int64         `json:"duration_ms"`
	Error      string        `json:"error,omitempty"`
	Outcomes   []OutcomeView `json:"outcomes"`
}

func newRunView(r *core.RunResult) RunView {
	v := RunView{
		RunID:      r.RunID,
		Kind:       r.Kind,
		Table:      r.Table,
		Rows:       r.Rows,
		Created:    r.Created,
		Updated:    r.Updated,
		Skipped:    r.Skipped,
		Failed:     r.Failed,
		DurationMs: r.Duration.Milliseconds(),
		Outcomes:   make([]OutcomeView, len(r.Outcomes)),
	}
	if r.Error != "" {
		v.Error = core.MapReason(r.Error).Message
	}
	for i, o := range r.Outcomes {
		v.Outcomes[i] = OutcomeView{
			Row:    o.Row,
			ID:     o.ID,
			Status: string(o.Status),
			Reason: o.Reason,
		}
		if o.Status == core.StatusFailed {
			v.Outcomes[i].Code = core.MapReason(o.Reason).Code
		}
	}
	return v
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListKinds returns all registered kinds organized by group.
func (s *Server) handleListKinds(w http.ResponseWriter, r *http.Request) {
	groups := make([]KindGroup, 0)
	for _, name := range core.Groups() {
		defs := core.ByGroup(name)
		g := KindGroup{Name: name, Kinds: make([]KindView, len(defs))}
		for i, def := range defs {
			g.Kinds[i] = KindView{Key: def.Info.Key, Label: def.Info.Label, Table: def.Info.Table}
		}
		groups = append(groups, g)
	}
	writeJSON(w, http.StatusOK, groups)
}

// handleSyncKind runs one kind.
func (s *Server) handleSyncKind(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "kind")

	result, err := s.service.SyncKind(runContext(r), key)
	if err != nil {
		respondError(w, r, err, syncErrorStatus(err))
		return
	}
	s.respondRuns(w, r, []*core.RunResult{result})
}

// handleSyncAll runs every kind in registry order, then workflows.
func (s *Server) handleSyncAll(w http.ResponseWriter, r *http.Request) {
	results, err := s.service.SyncAll(runContext(r))
	if err != nil {
		respondError(w, r, err, syncErrorStatus(err))
		return
	}
	s.respondRuns(w, r, results)
}

// handleSyncWorkflows runs the workflow graphs.
func (s *Server) handleSyncWorkflows(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.SyncWorkflows(runContext(r))
	if err != nil {
		respondError(w, r, err, syncErrorStatus(err))
		return
	}
	s.respondRuns(w, r, []*core.RunResult{result})
}

func runContext(r *http.Request) context.Context {
	return core.ContextWithTrigger(r.Context(), core.TriggerHTTP)
}

// syncErrorStatus maps service errors to HTTP status codes.
func syncErrorStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrUnknownKind):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyRuns):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondRuns writes results as an HTML summary for HTMX and JSON otherwise.
func (s *Server) respondRuns(w http.ResponseWriter, r *http.Request, results []*core.RunResult) {
	if isHTMX(r) {
		var buf bytes.Buffer
		if err := templates.RunSummary(results).Render(r.Context(), &buf); err != nil {
			respondError(w, r, err, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		buf.WriteTo(w)
		return
	}

	views := make([]RunView, len(results))
	for i, res := range results {
		views[i] = newRunView(res)
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": views})
}
