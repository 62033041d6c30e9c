// Package templates renders the HTML fragments returned to HTMX clients.
package templates

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/specsync/internal/core"
)

// statusClass maps an outcome status to its badge class.
var statusClass = map[core.OutcomeStatus]string{
	core.StatusCreated: "badge badge-created",
	core.StatusUpdated: "badge badge-updated",
	core.StatusSkipped: "badge badge-skipped",
	core.StatusFailed:  "badge badge-failed",
}

// RunSummary renders one table per run with its counters and outcomes.
func RunSummary(results []*core.RunResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div class="run-summary">`); err != nil {
			return err
		}
		for _, r := range results {
			if err := runSection(r).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

// errWriter keeps the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func runSection(r *core.RunResult) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		e := html.EscapeString
		ew := &errWriter{w: w}
		ew.printf(`<section class="run" data-run-id="%s">`, e(r.RunID))
		ew.printf(`<h3>%s <small>%s</small></h3>`, e(r.Kind), e(r.Table))
		ew.printf(`<p class="counts">%d created, %d updated, %d skipped, %d failed</p>`,
			r.Created, r.Updated, r.Skipped, r.Failed)
		if r.Error != "" {
			msg := core.MapReason(r.Error)
			ew.printf(`<p class="run-error">%s (%s)</p>`, e(msg.Message), e(msg.Code))
		}
		if len(r.Outcomes) > 0 {
			ew.printf(`<table><thead><tr><th>Row</th><th>ID</th><th>Status</th><th>Reason</th></tr></thead><tbody>`)
			for _, o := range r.Outcomes {
				row := ""
				if o.Row > 0 {
					row = fmt.Sprint(o.Row)
				}
				ew.printf(`<tr><td>%s</td><td>%s</td><td><span class="%s">%s</span></td><td>%s</td></tr>`,
					row, e(o.ID), statusClass[o.Status], e(string(o.Status)), e(o.Reason))
			}
			ew.printf(`</tbody></table>`)
		}
		ew.printf(`</section>`)
		return ew.err
	})
}

// ErrorAlert renders an inline error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		e := html.EscapeString
		ew := &errWriter{w: w}
		ew.printf(`<div class="alert alert-error" role="alert"><p>%s</p>`, e(message))
		if action != "" {
			ew.printf(`<p class="alert-action">%s</p>`, e(action))
		}
		ew.printf(`<p class="alert-code">Code: %s</p></div>`, e(code))
		return ew.err
	})
}
