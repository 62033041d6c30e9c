package core

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/JonMunkholm/specsync/internal/sheet"
)

// testKind maps name/machine_name rows the way bundle kinds do.
var testKind = KindDefinition{
	Info: KindInfo{Key: "content_type", Label: "content type", Table: "Content types"},
	Map: func(row sheet.Row) (Spec, error) {
		id := row.Get("machine_name")
		if err := ValidateMachineName("machine_name", id); err != nil {
			return nil, err
		}
		return Spec{IDKey: id, "name": row.Get("name")}, nil
	},
}

func TestRun_Outcomes(t *testing.T) {
	updateMode := testFilter
	updateMode.UpdateMode = true

	tests := []struct {
		name       string
		row        sheet.Row
		cfg        FilterConfig
		existing   bool
		wantStatus OutcomeStatus
		wantReason string
		wantCreate int
		wantUpdate int
	}{
		{
			name:       "create pending and absent is created",
			row:        sheet.Row{"x": "w", "name": "Article", "machine_name": "article"},
			cfg:        testFilter,
			wantStatus: StatusCreated,
			wantCreate: 1,
		},
		{
			name:       "update pending and present is updated",
			row:        sheet.Row{"x": "u", "name": "Article", "machine_name": "article"},
			cfg:        updateMode,
			existing:   true,
			wantStatus: StatusUpdated,
			wantUpdate: 1,
		},
		{
			name:       "update pending and absent is created",
			row:        sheet.Row{"x": "u", "name": "Article", "machine_name": "article"},
			cfg:        updateMode,
			wantStatus: StatusCreated,
			wantCreate: 1,
		},
		{
			name:       "create pending and present is skipped",
			row:        sheet.Row{"x": "w", "name": "Article", "machine_name": "article"},
			cfg:        testFilter,
			existing:   true,
			wantStatus: StatusSkipped,
			wantReason: "already exists",
		},
		{
			name:       "unflagged is skipped",
			row:        sheet.Row{"x": "", "name": "Article", "machine_name": "article"},
			cfg:        testFilter,
			wantStatus: StatusSkipped,
			wantReason: "not flagged",
		},
		{
			name:       "update token ignored without update mode",
			row:        sheet.Row{"x": "u", "name": "Article", "machine_name": "article"},
			cfg:        testFilter,
			existing:   true,
			wantStatus: StatusSkipped,
			wantReason: "not flagged",
		},
		{
			name:       "invalid machine name is skipped",
			row:        sheet.Row{"x": "w", "name": "Blog Post", "machine_name": "Blog_Post"},
			cfg:        testFilter,
			wantStatus: StatusSkipped,
			wantReason: "invalid machine name",
		},
		{
			name:       "missing machine name is skipped",
			row:        sheet.Row{"x": "w", "name": "Page"},
			cfg:        testFilter,
			wantStatus: StatusSkipped,
			wantReason: "required field is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			if tt.existing {
				store.put("content_type", "article", map[string]any{IDKey: "article", "name": "Old"})
			}

			outcomes := Run(context.Background(), testKind, []sheet.Row{tt.row}, tt.cfg, store)
			if len(outcomes) != 1 {
				t.Fatalf("got %d outcomes, want 1", len(outcomes))
			}
			o := outcomes[0]
			if o.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q (reason %q)", o.Status, tt.wantStatus, o.Reason)
			}
			if !strings.Contains(o.Reason, tt.wantReason) {
				t.Errorf("Reason = %q, want it to contain %q", o.Reason, tt.wantReason)
			}
			if o.Row != 1 {
				t.Errorf("Row = %d, want 1", o.Row)
			}
			if store.creates != tt.wantCreate || store.updates != tt.wantUpdate {
				t.Errorf("store calls = (create %d, update %d), want (%d, %d)",
					store.creates, store.updates, tt.wantCreate, tt.wantUpdate)
			}
		})
	}
}

func TestRun_UpdateWritesSpec(t *testing.T) {
	cfg := testFilter
	cfg.UpdateMode = true
	store := newFakeStore()
	store.put("content_type", "article", map[string]any{IDKey: "article", "name": "Old", "extra": "kept"})

	Run(context.Background(), testKind, []sheet.Row{{"x": "u", "name": "Article", "machine_name": "article"}}, cfg, store)

	got := store.get("content_type", "article")
	if got["name"] != "Article" {
		t.Errorf("name = %v, want Article", got["name"])
	}
	if got["extra"] != "kept" {
		t.Errorf("extra = %v, want untouched attribute", got["extra"])
	}
}

func TestRun_OneOutcomePerRowInOrder(t *testing.T) {
	rows := []sheet.Row{
		{"x": "w", "name": "Article", "machine_name": "article"},
		{"x": "", "name": "Page", "machine_name": "page"},
		{"x": "w", "name": "Blog Post", "machine_name": "Blog_Post"},
		{"x": "w", "name": "Event", "machine_name": "event"},
	}

	store := newFakeStore()
	outcomes := Run(context.Background(), testKind, rows, testFilter, store)

	want := []OutcomeStatus{StatusCreated, StatusSkipped, StatusSkipped, StatusCreated}
	if len(outcomes) != len(want) {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), len(want))
	}
	for i, o := range outcomes {
		if o.Status != want[i] {
			t.Errorf("outcome %d = %s, want %s", i, o, want[i])
		}
		if o.Row != i+1 {
			t.Errorf("outcome %d Row = %d, want %d", i, o.Row, i+1)
		}
	}
	if store.get("content_type", "Blog_Post") != nil {
		t.Error("invalid row reached the store")
	}
}

func TestRun_StoreFailures(t *testing.T) {
	row := sheet.Row{"x": "w", "name": "Article", "machine_name": "article"}

	tests := []struct {
		name       string
		setup      func(*fakeStore)
		wantReason string
	}{
		{"load error", func(s *fakeStore) { s.loadErr = errors.New("connection refused") }, "load: connection refused"},
		{"create error", func(s *fakeStore) { s.createErr = errors.New("disk full") }, "create: disk full"},
		{"load panic", func(s *fakeStore) { s.panicOn = "load" }, "store panic"},
		{"create panic", func(s *fakeStore) { s.panicOn = "create" }, "store panic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			tt.setup(store)

			outcomes := Run(context.Background(), testKind, []sheet.Row{row, row}, testFilter, store)
			if len(outcomes) != 2 {
				t.Fatalf("run stopped early: %d outcomes", len(outcomes))
			}
			for _, o := range outcomes {
				if o.Status != StatusFailed {
					t.Errorf("Status = %q, want failed", o.Status)
				}
				if !strings.Contains(o.Reason, tt.wantReason) {
					t.Errorf("Reason = %q, want %q", o.Reason, tt.wantReason)
				}
			}
		})
	}
}

func TestRun_MapperFailure(t *testing.T) {
	def := testKind
	def.Map = func(sheet.Row) (Spec, error) { return nil, errors.New("boom") }

	outcomes := Run(context.Background(), def, []sheet.Row{{"x": "w", "machine_name": "a"}}, testFilter, newFakeStore())
	if outcomes[0].Status != StatusFailed || outcomes[0].Reason != "boom" {
		t.Errorf("outcome = %s, want failed boom", outcomes[0])
	}
}

func TestSyncRow_SkipLevels(t *testing.T) {
	def := testKind
	def.Map = func(row sheet.Row) (Spec, error) {
		return nil, &SkipError{Field: "summary", Message: "unparseable summary", Level: slog.LevelError}
	}

	_, level := syncRow(context.Background(), def, sheet.Row{"x": "w"}, testFilter, newFakeStore())
	if level != slog.LevelError {
		t.Errorf("level = %v, want error", level)
	}

	_, level = syncRow(context.Background(), testKind, sheet.Row{"x": ""}, testFilter, newFakeStore())
	if level != slog.LevelDebug {
		t.Errorf("unflagged level = %v, want debug", level)
	}

	_, level = syncRow(context.Background(), testKind, sheet.Row{"x": "w", "machine_name": "Bad"}, testFilter, newFakeStore())
	if level != slog.LevelWarn {
		t.Errorf("invalid row level = %v, want warn", level)
	}
}

func TestOutcome_String(t *testing.T) {
	tests := []struct {
		o    Outcome
		want string
	}{
		{Outcome{Kind: "content_type", ID: "article", Status: StatusCreated}, `created content_type "article"`},
		{Outcome{Kind: "content_type", ID: "blog", Status: StatusSkipped, Reason: "already exists"}, `skipped content_type "blog": already exists`},
		{Outcome{Kind: "field", Row: 4, Status: StatusSkipped, Reason: "no machine name"}, `skipped field "row 4": no machine name`},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.o.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunWorkflows_CreateThenMerge(t *testing.T) {
	in := editorialInput()
	rows := WorkflowRows{Workflows: in.Workflows, States: in.States, Transitions: in.Transitions}
	cfg := SyncConfig{Filter: testFilter, WorkflowsFlaggedOnly: true}
	store := newFakeStore()

	outcomes := RunWorkflows(context.Background(), rows, cfg, store)
	if len(outcomes) != 1 || outcomes[0].Status != StatusCreated {
		t.Fatalf("first run outcomes = %v, want one created", outcomes)
	}
	stored := store.get(WorkflowKind, "editorial")
	if stored["type"] != DefaultWorkflowType {
		t.Errorf("type = %v, want %s", stored["type"], DefaultWorkflowType)
	}

	// Second run: the sheet drops Draft but adds Archived.
	rows.States = append(rows.States[1:], sheet.Row{"workflow": "Editorial", "name": "Archived", "machine_name": "archived"})
	rows.Transitions = append(rows.Transitions, sheet.Row{
		"workflow": "Editorial", "name": "Archive", "machine_name": "archive", "from_state": "Draft", "to_state": "Archived",
	})

	outcomes = RunWorkflows(context.Background(), rows, cfg, store)
	if len(outcomes) != 1 || outcomes[0].Status != StatusUpdated {
		t.Fatalf("second run outcomes = %v, want one updated", outcomes)
	}

	g, err := GraphFromEntity(store.get(WorkflowKind, "editorial"))
	if err != nil {
		t.Fatalf("GraphFromEntity() error = %v", err)
	}
	for _, id := range []string{"draft", "review", "published", "archived"} {
		if _, ok := g.States[id]; !ok {
			t.Errorf("state %q missing after merge", id)
		}
	}
	if got := g.Transitions["archive"].From; len(got) != 1 || got[0] != "draft" {
		t.Errorf("archive from = %v, want [draft]", got)
	}
}

func TestRunWorkflows_UnflaggedAndLoadFailure(t *testing.T) {
	rows := WorkflowRows{Workflows: []sheet.Row{
		{"x": "", "name": "Quiet", "machine_name": "quiet"},
		{"x": "w", "name": "Editorial", "machine_name": "editorial"},
	}}
	cfg := SyncConfig{Filter: testFilter, WorkflowsFlaggedOnly: true}
	store := newFakeStore()
	store.loadErr = errors.New("connection reset")

	outcomes := RunWorkflows(context.Background(), rows, cfg, store)
	if len(outcomes) != 2 {
		t.Fatalf("outcomes = %v, want 2", outcomes)
	}
	if outcomes[0].ID != "quiet" || outcomes[0].Status != StatusSkipped {
		t.Errorf("outcome 0 = %s, want skipped quiet", outcomes[0])
	}
	if outcomes[1].ID != "editorial" || outcomes[1].Status != StatusFailed {
		t.Errorf("outcome 1 = %s, want failed editorial", outcomes[1])
	}
	if store.creates != 0 {
		t.Error("failed workflow was still created")
	}
}

func TestRunWorkflows_InvalidRowsSkipped(t *testing.T) {
	rows := WorkflowRows{Workflows: []sheet.Row{
		{"x": "w", "name": "Editorial", "machine_name": "Editorial"},
		{"x": "w", "name": "", "machine_name": "news"},
		{"x": "w", "name": "Blog", "machine_name": "blog"},
	}}
	store := newFakeStore()

	outcomes := RunWorkflows(context.Background(), rows, SyncConfig{Filter: testFilter, WorkflowsFlaggedOnly: true}, store)
	if len(outcomes) != 3 {
		t.Fatalf("outcomes = %v, want 3", outcomes)
	}

	tests := []struct {
		row    int
		status OutcomeStatus
		reason string
	}{
		{1, StatusSkipped, "invalid machine name"},
		{2, StatusSkipped, "name: required field is empty"},
		{0, StatusCreated, ""},
	}
	for i, tt := range tests {
		o := outcomes[i]
		if o.Row != tt.row || o.Status != tt.status || !strings.Contains(o.Reason, tt.reason) {
			t.Errorf("outcome %d = %+v, want row %d %s containing %q", i, o, tt.row, tt.status, tt.reason)
		}
	}
	if store.creates != 1 {
		t.Errorf("creates = %d, want 1", store.creates)
	}
}

func TestRunWorkflows_SavePanic(t *testing.T) {
	in := editorialInput()
	store := newFakeStore()
	store.panicOn = "create"

	outcomes := RunWorkflows(context.Background(),
		WorkflowRows{Workflows: in.Workflows, States: in.States, Transitions: in.Transitions},
		SyncConfig{Filter: testFilter}, store)

	if len(outcomes) != 1 || outcomes[0].Status != StatusFailed {
		t.Fatalf("outcomes = %v, want one failed", outcomes)
	}
	if !strings.Contains(outcomes[0].Reason, "store panic") {
		t.Errorf("Reason = %q", outcomes[0].Reason)
	}
}
