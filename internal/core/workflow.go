package core

// workflow.go assembles workflow state/transition graphs from three sheet
// tabs: workflows, states and transitions. Sheets reference workflows and
// states by human label, so both joins are label based.
//
// State label resolution is scoped per workflow. Two workflows may each
// have a "Draft" state without one leaking into the other's transitions.

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/go-viper/mapstructure/v2"

	"github.com/JonMunkholm/specsync/internal/sheet"
)

// WorkflowState is one state of a workflow graph.
type WorkflowState struct {
	Label  string `mapstructure:"label"`
	Weight int    `mapstructure:"weight"`
}

// WorkflowTransition is one transition. From is a set kept sorted.
type WorkflowTransition struct {
	Label  string   `mapstructure:"label"`
	From   []string `mapstructure:"from"`
	To     string   `mapstructure:"to"`
	Weight int      `mapstructure:"weight"`
}

// WorkflowGraph is the state/transition structure of one workflow.
type WorkflowGraph struct {
	ID          string
	Label       string
	Type        string
	States      map[string]WorkflowState
	Transitions map[string]WorkflowTransition

	// Exists is true when the graph was merged into a persisted one.
	Exists bool
}

// WorkflowInput holds everything BuildWorkflowGraphs needs.
type WorkflowInput struct {
	Workflows   []sheet.Row
	States      []sheet.Row
	Transitions []sheet.Row

	// OnlyFlagged keeps only workflow rows classified as create or update.
	OnlyFlagged bool
	Filter      FilterConfig

	// Existing holds persisted graphs by workflow id.
	Existing map[string]*WorkflowGraph

	// Type is assigned to workflows that do not exist yet.
	Type string
}

// NewWorkflowGraph returns an empty graph.
func NewWorkflowGraph(id, label string) *WorkflowGraph {
	return &WorkflowGraph{
		ID:          id,
		Label:       label,
		States:      make(map[string]WorkflowState),
		Transitions: make(map[string]WorkflowTransition),
	}
}

// BuildWorkflowGraphs assembles one graph per workflow row. Rows that
// cannot be resolved are dropped and reported in the returned warnings.
func BuildWorkflowGraphs(in WorkflowInput) (map[string]*WorkflowGraph, []string) {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	wfType := in.Type
	if wfType == "" {
		wfType = DefaultWorkflowType
	}

	graphs := make(map[string]*WorkflowGraph)
	for i, row := range in.Workflows {
		if in.OnlyFlagged && Classify(row, in.Filter) == FlagNone {
			continue
		}
		id, label := row.Get("machine_name"), row.Get("name")
		if err := ValidateMachineName("machine_name", id); err != nil {
			warn("workflow row %d: %v", i+1, err)
			continue
		}
		if label == "" {
			warn("workflow %q: missing name", id)
			continue
		}
		graphs[id] = NewWorkflowGraph(id, label)
	}

	for _, id := range slices.Sorted(maps.Keys(graphs)) {
		g := graphs[id]
		existing := in.Existing[id]

		// label -> state id, scoped to this workflow
		lookup := make(map[string]string)
		if existing != nil {
			for sid, st := range existing.States {
				lookup[st.Label] = sid
			}
		}

		for _, row := range in.States {
			if row.Get("workflow") != g.Label {
				continue
			}
			sid, label := row.Get("machine_name"), row.Get("name")
			if err := ValidateMachineName("machine_name", sid); err != nil {
				warn("workflow %q state %q: %v", id, label, err)
				continue
			}
			if label == "" {
				label = sid
			}
			g.States[sid] = WorkflowState{Label: label, Weight: parseWeight(row.Get("weight"))}
			lookup[label] = sid
		}

		resolve := func(label string) (string, bool) {
			if sid, ok := lookup[label]; ok {
				return sid, true
			}
			if _, ok := g.States[label]; ok {
				return label, true
			}
			if existing != nil {
				if _, ok := existing.States[label]; ok {
					return label, true
				}
			}
			return "", false
		}

		for _, row := range in.Transitions {
			if row.Get("workflow") != g.Label {
				continue
			}
			tid, label := row.Get("machine_name"), row.Get("name")
			if err := ValidateMachineName("machine_name", tid); err != nil {
				warn("workflow %q transition %q: %v", id, label, err)
				continue
			}
			from, ok := resolve(row.Get("from_state"))
			if !ok {
				warn("workflow %q transition %q: unknown from state %q", id, tid, row.Get("from_state"))
				continue
			}
			to, ok := resolve(row.Get("to_state"))
			if !ok {
				warn("workflow %q transition %q: unknown to state %q", id, tid, row.Get("to_state"))
				continue
			}

			if t, seen := g.Transitions[tid]; seen {
				t.From = addToSet(t.From, from)
				g.Transitions[tid] = t
				continue
			}
			if label == "" {
				label = tid
			}
			g.Transitions[tid] = WorkflowTransition{
				Label:  label,
				From:   []string{from},
				To:     to,
				Weight: parseWeight(row.Get("weight")),
			}
		}

		if existing != nil {
			graphs[id] = existing.Merge(g)
		} else {
			g.Type = wfType
		}
	}

	return graphs, warnings
}

// Merge returns a copy of g with the states and transitions of next added.
// Entries of next win on id collision; nothing in g is removed.
func (g *WorkflowGraph) Merge(next *WorkflowGraph) *WorkflowGraph {
	merged := g.Clone()
	merged.Exists = true
	if next.ID != "" {
		merged.ID = next.ID
	}
	if next.Label != "" {
		merged.Label = next.Label
	}
	for id, st := range next.States {
		merged.States[id] = st
	}
	for id, t := range next.Transitions {
		t.From = slices.Clone(t.From)
		merged.Transitions[id] = t
	}
	return merged
}

// Clone returns a deep copy of the graph.
func (g *WorkflowGraph) Clone() *WorkflowGraph {
	c := NewWorkflowGraph(g.ID, g.Label)
	c.Type = g.Type
	c.Exists = g.Exists
	maps.Copy(c.States, g.States)
	for id, t := range g.Transitions {
		t.From = slices.Clone(t.From)
		c.Transitions[id] = t
	}
	return c
}

// Spec converts the graph to the attribute mapping stored for a workflow.
func (g *WorkflowGraph) Spec() Spec {
	states := make(map[string]any, len(g.States))
	for id, st := range g.States {
		states[id] = map[string]any{"label": st.Label, "weight": st.Weight}
	}
	transitions := make(map[string]any, len(g.Transitions))
	for id, t := range g.Transitions {
		transitions[id] = map[string]any{
			"label":  t.Label,
			"from":   slices.Clone(t.From),
			"to":     t.To,
			"weight": t.Weight,
		}
	}

	spec := Spec{
		IDKey:   g.ID,
		"label": g.Label,
		"type_settings": map[string]any{
			"states":      states,
			"transitions": transitions,
		},
	}
	if g.Type != "" {
		spec["type"] = g.Type
	}
	return spec
}

// storedWorkflow is the persisted shape decoded by GraphFromEntity.
type storedWorkflow struct {
	ID           string `mapstructure:"id"`
	Label        string `mapstructure:"label"`
	Type         string `mapstructure:"type"`
	TypeSettings struct {
		States      map[string]WorkflowState      `mapstructure:"states"`
		Transitions map[string]WorkflowTransition `mapstructure:"transitions"`
	} `mapstructure:"type_settings"`
}

// GraphFromEntity decodes a persisted workflow entity. Numbers may arrive
// as float64 (JSON) or strings, so decoding is weakly typed.
func GraphFromEntity(data map[string]any) (*WorkflowGraph, error) {
	var stored storedWorkflow
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &stored,
	})
	if err != nil {
		return nil, fmt.Errorf("workflow decoder: %w", err)
	}
	if err := dec.Decode(data); err != nil {
		return nil, fmt.Errorf("decode workflow: %w", err)
	}

	g := NewWorkflowGraph(stored.ID, stored.Label)
	g.Type = stored.Type
	g.Exists = true
	maps.Copy(g.States, stored.TypeSettings.States)
	for id, t := range stored.TypeSettings.Transitions {
		slices.Sort(t.From)
		g.Transitions[id] = t
	}
	return g, nil
}

func addToSet(set []string, v string) []string {
	if i, found := slices.BinarySearch(set, v); !found {
		set = slices.Insert(set, i, v)
	}
	return set
}

// parseWeight reads an integer weight, defaulting to 0.
func parseWeight(s string) int {
	w, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return w
}
