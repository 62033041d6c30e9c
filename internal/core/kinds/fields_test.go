package kinds

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JonMunkholm/specsync/internal/core"
	"github.com/JonMunkholm/specsync/internal/sheet"
)

func TestParseFieldKind(t *testing.T) {
	tests := []struct {
		input string
		want  FieldKind
	}{
		{"Text (plain)", FieldText},
		{"Text (plain, long)", FieldTextLong},
		{"Text (formatted, long)", FieldTextLong},
		{"Text (formatted, long, with summary)", FieldTextWithSummary},
		{"Boolean", FieldBoolean},
		{"Number (integer)", FieldInteger},
		{"Number (decimal)", FieldDecimal},
		{"Date", FieldDate},
		{"Date and time", FieldDateTime},
		{"Link", FieldLink},
		{"Email", FieldEmail},
		{"Telephone number", FieldTelephone},
		{"Image", FieldImage},
		{"File", FieldFile},
		{"Entity reference", FieldEntityReference},
		{"Entity reference: Taxonomy term", FieldTermReference},
		{"Paragraphs", FieldParagraphs},
		{"List (text)", FieldListText},
		{"Geolocation", FieldUnsupported},
		{"", FieldUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFieldKind(tt.input); got != tt.want {
				t.Errorf("ParseFieldKind(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFieldKinds_AllHaveStorageType(t *testing.T) {
	for k := FieldText; k <= FieldListText; k++ {
		if k.StorageType() == "" {
			t.Errorf("FieldKind %d has no storage type", k)
		}
	}
	if FieldUnsupported.StorageType() != "" {
		t.Error("FieldUnsupported has a storage type")
	}
}

func TestMapField(t *testing.T) {
	row := sheet.Row{
		"bundle":       "article",
		"field_label":  "Tags",
		"machine_name": "field_tags",
		"field_type":   "Entity reference: Taxonomy term",
		"required":     "Yes",
		"cardinality":  "Unlimited",
		"help_text":    "Pick some tags.",
	}

	spec, err := mapKind(t, "field", row)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}

	want := core.Spec{
		"id":          "node.article.field_tags",
		"field_name":  "field_tags",
		"entity_type": "node",
		"bundle":      "article",
		"label":       "Tags",
		"type":        "entity_reference",
		"required":    true,
		"cardinality": -1,
		"description": "Pick some tags.",
		"storage":     map[string]any{"target_type": "taxonomy_term"},
	}
	if diff := cmp.Diff(want, spec); diff != "" {
		t.Errorf("spec mismatch (-want +got):\n%s", diff)
	}
}

func TestMapField_EntityTypeAndStorage(t *testing.T) {
	tests := []struct {
		name        string
		row         sheet.Row
		wantID      string
		wantStorage map[string]any
		wantCard    int
	}{
		{
			name: "paragraph text with max length",
			row: sheet.Row{
				"entity_type": "Paragraph type", "bundle": "hero", "field_label": "Heading",
				"machine_name": "field_heading", "field_type": "Text (plain)", "max_length": "120",
			},
			wantID:      "paragraph.hero.field_heading",
			wantStorage: map[string]any{"max_length": 120},
			wantCard:    1,
		},
		{
			name: "list values",
			row: sheet.Row{
				"bundle": "event", "name": "Format", "machine_name": "field_format",
				"field_type": "List (text)", "allowed_values": "online, in_person", "cardinality": "2",
			},
			wantID:      "node.event.field_format",
			wantStorage: map[string]any{"allowed_values": []string{"online", "in_person"}},
			wantCard:    2,
		},
		{
			name: "media reference",
			row: sheet.Row{
				"entity_type": "Content type", "bundle": "page", "field_label": "Image",
				"machine_name": "field_image", "field_type": "Entity reference", "reference_target": "Media",
			},
			wantID:      "node.page.field_image",
			wantStorage: map[string]any{"target_type": "media"},
			wantCard:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := mapKind(t, "field", tt.row)
			if err != nil {
				t.Fatalf("Map() error = %v", err)
			}
			if spec.ID() != tt.wantID {
				t.Errorf("ID() = %q, want %q", spec.ID(), tt.wantID)
			}
			if spec["cardinality"] != tt.wantCard {
				t.Errorf("cardinality = %v, want %d", spec["cardinality"], tt.wantCard)
			}
			if diff := cmp.Diff(tt.wantStorage, spec["storage"]); diff != "" {
				t.Errorf("storage mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMapField_Skips(t *testing.T) {
	base := func() sheet.Row {
		return sheet.Row{
			"bundle": "article", "field_label": "Body", "machine_name": "field_body", "field_type": "Text (formatted, long)",
		}
	}

	tests := []struct {
		name     string
		mutate   func(sheet.Row)
		contains string
	}{
		{"unsupported type", func(r sheet.Row) { r["field_type"] = "Geolocation" }, `unsupported field type "Geolocation"`},
		{"missing type", func(r sheet.Row) { delete(r, "field_type") }, "unsupported field type"},
		{"missing bundle", func(r sheet.Row) { delete(r, "bundle") }, "bundle: required field is empty"},
		{"invalid bundle", func(r sheet.Row) { r["bundle"] = "Article" }, "invalid machine name"},
		{"missing label", func(r sheet.Row) { delete(r, "field_label") }, "field_label: required field is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := base()
			tt.mutate(row)
			_, err := mapKind(t, "field", row)
			wantSkip(t, err, tt.contains)
		})
	}
}

func TestParseCardinality(t *testing.T) {
	tests := map[string]int{
		"":          1,
		"1":         1,
		"3":         3,
		"Unlimited": -1,
		"-1":        -1,
		"0":         1,
		"many":      1,
	}
	for in, want := range tests {
		if got := parseCardinality(in); got != want {
			t.Errorf("parseCardinality(%q) = %d, want %d", in, got, want)
		}
	}
}
