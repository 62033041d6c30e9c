package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/JonMunkholm/specsync/internal/sheet"
)

func TestValidateMachineName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  bool
		contains string
	}{
		{"simple", "article", false, ""},
		{"underscores and digits", "blog_post_2", false, ""},
		{"leading underscore", "_internal", false, ""},
		{"empty", "", true, "required field is empty"},
		{"upper case", "Blog_Post", true, "invalid machine name"},
		{"leading digit", "2col", true, "invalid machine name"},
		{"hyphen", "blog-post", true, "invalid machine name"},
		{"space", "blog post", true, "invalid machine name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMachineName("machine_name", tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateMachineName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q does not contain %q", err, tt.contains)
			}
			se, ok := AsSkip(err)
			if !ok {
				t.Fatalf("error is not a *SkipError: %T", err)
			}
			if se.Field != "machine_name" {
				t.Errorf("Field = %q, want machine_name", se.Field)
			}
		})
	}
}

func TestAsSkip_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("row 3: %w", Skip("no %s", "thing"))
	se, ok := AsSkip(wrapped)
	if !ok {
		t.Fatal("AsSkip() did not unwrap *SkipError")
	}
	if se.Error() != "no thing" {
		t.Errorf("Error() = %q, want %q", se.Error(), "no thing")
	}

	if _, ok := AsSkip(errors.New("plain")); ok {
		t.Error("AsSkip() matched a plain error")
	}
}

func TestRequireColumns(t *testing.T) {
	row := sheet.Row{"name": "Article", "description": "  "}

	if err := RequireColumns(row, "name"); err != nil {
		t.Errorf("RequireColumns(name) = %v, want nil", err)
	}

	err := RequireColumns(row, "name", "description", "weight")
	se, ok := AsSkip(err)
	if !ok {
		t.Fatalf("RequireColumns() = %v, want *SkipError", err)
	}
	if se.Field != "description" {
		t.Errorf("Field = %q, want first blank column description", se.Field)
	}
}

func TestMachineNameFromLabel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Scale and crop", "scale_and_crop"},
		{"Text (plain)", "text_plain"},
		{"  Entity reference: Taxonomy term ", "entity_reference_taxonomy_term"},
		{"Already_snake", "already_snake"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := MachineNameFromLabel(tt.input); got != tt.want {
				t.Errorf("MachineNameFromLabel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDefaultDescription(t *testing.T) {
	if got := DefaultDescription("Article", "content type"); got != "Article content type." {
		t.Errorf("DefaultDescription() = %q", got)
	}
}
