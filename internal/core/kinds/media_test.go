package kinds

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JonMunkholm/specsync/internal/core"
	"github.com/JonMunkholm/specsync/internal/sheet"
)

func TestMediaType(t *testing.T) {
	tests := []struct {
		source    string
		wantSrc   string
		wantField string
	}{
		{"Image", "image", "field_media_image"},
		{"Document", "file", "field_media_file"},
		{"Remote video", "oembed:video", "field_media_oembed_video"},
		{"oembed:video", "oembed:video", "field_media_oembed_video"},
		{"Audio", "audio_file", "field_media_audio_file"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			spec, err := mapKind(t, "media_type", sheet.Row{
				"name": "Photo", "machine_name": "photo", "source": tt.source,
			})
			if err != nil {
				t.Fatalf("Map() error = %v", err)
			}
			want := core.Spec{
				"id":           "photo",
				"label":        "Photo",
				"description":  "Photo media type.",
				"source":       tt.wantSrc,
				"source_field": tt.wantField,
			}
			if diff := cmp.Diff(want, spec); diff != "" {
				t.Errorf("spec mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMediaType_Skips(t *testing.T) {
	row := sheet.Row{"name": "Photo", "machine_name": "photo", "source": "Image"}

	t.Run("nil capability", func(t *testing.T) {
		_, err := NewMediaTypeMapper(nil)(row)
		wantSkip(t, err, "media source support unavailable")
	})

	t.Run("source not provided by capability", func(t *testing.T) {
		mapper := NewMediaTypeMapper(StaticMediaSources{"file": "field_media_file"})
		_, err := mapper(row)
		wantSkip(t, err, "media source image is not available")
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := mapKind(t, "media_type", sheet.Row{"name": "Photo", "machine_name": "photo"})
		wantSkip(t, err, "source: required field is empty")
	})
}
