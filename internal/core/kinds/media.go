package kinds

import (
	"strings"

	"github.com/JonMunkholm/specsync/internal/core"
	"github.com/JonMunkholm/specsync/internal/sheet"
)

// MediaSourceCapability reports which media source plugins the target site
// provides and the field each stores its value in.
type MediaSourceCapability interface {
	SourceField(source string) (field string, ok bool)
}

// StaticMediaSources maps a media source plugin id to its source field.
type StaticMediaSources map[string]string

func (m StaticMediaSources) SourceField(source string) (string, bool) {
	f, ok := m[source]
	return f, ok
}

// DefaultMediaSources are the core media source plugins.
var DefaultMediaSources = StaticMediaSources{
	"image":        "field_media_image",
	"file":         "field_media_file",
	"audio_file":   "field_media_audio_file",
	"video_file":   "field_media_video_file",
	"oembed:video": "field_media_oembed_video",
}

// mediaSourceAliases maps sheet wording to plugin ids.
var mediaSourceAliases = map[string]string{
	"document":     "file",
	"audio":        "audio_file",
	"video":        "video_file",
	"remote_video": "oembed:video",
	"oembed_video": "oembed:video",
}

func init() {
	core.Register(core.KindDefinition{
		Info: core.KindInfo{
			Key:   "media_type",
			Group: GroupMedia,
			Label: "media type",
			Table: "Media types",
		},
		Order: 20,
		Map:   NewMediaTypeMapper(DefaultMediaSources),
	})
}

// NewMediaTypeMapper returns the media type mapper. With a nil capability
// every row is skipped.
func NewMediaTypeMapper(sources MediaSourceCapability) core.MapFunc {
	base := bundleMapper("media type", "label")

	return func(row sheet.Row) (core.Spec, error) {
		if sources == nil {
			return nil, core.Skip("media source support unavailable")
		}
		spec, err := base(row)
		if err != nil {
			return nil, err
		}

		raw := row.Get("source")
		if raw == "" {
			return nil, &core.SkipError{Field: "source", Message: "required field is empty"}
		}
		source := normalizeMediaSource(raw)
		spec["source"] = source

		field, ok := sources.SourceField(source)
		if !ok {
			return nil, &core.SkipError{
				Field:   "source",
				Value:   raw,
				Message: "media source " + source + " is not available",
			}
		}
		spec["source_field"] = field
		return spec, nil
	}
}

func normalizeMediaSource(s string) string {
	key := strings.ToLower(strings.TrimSpace(s))
	if !strings.Contains(key, ":") {
		key = core.MachineNameFromLabel(key)
	}
	if alias, ok := mediaSourceAliases[key]; ok {
		return alias
	}
	return key
}
