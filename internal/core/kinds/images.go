package kinds

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/specsync/internal/core"
	"github.com/JonMunkholm/specsync/internal/sheet"
)

func init() {
	core.Register(core.KindDefinition{
		Info: core.KindInfo{
			Key:   "image_style",
			Group: GroupMedia,
			Label: "image style",
			Table: "Image styles",
		},
		Order: 40,
		Map:   mapImageStyle,
	})

	core.Register(core.KindDefinition{
		Info: core.KindInfo{
			Key:   "image_effect",
			Group: GroupMedia,
			Label: "image effect",
			Table: "Image effects",
		},
		Order: 45,
		Map:   mapImageEffect,
	})
}

func mapImageStyle(row sheet.Row) (core.Spec, error) {
	id := row.Get("machine_name")
	if err := core.ValidateMachineName("machine_name", id); err != nil {
		return nil, err
	}
	if err := core.RequireColumns(row, "name"); err != nil {
		return nil, err
	}
	return core.Spec{
		core.IDKey: id,
		"label":    row.Get("name"),
	}, nil
}

// mapImageEffect maps one effect row of an image style. Effects are keyed
// <image_style>.<machine_name> so one style may repeat a plugin. The
// effect's dimensions come from its free-text summary.
func mapImageEffect(row sheet.Row) (core.Spec, error) {
	name := row.Get("machine_name")
	if err := core.ValidateMachineName("machine_name", name); err != nil {
		return nil, err
	}
	style := row.Get("image_style")
	if err := core.ValidateMachineName("image_style", style); err != nil {
		return nil, err
	}
	if err := core.RequireColumns(row, "effect"); err != nil {
		return nil, err
	}

	summary := row.Get("summary")
	settings := core.ParseSummary(summary)
	if len(settings) == 0 {
		return nil, &core.SkipError{
			Field:   "summary",
			Value:   summary,
			Message: fmt.Sprintf("unparseable summary %q", summary),
			Level:   slog.LevelError,
		}
	}

	plugin := effectPluginID(row.Get("effect"))
	data := make(map[string]any, len(settings))
	for k, v := range settings {
		data[k] = v
	}

	return core.Spec{
		core.IDKey:    style + "." + name,
		"image_style": style,
		"effect_id":   plugin,
		"weight":      core.ParseInt(row.Get("weight"), 0),
		"data":        data,
	}, nil
}

// effectPluginID turns "Scale and crop" into "image_scale_and_crop".
func effectPluginID(effect string) string {
	id := core.MachineNameFromLabel(effect)
	if !strings.HasPrefix(id, "image_") {
		id = "image_" + id
	}
	return id
}
