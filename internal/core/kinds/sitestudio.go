package kinds

import (
	"regexp"
	"strings"

	"github.com/JonMunkholm/specsync/internal/core"
	"github.com/JonMunkholm/specsync/internal/sheet"
)

// hexColorRegex accepts #rgb and #rrggbb.
var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func init() {
	core.Register(core.KindDefinition{
		Info: core.KindInfo{
			Key:   "site_studio_color",
			Group: GroupSiteStudio,
			Label: "Site Studio color",
			Table: "Site Studio colors",
		},
		Order: 60,
		Map:   mapColor,
	})

	core.Register(core.KindDefinition{
		Info: core.KindInfo{
			Key:   "site_studio_font_stack",
			Group: GroupSiteStudio,
			Label: "Site Studio font stack",
			Table: "Site Studio font stacks",
		},
		Order: 60,
		Map:   mapFontStack,
	})
}

func mapColor(row sheet.Row) (core.Spec, error) {
	id := row.Get("machine_name")
	if err := core.ValidateMachineName("machine_name", id); err != nil {
		return nil, err
	}
	if err := core.RequireColumns(row, "name", "hex"); err != nil {
		return nil, err
	}

	hex := row.Get("hex")
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	if !hexColorRegex.MatchString(hex) {
		return nil, &core.SkipError{Field: "hex", Value: row.Get("hex"), Message: "invalid hex color"}
	}

	tags := core.ParseList(row.Get("tags"))
	return core.Spec{
		core.IDKey: id,
		"label":    row.Get("name"),
		"value":    strings.ToLower(hex),
		"tags":     tags,
	}, nil
}

func mapFontStack(row sheet.Row) (core.Spec, error) {
	id := row.Get("machine_name")
	if err := core.ValidateMachineName("machine_name", id); err != nil {
		return nil, err
	}
	if err := core.RequireColumns(row, "name", "font_stack"); err != nil {
		return nil, err
	}
	return core.Spec{
		core.IDKey: id,
		"label":    row.Get("name"),
		"stack":    row.Get("font_stack"),
	}, nil
}
