// Package kinds registers all entity kind definitions with the core registry.
// Import this package to ensure all kinds are registered.
package kinds

import (
	"github.com/JonMunkholm/specsync/internal/core"
	"github.com/JonMunkholm/specsync/internal/sheet"
)

// Registry groups.
const (
	GroupStructure  = "Structure"
	GroupMedia      = "Media"
	GroupTaxonomy   = "Taxonomy"
	GroupNavigation = "Navigation"
	GroupPeople     = "People"
	GroupFields     = "Fields"
	GroupSiteStudio = "Site Studio"
)

// bundleMapper maps the common name/machine_name/description columns.
// nameKey is the attribute the display name is stored under.
func bundleMapper(kindLabel, nameKey string, extra ...func(sheet.Row, core.Spec)) core.MapFunc {
	return func(row sheet.Row) (core.Spec, error) {
		id := row.Get("machine_name")
		if err := core.ValidateMachineName("machine_name", id); err != nil {
			return nil, err
		}
		if err := core.RequireColumns(row, "name"); err != nil {
			return nil, err
		}

		name := row.Get("name")
		desc := row.Get("description")
		if desc == "" {
			desc = core.DefaultDescription(name, kindLabel)
		}

		spec := core.Spec{
			core.IDKey:    id,
			nameKey:       name,
			"description": desc,
		}
		for _, fn := range extra {
			fn(row, spec)
		}
		return spec, nil
	}
}
