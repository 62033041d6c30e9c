package kinds

import (
	"github.com/JonMunkholm/specsync/internal/core"
	"github.com/JonMunkholm/specsync/internal/sheet"
)

func init() {
	registerContentTypes()
	registerBlockTypes()
	registerParagraphTypes()
	registerVocabularies()
	registerMenus()
	registerUserRoles()
}

func registerContentTypes() {
	core.Register(core.KindDefinition{
		Info: core.KindInfo{
			Key:   "content_type",
			Group: GroupStructure,
			Label: "content type",
			Table: "Content types",
		},
		Order: 10,
		Map: bundleMapper("content type", "name", func(row sheet.Row, spec core.Spec) {
			if pattern := row.Get("url_alias_pattern"); pattern != "" {
				spec["url_alias_pattern"] = pattern
			}
		}),
	})
}

func registerBlockTypes() {
	core.Register(core.KindDefinition{
		Info: core.KindInfo{
			Key:   "block_type",
			Group: GroupStructure,
			Label: "block type",
			Table: "Block types",
		},
		Order: 10,
		Map:   bundleMapper("block type", "label"),
	})
}

func registerParagraphTypes() {
	core.Register(core.KindDefinition{
		Info: core.KindInfo{
			Key:   "paragraph_type",
			Group: GroupStructure,
			Label: "paragraph type",
			Table: "Paragraph types",
		},
		Order: 10,
		Map:   bundleMapper("paragraph type", "label"),
	})
}

func registerVocabularies() {
	core.Register(core.KindDefinition{
		Info: core.KindInfo{
			Key:   "vocabulary",
			Group: GroupTaxonomy,
			Label: "vocabulary",
			Table: "Vocabularies",
		},
		Order: 10,
		Map:   bundleMapper("vocabulary", "name"),
	})
}

func registerMenus() {
	core.Register(core.KindDefinition{
		Info: core.KindInfo{
			Key:   "menu",
			Group: GroupNavigation,
			Label: "menu",
			Table: "Menus",
		},
		Order: 30,
		Map:   bundleMapper("menu", "label"),
	})
}

func registerUserRoles() {
	core.Register(core.KindDefinition{
		Info: core.KindInfo{
			Key:   "user_role",
			Group: GroupPeople,
			Label: "user role",
			Table: "User roles",
		},
		Order: 30,
		Map:   mapUserRole,
	})
}

// mapUserRole has no description column; roles carry a weight instead.
func mapUserRole(row sheet.Row) (core.Spec, error) {
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
		"weight":   core.ParseInt(row.Get("weight"), 0),
	}, nil
}
