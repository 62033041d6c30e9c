package kinds

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/specsync/internal/core"
	"github.com/JonMunkholm/specsync/internal/sheet"
)

// FieldKind is the closed set of field types the mapper understands.
type FieldKind int

const (
	FieldUnsupported FieldKind = iota
	FieldText
	FieldTextLong
	FieldTextWithSummary
	FieldBoolean
	FieldInteger
	FieldDecimal
	FieldDate
	FieldDateTime
	FieldLink
	FieldEmail
	FieldTelephone
	FieldImage
	FieldFile
	FieldEntityReference
	FieldTermReference
	FieldParagraphs
	FieldListText
)

type fieldKindDef struct {
	storageType string
	aliases     []string
	storage     func(row sheet.Row) map[string]any
}

var fieldKinds = map[FieldKind]fieldKindDef{
	FieldText: {
		storageType: "string",
		aliases:     []string{"text", "text_plain", "plain_text", "string"},
		storage: func(row sheet.Row) map[string]any {
			return map[string]any{"max_length": core.ParseInt(row.Get("max_length"), 255)}
		},
	},
	FieldTextLong: {
		storageType: "text_long",
		aliases:     []string{"text_long", "text_formatted_long", "long_text", "text_plain_long", "string_long"},
	},
	FieldTextWithSummary: {
		storageType: "text_with_summary",
		aliases:     []string{"text_with_summary", "text_formatted_long_with_summary"},
	},
	FieldBoolean: {
		storageType: "boolean",
		aliases:     []string{"boolean", "bool", "checkbox"},
	},
	FieldInteger: {
		storageType: "integer",
		aliases:     []string{"integer", "number_integer", "number"},
		storage: func(sheet.Row) map[string]any {
			return map[string]any{"unsigned": false, "size": "normal"}
		},
	},
	FieldDecimal: {
		storageType: "decimal",
		aliases:     []string{"decimal", "number_decimal"},
		storage: func(row sheet.Row) map[string]any {
			return map[string]any{
				"precision": core.ParseInt(row.Get("precision"), 10),
				"scale":     core.ParseInt(row.Get("scale"), 2),
			}
		},
	},
	FieldDate: {
		storageType: "datetime",
		aliases:     []string{"date"},
		storage: func(sheet.Row) map[string]any {
			return map[string]any{"datetime_type": "date"}
		},
	},
	FieldDateTime: {
		storageType: "datetime",
		aliases:     []string{"datetime", "date_time", "date_and_time"},
		storage: func(sheet.Row) map[string]any {
			return map[string]any{"datetime_type": "datetime"}
		},
	},
	FieldLink: {
		storageType: "link",
		aliases:     []string{"link", "url"},
	},
	FieldEmail: {
		storageType: "email",
		aliases:     []string{"email", "e_mail"},
	},
	FieldTelephone: {
		storageType: "telephone",
		aliases:     []string{"telephone", "telephone_number", "phone"},
	},
	FieldImage: {
		storageType: "image",
		aliases:     []string{"image"},
		storage: func(sheet.Row) map[string]any {
			return map[string]any{"uri_scheme": "public"}
		},
	},
	FieldFile: {
		storageType: "file",
		aliases:     []string{"file"},
		storage: func(sheet.Row) map[string]any {
			return map[string]any{"uri_scheme": "public"}
		},
	},
	FieldEntityReference: {
		storageType: "entity_reference",
		aliases:     []string{"entity_reference", "reference"},
		storage: func(row sheet.Row) map[string]any {
			target := row.Get("reference_target")
			if target == "" {
				target = "node"
			}
			return map[string]any{"target_type": entityTypeFor(target)}
		},
	},
	FieldTermReference: {
		storageType: "entity_reference",
		aliases:     []string{"entity_reference_taxonomy_term", "taxonomy_term", "term_reference"},
		storage: func(sheet.Row) map[string]any {
			return map[string]any{"target_type": "taxonomy_term"}
		},
	},
	FieldParagraphs: {
		storageType: "entity_reference_revisions",
		aliases:     []string{"entity_reference_revisions", "paragraph", "paragraphs"},
		storage: func(sheet.Row) map[string]any {
			return map[string]any{"target_type": "paragraph"}
		},
	},
	FieldListText: {
		storageType: "list_string",
		aliases:     []string{"list_text", "list_string", "list"},
		storage: func(row sheet.Row) map[string]any {
			return map[string]any{"allowed_values": core.ParseList(row.Get("allowed_values"))}
		},
	},
}

// fieldAliases is the reverse index of fieldKinds aliases.
var fieldAliases = func() map[string]FieldKind {
	m := make(map[string]FieldKind)
	for k, def := range fieldKinds {
		for _, a := range def.aliases {
			m[a] = k
		}
	}
	return m
}()

// ParseFieldKind maps sheet wording such as "Text (plain)" or
// "Entity reference: Taxonomy term" to a FieldKind.
func ParseFieldKind(s string) FieldKind {
	if k, ok := fieldAliases[core.MachineNameFromLabel(s)]; ok {
		return k
	}
	return FieldUnsupported
}

// StorageType returns the storage plugin id, or "" for FieldUnsupported.
func (k FieldKind) StorageType() string {
	return fieldKinds[k].storageType
}

// Storage returns the storage settings for the row.
func (k FieldKind) Storage(row sheet.Row) map[string]any {
	def, ok := fieldKinds[k]
	if !ok || def.storage == nil {
		return map[string]any{}
	}
	return def.storage(row)
}

// entityTypes maps sheet wording to entity type ids.
var entityTypes = map[string]string{
	"content":        "node",
	"content_type":   "node",
	"paragraph":      "paragraph",
	"paragraph_type": "paragraph",
	"block":          "block_content",
	"block_type":     "block_content",
	"custom_block":   "block_content",
	"media":          "media",
	"media_type":     "media",
	"vocabulary":     "taxonomy_term",
	"taxonomy_term":  "taxonomy_term",
	"term":           "taxonomy_term",
	"user":           "user",
}

func entityTypeFor(s string) string {
	key := core.MachineNameFromLabel(s)
	if et, ok := entityTypes[key]; ok {
		return et
	}
	return key
}

// cardinalityUnlimited is the stored value for "unlimited".
const cardinalityUnlimited = -1

func parseCardinality(s string) int {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return 1
	case "unlimited", "-1", "*":
		return cardinalityUnlimited
	}
	if n := core.ParseInt(s, 0); n > 0 {
		return n
	}
	return 1
}

func init() {
	core.Register(core.KindDefinition{
		Info: core.KindInfo{
			Key:   "field",
			Group: GroupFields,
			Label: "field",
			Table: "Fields",
		},
		Order: 50,
		Map:   mapField,
	})
}

func mapField(row sheet.Row) (core.Spec, error) {
	name := row.Get("machine_name")
	if err := core.ValidateMachineName("machine_name", name); err != nil {
		return nil, err
	}
	bundle := row.Get("bundle")
	if err := core.ValidateMachineName("bundle", bundle); err != nil {
		return nil, err
	}
	label := row.Get("field_label")
	if label == "" {
		label = row.Get("name")
	}
	if label == "" {
		return nil, &core.SkipError{Field: "field_label", Message: "required field is empty"}
	}

	rawType := row.Get("field_type")
	kind := ParseFieldKind(rawType)
	if kind == FieldUnsupported {
		return nil, &core.SkipError{
			Field:   "field_type",
			Value:   rawType,
			Message: fmt.Sprintf("unsupported field type %q", rawType),
		}
	}

	entityType := "node"
	if et := row.Get("entity_type"); et != "" {
		entityType = entityTypeFor(et)
	}

	required, _ := core.ParseBool(row.Get("required"))

	return core.Spec{
		core.IDKey:    entityType + "." + bundle + "." + name,
		"field_name":  name,
		"entity_type": entityType,
		"bundle":      bundle,
		"label":       label,
		"type":        kind.StorageType(),
		"required":    required,
		"cardinality": parseCardinality(row.Get("cardinality")),
		"description": row.Get("help_text"),
		"storage":     kind.Storage(row),
	}, nil
}
