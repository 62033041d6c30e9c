package core

import "github.com/JonMunkholm/specsync/internal/sheet"

// Classify derives the sync flag of a row. Comparison is exact and
// case-sensitive; the create token wins over the update token, and the
// update token counts only when update mode is enabled.
func Classify(row sheet.Row, cfg FilterConfig) SyncFlag {
	value, ok := row[cfg.StatusColumn]
	if !ok || value == "" {
		return FlagNone
	}

	switch {
	case cfg.CreateToken != "" && value == cfg.CreateToken:
		return FlagCreatePending
	case cfg.UpdateMode && cfg.UpdateToken != "" && value == cfg.UpdateToken:
		return FlagUpdatePending
	default:
		return FlagNone
	}
}
