package core

// convert.go provides conversion helpers for sheet cell values.
//
// Spec sheets are edited by hand, so values arrive in many shapes:
//   - Various boolean representations (yes/no, true/false, 1/0, x)
//   - Comma or newline separated lists
//   - Spreadsheet formula prefixes (="value") and stray quotes

import (
	"strconv"
	"strings"
)

// ParseBool converts a cell to a boolean. ok is false for empty or
// unrecognized input.
func ParseBool(s string) (value, ok bool) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "true", "t", "yes", "y", "1", "x":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	default:
		return false, false
	}
}

// ParseInt converts a cell to an int, returning def for empty or invalid input.
func ParseInt(s string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return i
}

// ParseList splits a cell on commas and newlines, dropping blanks.
func ParseList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = CleanCell(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Removes formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}
