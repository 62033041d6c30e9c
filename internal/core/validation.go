package core

// validation.go provides row-level validation shared by the kind mappers.
//
// Mappers never fail a run. A row that cannot be mapped returns a *SkipError
// naming the offending field and value; the engine turns it into a Skipped
// outcome and logs it.

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/JonMunkholm/specsync/internal/sheet"
)

// machineNameRegex matches lower-case alphanumerics and underscores,
// not starting with a digit.
var machineNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// SkipError excludes a row from synchronization.
type SkipError struct {
	Field   string     // Column name, empty when not field-specific
	Value   string     // The offending value
	Message string     // Human-readable reason
	Level   slog.Level // Log level for the skip; zero value logs at warn
}

func (e *SkipError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Skip creates a SkipError that is not tied to a column.
func Skip(format string, args ...any) *SkipError {
	return &SkipError{Message: fmt.Sprintf(format, args...)}
}

// AsSkip reports whether err is a *SkipError and returns it.
func AsSkip(err error) (*SkipError, bool) {
	var se *SkipError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// ValidateMachineName checks a machine name against the naming rule.
func ValidateMachineName(field, name string) error {
	if name == "" {
		return &SkipError{Field: field, Message: "required field is empty"}
	}
	if !machineNameRegex.MatchString(name) {
		return &SkipError{
			Field:   field,
			Value:   name,
			Message: fmt.Sprintf("invalid machine name %q (use lower-case letters, digits and underscores, not starting with a digit)", name),
		}
	}
	return nil
}

// RequireColumns returns a SkipError for the first blank column.
func RequireColumns(row sheet.Row, columns ...string) error {
	for _, col := range columns {
		if !row.Has(col) {
			return &SkipError{Field: col, Message: "required field is empty"}
		}
	}
	return nil
}

// MachineNameFromLabel derives a machine name from a human label:
// lower-cased, non-alphanumerics collapsed to single underscores.
func MachineNameFromLabel(label string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// DefaultDescription returns "<name> <kind label>." for rows without one.
func DefaultDescription(name, kindLabel string) string {
	return fmt.Sprintf("%s %s.", name, kindLabel)
}
