// Package sheet provides tabular row sources for configuration sheets.
//
// A sheet (tab) is read as a header row followed by data rows. Header cells
// are normalized so callers can address columns by a stable key:
//
//	"Machine name"  -> "machine_name"
//	"URL alias  pattern" -> "url_alias_pattern"
//
// Every implementation of [Source] returns rows in document order and maps
// missing trailing cells to the empty string.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrSourceUnavailable is wrapped by every Fetch error caused by the
// underlying source (network, credentials, missing tab).
var ErrSourceUnavailable = errors.New("sheet source unavailable")

// Source provides rows for a named table.
type Source interface {
	Fetch(ctx context.Context, table string) ([]Row, error)
}

// Row maps a normalized column name to the cell value.
type Row map[string]string

// Get returns the trimmed value of a column, or "" if absent.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// Has reports whether the column holds a non-blank value.
func (r Row) Has(column string) bool {
	return r.Get(column) != ""
}

// NormalizeHeader lower-cases a header cell and replaces whitespace runs
// with a single underscore. Leading and trailing whitespace is dropped.
func NormalizeHeader(h string) string {
	fields := strings.FieldsFunc(strings.ToLower(h), unicode.IsSpace)
	return strings.Join(fields, "_")
}

// RowsFromValues converts raw cell values into rows. The first row is the
// header; an empty input yields no rows.
func RowsFromValues(values [][]string) []Row {
	if len(values) == 0 {
		return nil
	}

	header := make([]string, len(values[0]))
	for i, h := range values[0] {
		header[i] = NormalizeHeader(h)
	}

	rows := make([]Row, 0, len(values)-1)
	for _, raw := range values[1:] {
		row := make(Row, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			if i < len(raw) {
				row[col] = raw[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// unavailable wraps err so that errors.Is(err, ErrSourceUnavailable) holds.
func unavailable(table string, err error) error {
	return fmt.Errorf("%w: table %q: %v", ErrSourceUnavailable, table, err)
}
