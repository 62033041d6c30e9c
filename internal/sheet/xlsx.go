package sheet

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXSource reads tabs from an exported spreadsheet workbook.
// The file is opened per fetch so edits between runs are picked up.
type XLSXSource struct {
	path string
}

// NewXLSXSource creates a source for the workbook at path.
func NewXLSXSource(path string) *XLSXSource {
	return &XLSXSource{path: path}
}

// Fetch returns the rows of the named worksheet.
func (s *XLSXSource) Fetch(ctx context.Context, table string) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable(table, err)
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, unavailable(table, fmt.Errorf("open workbook: %w", err))
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(table); err != nil || idx < 0 {
		return nil, unavailable(table, fmt.Errorf("worksheet not found"))
	}

	values, err := f.GetRows(table)
	if err != nil {
		return nil, unavailable(table, err)
	}
	return RowsFromValues(values), nil
}
