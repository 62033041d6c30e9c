package sheet

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// DefaultFetchTimeout bounds a single Google Sheets read.
var DefaultFetchTimeout = 30 * time.Second

// GoogleSource reads tabs of a Google spreadsheet.
type GoogleSource struct {
	svc           *sheets.Service
	spreadsheetID string
	timeout       time.Duration
}

// NewGoogleSource creates a source authenticated with a service-account
// credentials file. Token refresh is handled by the oauth2 token source.
func NewGoogleSource(ctx context.Context, spreadsheetID, credentialsFile string, timeout time.Duration) (*GoogleSource, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return NewGoogleSourceWithService(svc, spreadsheetID, timeout), nil
}

// NewGoogleSourceWithService creates a source from an existing service.
func NewGoogleSourceWithService(svc *sheets.Service, spreadsheetID string, timeout time.Duration) *GoogleSource {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &GoogleSource{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		timeout:       timeout,
	}
}

// Fetch reads the full used range of the named tab.
func (s *GoogleSource) Fetch(ctx context.Context, table string) ([]Row, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, table).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, unavailable(table, err)
	}

	return RowsFromValues(stringify(resp.Values)), nil
}

// stringify converts API cell values to strings. The API returns
// formatted values as strings, but numbers can still arrive as float64.
func stringify(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			switch c := v.(type) {
			case string:
				cells[j] = c
			case nil:
				cells[j] = ""
			default:
				cells[j] = fmt.Sprint(c)
			}
		}
		out[i] = cells
	}
	return out
}
