package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	ports "budget/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// Ensure interface conformance
var _ ports.Mirror = (*Client)(nil)

// Credentials selects the service account used by the client. JSON wins
// over File when both are set.
type Credentials struct {
	JSON string
	File string
}

// New creates a Sheets client for spreadsheetID. Extra options are appended
// after the credential options, so tests can point the client at a fake
// endpoint.
func New(ctx context.Context, spreadsheetID string, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// NewWithCredentials creates a client authenticated as a service account.
func NewWithCredentials(ctx context.Context, spreadsheetID string, creds Credentials) (*Client, error) {
	opt, err := CredentialsOption(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return New(ctx, spreadsheetID, opt, goption.WithScopes(gsheet.SpreadsheetsScope))
}

// CredentialsOption loads the service account key from inline JSON or a file.
func CredentialsOption(ctx context.Context, creds Credentials) (goption.ClientOption, error) {
	serviceAccountJSON := strings.TrimSpace(creds.JSON)
	serviceAccountFile := strings.TrimSpace(creds.File)

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline service account credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	return goption.WithCredentialsJSON(credentialsJSON), nil
}

// WriteTable clears sheet and writes rows starting at A1. Cells are stored
// as given, never parsed as formulas or dates; decimal numbers are sent as
// numbers so the tab can sum them.
func (c *Client) WriteTable(ctx context.Context, sheet string, rows [][]string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := quoteSheet(sheet)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", sheet, err)
	}

	if len(rows) == 0 {
		return nil
	}

	vr := &gsheet.ValueRange{Values: toValues(rows)}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng+"!A1", vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write %s: %w", sheet, err)
	}

	slog.DebugContext(ctx, "Wrote sheet", "sheet", sheet, "rows", len(rows))
	return nil
}

// ReadTable returns the cell text of sheet. Trailing empty cells are not
// returned by the API, so rows may be ragged.
func (c *Client) ReadTable(ctx context.Context, sheet string) ([][]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, quoteSheet(sheet)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheet, err)
	}

	out := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		out = append(out, toStrings(row))
	}
	return out, nil
}

// quoteSheet wraps a sheet name in single quotes so names with spaces work
// in A1 notation.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func toValues(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = cellValue(v)
		}
		out[i] = cells
	}
	return out
}

// cellValue returns v as a JSON number when it is a plain decimal, else as
// text.
func cellValue(v string) interface{} {
	if !json.Valid([]byte(v)) {
		return v
	}
	if _, err := decimal.NewFromString(v); err != nil {
		return v
	}
	return json.Number(v)
}

func toStrings(in []interface{}) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		out = append(out, fmt.Sprint(v))
	}
	return out
}
