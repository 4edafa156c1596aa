package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/kinesiogame/encuesta/pkg/config"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Client represents a Google Sheets API client
type Client struct {
	service *gsheets.Service
}

// NewClient creates a Sheets client authenticated with the configured
// service account. Extra options are appended after the credentials.
func NewClient(ctx context.Context, cfg *config.SheetsConfig, opts ...option.ClientOption) (*Client, error) {
	if cfg.CredentialsJSON == "" {
		return nil, fmt.Errorf("missing GOOGLE_SERVICE_ACCOUNT_JSON")
	}

	clientOpts := append([]option.ClientOption{
		option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)),
		option.WithScopes(gsheets.SpreadsheetsScope),
	}, opts...)

	return newClient(ctx, clientOpts...)
}

// NewClientWithOptions creates a Sheets client from explicit options only
func NewClientWithOptions(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	return newClient(ctx, opts...)
}

func newClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	service, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Client{service: service}, nil
}

// AppendRow appends one row after the last row of the named tab
func (c *Client) AppendRow(ctx context.Context, spreadsheetID, sheetName string, row []string) error {
	values := make([]interface{}, len(row))
	for i, cell := range row {
		values[i] = cell
	}

	_, err := c.service.Spreadsheets.Values.
		Append(spreadsheetID, A1Range(sheetName, len(row)), &gsheets.ValueRange{
			Values: [][]interface{}{values},
		}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append row to %s: %w", sheetName, err)
	}
	return nil
}

// A1Range returns the append range of a tab, A:Z or wider when a row has
// more than 26 cells. The tab name is quoted so names with spaces or
// punctuation resolve.
func A1Range(sheetName string, width int) string {
	return "'" + strings.ReplaceAll(sheetName, "'", "''") + "'!A:" + columnName(max(width, 26))
}

// columnName converts a 1-based column number to its letters (27 -> AA).
func columnName(n int) string {
	var letters []byte
	for n > 0 {
		n--
		letters = append([]byte{byte('A' + n%26)}, letters...)
		n /= 26
	}
	return string(letters)
}
