// Package google appends exported transactions to a Google Sheets
// spreadsheet using service account credentials.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var (
	_ ports.TransactionAppender = (*Client)(nil)
	_ ports.Checker             = (*Client)(nil)
)

// Options configures the Sheets client. Exactly one of CredentialsJSON
// and CredentialsFile must be set.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// NewClient creates a Sheets client from explicit options.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetName := strings.TrimSpace(opts.SheetName)
	if sheetName == "" {
		sheetName = "Transactions"
	}

	credentialsJSON, err := loadCredentials(opts)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created",
		"spreadsheet_id", opts.SpreadsheetID,
		"sheet", sheetName)

	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(opts.SpreadsheetID),
		sheetName:     sheetName,
	}, nil
}

func loadCredentials(opts Options) ([]byte, error) {
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		return []byte(opts.CredentialsJSON), nil
	case strings.TrimSpace(opts.CredentialsFile) != "":
		data, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials")
	}
}

// AppendTransactions appends one row per transaction below the existing
// data: date, title, type, category, decimal amount.
func (c *Client) AppendTransactions(ctx context.Context, txs []core.Transaction) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if len(txs) == 0 {
		return "", nil
	}

	rows := make([][]any, 0, len(txs))
	for _, tx := range txs {
		category := tx.Category
		if category == "" {
			category = core.Uncategorized
		}
		rows = append(rows, []any{
			tx.Date.String(),
			tx.Title,
			string(tx.Type),
			category,
			tx.Amount.Decimal(),
		})
	}

	rng := fmt.Sprintf("%s!A:E", c.sheetName)
	vr := &gsheet.ValueRange{Values: rows}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheetName, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}

	slog.InfoContext(ctx, "Appended transactions to sheet",
		"rows", len(rows),
		"range", ref)

	return ref, nil
}

// Check verifies the spreadsheet is reachable with the configured
// credentials.
func (c *Client) Check(ctx context.Context) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet %s: %w", c.spreadsheetID, err)
	}
	for _, sheet := range ss.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == c.sheetName {
			return nil
		}
	}
	return fmt.Errorf("sheet %q not found in spreadsheet %s", c.sheetName, c.spreadsheetID)
}
