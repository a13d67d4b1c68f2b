package api

import (
	"context"
	"fmt"
	"mime"
	"net/http"

	"fintrack/internal/core"
)

// DefaultExportName is used when the export response carries no
// Content-Disposition filename.
const DefaultExportName = "transactions.csv"

// Download is a binary payload saved to a file, e.g. a CSV export.
type Download struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Summary fetches the server-computed totals. Balance is authoritative
// and never recomputed here.
func (c *Client) Summary(ctx context.Context) (core.Summary, error) {
	var out core.Summary
	err := c.doJSON(ctx, http.MethodGet, "/transactions/summary", nil, &out)
	return out, err
}

// Transactions lists transactions matching the filter; a zero filter
// returns everything.
func (c *Client) Transactions(ctx context.Context, f core.Filter) ([]core.Transaction, error) {
	path := "/transactions"
	if q := f.Query(); q != "" {
		path += "?" + q
	}
	var out []core.Transaction
	err := c.doJSON(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// CreateTransaction posts a new record and returns the server copy with
// its assigned id.
func (c *Client) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	var out core.Transaction
	err := c.doJSON(ctx, http.MethodPost, "/transactions", tx, &out)
	return out, err
}

// UpdateTransaction replaces the full record. Callers preserve the
// original type; the id in the path wins over any id in the body.
func (c *Client) UpdateTransaction(ctx context.Context, id int64, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx.ID = 0
	var out core.Transaction
	err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/transactions/%d", id), tx, &out)
	return out, err
}

func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/transactions/%d", id), nil, nil)
}

// Export fetches the CSV export for the filtered set. The filename comes
// from Content-Disposition when present, else DefaultExportName.
func (c *Client) Export(ctx context.Context, f core.Filter) (Download, error) {
	path := "/transactions/export"
	if q := f.Query(); q != "" {
		path += "?" + q
	}
	data, header, err := c.do(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return Download{}, err
	}

	name := DefaultExportName
	if cd := header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if fn := params["filename"]; fn != "" {
				name = fn
			}
		}
	}
	contentType := header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/csv"
	}
	return Download{Data: data, Filename: name, ContentType: contentType}, nil
}
