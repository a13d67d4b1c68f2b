package views

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/api"
	"fintrack/internal/core"
)

// recentCount is how many latest transactions the dashboard widget lists.
const recentCount = 5

// DashboardView holds the three dashboard widgets. Each widget carries
// its own error string so that one failing upstream fetch degrades only
// that widget and never blanks its siblings.
type DashboardView struct {
	Summary    core.Summary
	SummaryErr string

	Recent     []TransactionRow
	ByCategory []core.CategoryAmount
	Monthly    []core.MonthBucket
	ListErr    string

	Symbol string
}

// BuildDashboard fetches the summary and the transaction list
// concurrently. Session expiry aborts the whole page; any other failure
// is reported per widget.
func BuildDashboard(ctx context.Context, b Backend, symbol string) (DashboardView, error) {
	view := DashboardView{Symbol: symbol}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := b.Summary(gctx)
		if err != nil {
			if errors.Is(err, api.ErrSessionExpired) {
				return err
			}
			view.SummaryErr = widgetError(err)
			return nil
		}
		view.Summary = summary
		return nil
	})

	g.Go(func() error {
		txs, err := b.Transactions(gctx, core.Filter{})
		if err != nil {
			if errors.Is(err, api.ErrSessionExpired) {
				return err
			}
			view.ListErr = widgetError(err)
			return nil
		}
		view.Recent = transactionRows(core.Recent(txs, recentCount), symbol)
		view.ByCategory = core.ExpenseByCategory(txs)
		view.Monthly = core.MonthlyTotals(txs)
		return nil
	})

	if err := g.Wait(); err != nil {
		return DashboardView{}, err
	}
	return view, nil
}

// widgetError turns an upstream failure into the short message shown
// inside the affected widget.
func widgetError(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, api.ErrNetwork) {
		return "Could not reach the server. Please try again."
	}
	return "Something went wrong loading this section."
}
