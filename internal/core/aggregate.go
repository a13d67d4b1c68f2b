package core

import (
	"sort"
	"time"
)

// CategoryAmount is one slice of the expense-by-category chart series.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthBucket is one bar group of the monthly chart series: income and
// expense totals for a calendar month.
type MonthBucket struct {
	Label   string // e.g. "Mar 2024"
	Month   time.Time
	Income  Money
	Expense Money
}

// ExpenseByCategory sums EXPENSE amounts grouped by category. Transactions
// without a category land in the Uncategorized bucket. Groups come back
// sorted by descending amount, ties broken by name, so chart ordering is
// deterministic.
func ExpenseByCategory(txs []Transaction) []CategoryAmount {
	byCat := map[string]int64{}
	for _, tx := range txs {
		if tx.Type != Expense {
			continue
		}
		cat := tx.Category
		if cat == "" {
			cat = Uncategorized
		}
		byCat[cat] += tx.Amount.Cents
	}
	out := make([]CategoryAmount, 0, len(byCat))
	for name, cents := range byCat {
		out = append(out, CategoryAmount{Name: name, Amount: Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// MonthlyTotals buckets all transactions by calendar month, summing income
// and expense per bucket. Buckets are sorted chronologically by the
// underlying date, not by label string order.
func MonthlyTotals(txs []Transaction) []MonthBucket {
	byMonth := map[time.Time]*MonthBucket{}
	for _, tx := range txs {
		if tx.Date.IsZero() {
			continue
		}
		key := time.Date(tx.Date.Year(), tx.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
		b, ok := byMonth[key]
		if !ok {
			b = &MonthBucket{Label: key.Format("Jan 2006"), Month: key}
			byMonth[key] = b
		}
		switch tx.Type {
		case Income:
			b.Income.Cents += tx.Amount.Cents
		case Expense:
			b.Expense.Cents += tx.Amount.Cents
		}
	}
	out := make([]MonthBucket, 0, len(byMonth))
	for _, b := range byMonth {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out
}

// Recent returns the first n transactions, mirroring the dashboard's
// "recent transactions" widget. The backend already returns newest-first.
func Recent(txs []Transaction, n int) []Transaction {
	if len(txs) <= n {
		return txs
	}
	return txs[:n]
}
