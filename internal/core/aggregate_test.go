package core

import "testing"

func tx(title string, cents int64, typ TransactionType, cat string, date Date) Transaction {
	return Transaction{Title: title, Amount: Money{Cents: cents}, Type: typ, Category: cat, Date: date}
}

func TestExpenseByCategory(t *testing.T) {
	txs := []Transaction{
		tx("salary", 500000, Income, "SALARY", NewDate(2024, 1, 5)),
		tx("rent", 120000, Expense, "RENT", NewDate(2024, 1, 1)),
		tx("groceries", 4500, Expense, "FOOD", NewDate(2024, 1, 2)),
		tx("restaurant", 3200, Expense, "FOOD", NewDate(2024, 1, 9)),
		tx("misc", 1000, Expense, "", NewDate(2024, 1, 10)),
	}

	got := ExpenseByCategory(txs)
	if len(got) != 3 {
		t.Fatalf("got %d groups, want 3", len(got))
	}

	// Sorted by descending amount.
	if got[0].Name != "RENT" || got[0].Amount.Cents != 120000 {
		t.Errorf("group 0 = %+v", got[0])
	}
	if got[1].Name != "FOOD" || got[1].Amount.Cents != 7700 {
		t.Errorf("group 1 = %+v", got[1])
	}
	if got[2].Name != Uncategorized || got[2].Amount.Cents != 1000 {
		t.Errorf("group 2 = %+v", got[2])
	}

	// Group totals must add up to the sum of all EXPENSE amounts.
	var groupTotal, expenseTotal int64
	for _, g := range got {
		groupTotal += g.Amount.Cents
	}
	for _, transaction := range txs {
		if transaction.Type == Expense {
			expenseTotal += transaction.Amount.Cents
		}
	}
	if groupTotal != expenseTotal {
		t.Fatalf("group total %d != expense total %d", groupTotal, expenseTotal)
	}
}

func TestExpenseByCategoryEmpty(t *testing.T) {
	if got := ExpenseByCategory(nil); len(got) != 0 {
		t.Fatalf("expected no groups, got %v", got)
	}
	onlyIncome := []Transaction{tx("salary", 100, Income, "SALARY", NewDate(2024, 1, 1))}
	if got := ExpenseByCategory(onlyIncome); len(got) != 0 {
		t.Fatalf("income must not contribute to expense groups: %v", got)
	}
}

func TestMonthlyTotalsChronological(t *testing.T) {
	// Labels would sort Apr < Dec < Jan alphabetically; chronological order
	// must win.
	txs := []Transaction{
		tx("a", 100, Income, "", NewDate(2024, 4, 10)),
		tx("b", 200, Expense, "", NewDate(2023, 12, 1)),
		tx("c", 300, Income, "", NewDate(2024, 1, 15)),
		tx("d", 400, Expense, "", NewDate(2024, 1, 20)),
	}

	got := MonthlyTotals(txs)
	if len(got) != 3 {
		t.Fatalf("got %d buckets, want 3", len(got))
	}
	wantLabels := []string{"Dec 2023", "Jan 2024", "Apr 2024"}
	for i, want := range wantLabels {
		if got[i].Label != want {
			t.Errorf("bucket %d label = %q, want %q", i, got[i].Label, want)
		}
	}
	if got[1].Income.Cents != 300 || got[1].Expense.Cents != 400 {
		t.Errorf("Jan 2024 bucket = %+v", got[1])
	}
}

func TestMonthlyTotalsSkipsZeroDates(t *testing.T) {
	txs := []Transaction{{Title: "no date", Amount: Money{Cents: 100}, Type: Income}}
	if got := MonthlyTotals(txs); len(got) != 0 {
		t.Fatalf("zero dates must be skipped, got %v", got)
	}
}

func TestRecent(t *testing.T) {
	txs := []Transaction{
		tx("a", 1, Income, "", NewDate(2024, 1, 1)),
		tx("b", 2, Income, "", NewDate(2024, 1, 2)),
		tx("c", 3, Income, "", NewDate(2024, 1, 3)),
	}
	if got := Recent(txs, 2); len(got) != 2 || got[0].Title != "a" {
		t.Fatalf("Recent = %v", got)
	}
	if got := Recent(txs, 5); len(got) != 3 {
		t.Fatalf("Recent beyond length = %v", got)
	}
}
