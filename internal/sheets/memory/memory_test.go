package memory

import (
	"context"
	"testing"

	"fintrack/internal/core"
)

func TestAppendTransactions(t *testing.T) {
	a := New()

	ref, err := a.AppendTransactions(context.Background(), []core.Transaction{
		{ID: 1, Title: "Salary", Amount: core.Money{Cents: 500000}, Type: core.Income, Date: core.NewDate(2024, 3, 1)},
		{ID: 2, Title: "Rent", Amount: core.Money{Cents: 120000}, Type: core.Expense, Date: core.NewDate(2024, 3, 2)},
	})
	if err != nil {
		t.Fatalf("AppendTransactions: %v", err)
	}
	if ref != "memory!A1:E2" {
		t.Errorf("ref = %q", ref)
	}

	ref, err = a.AppendTransactions(context.Background(), []core.Transaction{
		{ID: 3, Title: "Snacks", Amount: core.Money{Cents: 450}, Type: core.Expense, Date: core.NewDate(2024, 3, 3)},
	})
	if err != nil {
		t.Fatalf("AppendTransactions: %v", err)
	}
	if ref != "memory!A3:E3" {
		t.Errorf("second ref = %q", ref)
	}

	if got := len(a.Rows()); got != 3 {
		t.Errorf("rows = %d", got)
	}
}
