package views

import (
	"context"
	"errors"

	"fintrack/internal/core"
)

// ErrTransactionNotFound is returned when an edit targets an id the
// backend no longer lists.
var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionRow is one rendered list entry. Amount is pre-formatted so
// templates stay free of money logic.
type TransactionRow struct {
	ID       int64
	Title    string
	Amount   string
	Type     core.TransactionType
	Category string
	Date     string
}

func transactionRows(txs []core.Transaction, symbol string) []TransactionRow {
	rows := make([]TransactionRow, 0, len(txs))
	for _, tx := range txs {
		category := tx.Category
		if category == "" {
			category = core.Uncategorized
		}
		rows = append(rows, TransactionRow{
			ID:       tx.ID,
			Title:    tx.Title,
			Amount:   tx.Amount.Display(symbol),
			Type:     tx.Type,
			Category: category,
			Date:     tx.Date.String(),
		})
	}
	return rows
}

// TransactionsView is the filterable list page. Filter echoes the
// applied values back into the filter form.
type TransactionsView struct {
	Filter core.Filter
	Rows   []TransactionRow
	Empty  bool
}

// BuildTransactions fetches the list matching f and prepares it for
// display.
func BuildTransactions(ctx context.Context, b Backend, f core.Filter, symbol string) (TransactionsView, error) {
	txs, err := b.Transactions(ctx, f)
	if err != nil {
		return TransactionsView{}, err
	}
	return TransactionsView{
		Filter: f,
		Rows:   transactionRows(txs, symbol),
		Empty:  len(txs) == 0,
	}, nil
}

// EditView prefills the edit dialog with the current record. The type is
// carried through hidden state and never changed by the dialog. Errors
// holds per-field messages when a submit fails validation.
type EditView struct {
	Tx     core.Transaction
	Values TransactionForm
	Errors map[string]string
}

// BuildEdit locates the transaction by id. The backend exposes no
// fetch-by-id, so the current list is scanned.
func BuildEdit(ctx context.Context, b Backend, id int64) (EditView, error) {
	txs, err := b.Transactions(ctx, core.Filter{})
	if err != nil {
		return EditView{}, err
	}
	for _, tx := range txs {
		if tx.ID == id {
			return EditView{
				Tx: tx,
				Values: TransactionForm{
					Title:    tx.Title,
					Amount:   tx.Amount.Decimal(),
					Category: tx.Category,
					Date:     tx.Date.String(),
				},
				Errors: map[string]string{},
			}, nil
		}
	}
	return EditView{}, ErrTransactionNotFound
}
