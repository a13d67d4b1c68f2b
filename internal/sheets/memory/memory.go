// Package memory is an in-memory export sink for tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"
)

type Appender struct {
	mu   sync.Mutex
	rows []core.Transaction
}

var _ ports.TransactionAppender = (*Appender)(nil)

func New() *Appender {
	return &Appender{}
}

func (a *Appender) AppendTransactions(ctx context.Context, txs []core.Transaction) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	start := len(a.rows) + 1
	a.rows = append(a.rows, txs...)
	return fmt.Sprintf("memory!A%d:E%d", start, len(a.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (a *Appender) Rows() []core.Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]core.Transaction, len(a.rows))
	copy(out, a.rows)
	return out
}
