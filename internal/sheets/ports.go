package sheets

import (
	"context"

	"fintrack/internal/core"
)

// Ports for outbound export adapters.
type (
	// TransactionAppender appends exported transactions as rows. The
	// returned reference identifies where the rows landed.
	TransactionAppender interface {
		AppendTransactions(ctx context.Context, txs []core.Transaction) (rowRef string, err error)
	}

	// Checker verifies the destination is reachable with the configured
	// credentials.
	Checker interface {
		Check(ctx context.Context) error
	}
)
