package repositories

import (
	"context"
	"iter"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
)

// TransactionReader defines read operations for ledger transactions
type TransactionReader interface {
	// ListTransactions returns a lazy sequence ordered by transaction date then
	// creation time, both descending. Ranging over the sequence again re-runs the query.
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) iter.Seq2[domain.Transaction, error]
}

// TransactionWriter defines write operations for ledger transactions.
// Transactions are immutable once saved.
type TransactionWriter interface {
	SaveTransaction(ctx context.Context, txn domain.Transaction) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
