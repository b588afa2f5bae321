package services

import (
	"context"
	"iter"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	"github.com/SscSPs/caisse_ledger/internal/dto"
)

// TransactionSvcFacade records and lists ledger transactions
type TransactionSvcFacade interface {
	// RecordTransaction validates and stores one transaction against an existing account.
	RecordTransaction(ctx context.Context, req dto.RecordTransactionRequest, userID string) (*domain.Transaction, error)

	// ListTransactions returns a lazy, restartable sequence of matching transactions.
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) iter.Seq2[domain.Transaction, error]
}
