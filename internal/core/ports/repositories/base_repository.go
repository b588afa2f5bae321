package repositories

import (
	"context"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
)

// LedgerTx is the view of the store available inside an account's critical section.
// Writes made through it are committed only when the section's function returns nil.
type LedgerTx interface {
	AccountWriter
	TransactionReader
	ArchiveReader
	ArchiveWriter
}

// AccountLocker serializes archive/reset and privileged edits per account.
type AccountLocker interface {
	// WithAccountLock loads the account under an exclusive lock and runs fn.
	// It returns ErrNotFound when the account does not exist.
	WithAccountLock(ctx context.Context, ref domain.AccountRef, fn func(ctx context.Context, account *domain.Account, tx LedgerTx) error) error
}
