package repositories

import (
	"context"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
)

// AccountReader defines read operations for ledger accounts
type AccountReader interface {
	// FindAccountByID retrieves one cash drawer or bank account.
	FindAccountByID(ctx context.Context, ref domain.AccountRef) (*domain.Account, error)

	// ListAccounts retrieves all accounts of a kind, or of every kind when kind is empty.
	ListAccounts(ctx context.Context, kind domain.AccountKind) ([]domain.Account, error)
}

// AccountWriter defines write operations for ledger accounts
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount overwrites the mutable fields of an existing account,
	// including balances, secret hash and balance period.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeleteAccount removes an account. Its transactions are left in place.
	DeleteAccount(ctx context.Context, ref domain.AccountRef) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
