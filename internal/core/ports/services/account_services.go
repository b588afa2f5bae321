package services

import (
	"context"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	"github.com/SscSPs/caisse_ledger/internal/dto"
)

// AccountReaderSvc defines read operations for ledger accounts
type AccountReaderSvc interface {
	// GetAccount retrieves a cash drawer or bank account.
	GetAccount(ctx context.Context, ref domain.AccountRef) (*domain.Account, error)

	// ListAccounts lists accounts of one kind, or all accounts when kind is empty.
	ListAccounts(ctx context.Context, kind domain.AccountKind) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for ledger accounts
type AccountWriterSvc interface {
	// CreateAccount validates the balances mapping and persists a new account.
	CreateAccount(ctx context.Context, kind domain.AccountKind, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccountMetadata changes name, location or bank account type. Balances are never touched.
	UpdateAccountMetadata(ctx context.Context, ref domain.AccountRef, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccountPrivileged verifies the account's secret and may replace balances or rotate the secret.
	UpdateAccountPrivileged(ctx context.Context, ref domain.AccountRef, req dto.PrivilegedUpdateRequest, userID string) (*domain.Account, error)

	// ResetAccount zeroes every initial amount and starts a new balance period.
	ResetAccount(ctx context.Context, ref domain.AccountRef, userID string) (*domain.Account, error)

	// DeleteAccount removes an account. Transactions referencing it are kept.
	DeleteAccount(ctx context.Context, ref domain.AccountRef, userID string) error
}

// AccountCalculatorSvc defines calculation operations for ledger accounts
type AccountCalculatorSvc interface {
	// GetBalanceSummary runs the balance calculator over the current period.
	// Accounts with a secret require it.
	GetBalanceSummary(ctx context.Context, ref domain.AccountRef, secret string) (domain.FinancialSummary, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountCalculatorSvc
}
