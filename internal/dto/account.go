package dto

import (
	"time"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceEntry is one currency/initial-amount pair in a request or response.
type BalanceEntry struct {
	CurrencyCode string          `json:"currencyCode" binding:"required,currency_code"`
	Amount       decimal.Decimal `json:"amount"`
}

// CreateAccountRequest defines the data needed to create a cash drawer or bank account.
// Kind is taken from the route.
type CreateAccountRequest struct {
	Name        string         `json:"name" binding:"required"`
	Location    string         `json:"location"`    // cash drawers
	AccountType string         `json:"accountType"` // bank accounts
	Balances    []BalanceEntry `json:"balances" binding:"dive"`
	Secret      string         `json:"secret"` // Optional visibility secret
}

// UpdateAccountRequest defines the metadata a regular user may change.
// Balances cannot be changed through this request.
type UpdateAccountRequest struct {
	Name        *string `json:"name"`
	Location    *string `json:"location"`
	AccountType *string `json:"accountType"`
}

// PrivilegedUpdateRequest changes an account after presenting its visibility secret.
// A nil Balances leaves the mapping untouched; a non-nil one replaces it.
type PrivilegedUpdateRequest struct {
	Secret      string         `json:"secret" binding:"required"`
	Name        *string        `json:"name"`
	Location    *string        `json:"location"`
	AccountType *string        `json:"accountType"`
	Balances    []BalanceEntry `json:"balances" binding:"omitempty,dive"`
	NewSecret   *string        `json:"newSecret"`
}

// BalanceSummaryRequest carries the secret for a gated balance read.
type BalanceSummaryRequest struct {
	Secret string `json:"secret"`
}

// AccountResponse defines the data returned for an account.
// Amounts are omitted when the account is gated by a secret.
type AccountResponse struct {
	AccountID       string             `json:"accountID"`
	Kind            domain.AccountKind `json:"kind"`
	Name            string             `json:"name"`
	Location        string             `json:"location,omitempty"`
	AccountType     string             `json:"accountType,omitempty"`
	Currencies      []string           `json:"currencies"`
	Balances        []BalanceEntry     `json:"balances,omitempty"`
	HasSecret       bool               `json:"hasSecret"`
	PeriodStartedAt time.Time          `json:"periodStartedAt"`
	CreatedAt       time.Time          `json:"createdAt"`
	CreatedBy       string             `json:"createdBy"`
	LastUpdatedAt   time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy   string             `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	res := AccountResponse{
		AccountID:       acc.AccountID,
		Kind:            acc.Kind,
		Name:            acc.Name,
		Location:        acc.Location,
		AccountType:     acc.AccountType,
		Currencies:      acc.Balances.Currencies(),
		HasSecret:       acc.HasSecret(),
		PeriodStartedAt: acc.PeriodStartedAt,
		CreatedAt:       acc.CreatedAt,
		CreatedBy:       acc.CreatedBy,
		LastUpdatedAt:   acc.LastUpdatedAt,
		LastUpdatedBy:   acc.LastUpdatedBy,
	}
	if !acc.HasSecret() {
		res.Balances = FromBalances(acc.Balances)
	}
	return res
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// ListAccountsResponse wraps the list of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ToDomainEntries converts request entries for domain.NewBalances.
func ToDomainEntries(entries []BalanceEntry) []domain.BalanceEntry {
	out := make([]domain.BalanceEntry, len(entries))
	for i, e := range entries {
		out[i] = domain.BalanceEntry{CurrencyCode: e.CurrencyCode, Amount: e.Amount}
	}
	return out
}

// FromBalances lists a balances mapping in currency order.
func FromBalances(b domain.Balances) []BalanceEntry {
	entries := b.Entries()
	out := make([]BalanceEntry, len(entries))
	for i, e := range entries {
		out[i] = BalanceEntry{CurrencyCode: e.CurrencyCode, Amount: e.Amount}
	}
	return out
}

// BalanceSummaryResponse is the live calculator output for one account.
type BalanceSummaryResponse struct {
	AccountID   string                  `json:"accountID"`
	Kind        domain.AccountKind      `json:"kind"`
	PeriodStart time.Time               `json:"periodStart"`
	Summary     domain.FinancialSummary `json:"summary"`
}
