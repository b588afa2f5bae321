package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Direction indicates whether money entered (entree) or left (sortie) the account.
type Direction string

const (
	Revenue Direction = "REVENUE"
	Expense Direction = "EXPENSE"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == Revenue || d == Expense
}

// Transaction is a single money movement against one ledger account.
type Transaction struct {
	TransactionID   string          `json:"transactionID"`
	Direction       Direction       `json:"direction"`
	Amount          decimal.Decimal `json:"amount"` // always positive
	CurrencyCode    string          `json:"currencyCode"`
	Source          AccountRef      `json:"source"`
	TransactionDate time.Time       `json:"transactionDate"`
	Category        string          `json:"category"`
	PaymentMethod   string          `json:"paymentMethod"`
	CreatedBy       string          `json:"createdBy"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Validate checks the fields every stored transaction must carry.
func (t *Transaction) Validate() error {
	if !t.Direction.Valid() {
		return fmt.Errorf("%w: unknown direction %q", apperrors.ErrValidation, t.Direction)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if err := checkScale(t.Amount, "amount"); err != nil {
		return err
	}
	if strings.TrimSpace(t.CurrencyCode) == "" {
		return fmt.Errorf("%w: currency is required", apperrors.ErrValidation)
	}
	if err := t.Source.Validate(); err != nil {
		return fmt.Errorf("invalid source: %w", err)
	}
	if t.TransactionDate.IsZero() {
		return fmt.Errorf("%w: transaction date is required", apperrors.ErrValidation)
	}
	return nil
}

// TransactionCursor is a keyset position in a date-descending listing.
type TransactionCursor struct {
	TransactionDate time.Time
	CreatedAt       time.Time
}

// TransactionFilter selects transactions for one account.
type TransactionFilter struct {
	Source       AccountRef
	CurrencyCode string     // optional
	From         *time.Time // inclusive, on TransactionDate
	To           *time.Time // exclusive, on TransactionDate
	After        *TransactionCursor // keyset: strictly older than the cursor
	Limit        int                // 0 means no limit
}

// Matches applies the filter to a single transaction. Limit is not applied.
func (f TransactionFilter) Matches(t Transaction) bool {
	if t.Source != f.Source {
		return false
	}
	if f.CurrencyCode != "" && NormalizeCurrency(t.CurrencyCode) != NormalizeCurrency(f.CurrencyCode) {
		return false
	}
	if f.From != nil && t.TransactionDate.Before(*f.From) {
		return false
	}
	if f.To != nil && !t.TransactionDate.Before(*f.To) {
		return false
	}
	if f.After != nil && !t.OlderThan(*f.After) {
		return false
	}
	return true
}

// OlderThan reports whether t sorts after the cursor in date-descending order.
func (t Transaction) OlderThan(c TransactionCursor) bool {
	if t.TransactionDate.Equal(c.TransactionDate) {
		return t.CreatedAt.Before(c.CreatedAt)
	}
	return t.TransactionDate.Before(c.TransactionDate)
}
