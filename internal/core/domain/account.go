package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// AccountKind distinguishes the two ledger account variants.
type AccountKind string

const (
	CashDrawer  AccountKind = "CASH_DRAWER"
	BankAccount AccountKind = "BANK_ACCOUNT"
)

// Valid reports whether k is a known account kind.
func (k AccountKind) Valid() bool {
	return k == CashDrawer || k == BankAccount
}

// AccountRef identifies an account together with its kind.
type AccountRef struct {
	Kind AccountKind `json:"kind"`
	ID   string      `json:"id"`
}

func (r AccountRef) String() string {
	return string(r.Kind) + "/" + r.ID
}

// Validate checks that both parts of the reference are present.
func (r AccountRef) Validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: unknown account kind %q", apperrors.ErrValidation, r.Kind)
	}
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: account id is required", apperrors.ErrValidation)
	}
	return nil
}

// BalanceEntry is one currency/amount pair as supplied by callers.
type BalanceEntry struct {
	CurrencyCode string          `json:"currencyCode"`
	Amount       decimal.Decimal `json:"amount"`
}

// Balances maps a currency code to the account's initial amount in that currency.
type Balances map[string]decimal.Decimal

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewBalances builds a Balances map from entries, rejecting blank or duplicate
// currency codes and negative amounts.
func NewBalances(entries []BalanceEntry) (Balances, error) {
	b := make(Balances, len(entries))
	for _, e := range entries {
		code := NormalizeCurrency(e.CurrencyCode)
		if code == "" {
			return nil, fmt.Errorf("%w: currency code is required", apperrors.ErrValidation)
		}
		if _, dup := b[code]; dup {
			return nil, fmt.Errorf("%w: duplicate currency %s", apperrors.ErrValidation, code)
		}
		if e.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: initial amount for %s must not be negative", apperrors.ErrValidation, code)
		}
		if err := checkScale(e.Amount, "initial amount for "+code); err != nil {
			return nil, err
		}
		b[code] = e.Amount
	}
	return b, nil
}

// AmountScale is the number of decimal places the store keeps for an amount.
const AmountScale = 4

func checkScale(d decimal.Decimal, what string) error {
	if d.Exponent() < -AmountScale && !d.Equal(d.Truncate(AmountScale)) {
		return fmt.Errorf("%w: %s has more than %d decimal places", apperrors.ErrValidation, what, AmountScale)
	}
	return nil
}

// Has reports whether the currency is part of the mapping.
func (b Balances) Has(currency string) bool {
	_, ok := b[NormalizeCurrency(currency)]
	return ok
}

// Currencies returns the currency codes in sorted order.
func (b Balances) Currencies() []string {
	codes := make([]string, 0, len(b))
	for c := range b {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Zeroed returns a copy with every amount set to zero and the currency set preserved.
func (b Balances) Zeroed() Balances {
	z := make(Balances, len(b))
	for c := range b {
		z[c] = decimal.Zero
	}
	return z
}

// Clone returns an independent copy.
func (b Balances) Clone() Balances {
	c := make(Balances, len(b))
	for k, v := range b {
		c[k] = v
	}
	return c
}

// IsZero reports whether every amount is zero.
func (b Balances) IsZero() bool {
	for _, v := range b {
		if !v.IsZero() {
			return false
		}
	}
	return true
}

// Entries returns the mapping as a currency-sorted list.
func (b Balances) Entries() []BalanceEntry {
	out := make([]BalanceEntry, 0, len(b))
	for _, c := range b.Currencies() {
		out = append(out, BalanceEntry{CurrencyCode: c, Amount: b[c]})
	}
	return out
}

// Account is a cash drawer or a bank account.
type Account struct {
	AccountID   string      `json:"accountID"`
	Kind        AccountKind `json:"kind"`
	Name        string      `json:"name"`
	Location    string      `json:"location"`    // cash drawers
	AccountType string      `json:"accountType"` // bank accounts, e.g. "courant"
	Balances    Balances    `json:"balances"`
	SecretHash  string      `json:"-"` // bcrypt hash of the visibility secret
	// PeriodStartedAt marks the start of the open balance period on the
	// transaction-date axis. Transactions dated before it belong to a closed period.
	PeriodStartedAt time.Time `json:"periodStartedAt"`
	AuditFields
}

// Ref returns the account's reference.
func (a *Account) Ref() AccountRef {
	return AccountRef{Kind: a.Kind, ID: a.AccountID}
}

// HasSecret reports whether amounts are gated behind a visibility secret.
func (a *Account) HasSecret() bool {
	return a.SecretHash != ""
}
