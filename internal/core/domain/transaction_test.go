package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/apperrors"
	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_Validate(t *testing.T) {
	now := time.Now()
	source := domain.AccountRef{Kind: domain.CashDrawer, ID: "drawer_1"}

	tests := []struct {
		name    string
		tx      domain.Transaction
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid revenue",
			tx: domain.Transaction{
				Direction:       domain.Revenue,
				Amount:          decimal.NewFromInt(200),
				CurrencyCode:    "TND",
				Source:          source,
				TransactionDate: now,
			},
		},
		{
			name: "zero amount",
			tx: domain.Transaction{
				Direction:       domain.Expense,
				Amount:          decimal.Zero,
				CurrencyCode:    "TND",
				Source:          source,
				TransactionDate: now,
			},
			wantErr: true,
			errMsg:  "amount must be positive",
		},
		{
			name: "negative amount",
			tx: domain.Transaction{
				Direction:       domain.Expense,
				Amount:          decimal.NewFromInt(-5),
				CurrencyCode:    "TND",
				Source:          source,
				TransactionDate: now,
			},
			wantErr: true,
			errMsg:  "amount must be positive",
		},
		{
			name: "amount below store precision",
			tx: domain.Transaction{
				Direction:       domain.Revenue,
				Amount:          decimal.RequireFromString("0.00001"),
				CurrencyCode:    "TND",
				Source:          source,
				TransactionDate: now,
			},
			wantErr: true,
			errMsg:  "more than 4 decimal places",
		},
		{
			name: "millimes at full precision",
			tx: domain.Transaction{
				Direction:       domain.Expense,
				Amount:          decimal.RequireFromString("0.0005"),
				CurrencyCode:    "TND",
				Source:          source,
				TransactionDate: now,
			},
		},
		{
			name: "missing currency",
			tx: domain.Transaction{
				Direction:       domain.Revenue,
				Amount:          decimal.NewFromInt(1),
				Source:          source,
				TransactionDate: now,
			},
			wantErr: true,
			errMsg:  "currency is required",
		},
		{
			name: "missing source id",
			tx: domain.Transaction{
				Direction:       domain.Revenue,
				Amount:          decimal.NewFromInt(1),
				CurrencyCode:    "EUR",
				Source:          domain.AccountRef{Kind: domain.BankAccount},
				TransactionDate: now,
			},
			wantErr: true,
			errMsg:  "account id is required",
		},
		{
			name: "missing source kind",
			tx: domain.Transaction{
				Direction:       domain.Revenue,
				Amount:          decimal.NewFromInt(1),
				CurrencyCode:    "EUR",
				Source:          domain.AccountRef{ID: "x"},
				TransactionDate: now,
			},
			wantErr: true,
			errMsg:  "unknown account kind",
		},
		{
			name: "unknown direction",
			tx: domain.Transaction{
				Direction:       "TRANSFER",
				Amount:          decimal.NewFromInt(1),
				CurrencyCode:    "EUR",
				Source:          source,
				TransactionDate: now,
			},
			wantErr: true,
			errMsg:  "unknown direction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransactionFilter_Matches(t *testing.T) {
	source := domain.AccountRef{Kind: domain.CashDrawer, ID: "drawer_1"}
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	next := day.AddDate(0, 0, 1)
	txn := domain.Transaction{
		Source:          source,
		CurrencyCode:    "TND",
		TransactionDate: day.Add(9 * time.Hour),
		CreatedAt:       day.Add(9 * time.Hour),
	}

	assert.True(t, domain.TransactionFilter{Source: source}.Matches(txn))
	assert.True(t, domain.TransactionFilter{Source: source, CurrencyCode: "tnd"}.Matches(txn))
	assert.False(t, domain.TransactionFilter{Source: source, CurrencyCode: "EUR"}.Matches(txn))
	assert.True(t, domain.TransactionFilter{Source: source, From: &day, To: &next}.Matches(txn))
	assert.False(t, domain.TransactionFilter{Source: source, From: &next}.Matches(txn))
	assert.False(t, domain.TransactionFilter{Source: source, To: &day}.Matches(txn))
	assert.False(t, domain.TransactionFilter{Source: domain.AccountRef{Kind: domain.BankAccount, ID: "drawer_1"}}.Matches(txn))

	cursor := domain.TransactionCursor{TransactionDate: txn.TransactionDate, CreatedAt: txn.CreatedAt}
	assert.False(t, domain.TransactionFilter{Source: source, After: &cursor}.Matches(txn), "cursor row itself is excluded")
	cursor.CreatedAt = cursor.CreatedAt.Add(time.Second)
	assert.True(t, domain.TransactionFilter{Source: source, After: &cursor}.Matches(txn))
}
