package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/apperrors"
	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBalances(t *testing.T) {
	tests := []struct {
		name    string
		entries []domain.BalanceEntry
		want    domain.Balances
		errMsg  string
	}{
		{
			name:    "empty",
			entries: nil,
			want:    domain.Balances{},
		},
		{
			name: "normalizes codes",
			entries: []domain.BalanceEntry{
				{CurrencyCode: " tnd ", Amount: decimal.NewFromInt(1000)},
				{CurrencyCode: "EUR", Amount: decimal.NewFromInt(50)},
			},
			want: domain.Balances{"TND": decimal.NewFromInt(1000), "EUR": decimal.NewFromInt(50)},
		},
		{
			name: "duplicate currency differing only by case",
			entries: []domain.BalanceEntry{
				{CurrencyCode: "TND", Amount: decimal.NewFromInt(1)},
				{CurrencyCode: "tnd", Amount: decimal.NewFromInt(2)},
			},
			errMsg: "duplicate currency TND",
		},
		{
			name:    "blank currency",
			entries: []domain.BalanceEntry{{CurrencyCode: "  ", Amount: decimal.NewFromInt(1)}},
			errMsg:  "currency code is required",
		},
		{
			name:    "negative amount",
			entries: []domain.BalanceEntry{{CurrencyCode: "USD", Amount: decimal.NewFromInt(-1)}},
			errMsg:  "must not be negative",
		},
		{
			name:    "more than four decimal places",
			entries: []domain.BalanceEntry{{CurrencyCode: "TND", Amount: decimal.RequireFromString("0.00001")}},
			errMsg:  "more than 4 decimal places",
		},
		{
			name:    "four decimal places with trailing zero",
			entries: []domain.BalanceEntry{{CurrencyCode: "TND", Amount: decimal.RequireFromString("12.345600")}},
			want:    domain.Balances{"TND": decimal.RequireFromString("12.3456")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.NewBalances(tt.entries)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for code, amount := range tt.want {
				assert.True(t, amount.Equal(got[code]), "currency %s", code)
			}
		})
	}
}

func TestBalances_ZeroedPreservesCurrencies(t *testing.T) {
	b := domain.Balances{"TND": decimal.NewFromInt(1000), "EUR": decimal.NewFromInt(3)}

	z := b.Zeroed()

	assert.Equal(t, []string{"EUR", "TND"}, z.Currencies())
	assert.True(t, z.IsZero())
	assert.False(t, b.IsZero(), "original must not be modified")
}

func TestPeriod_Bounds(t *testing.T) {
	p := domain.Period{Year: 2024, Month: time.December}

	start, end := p.Bounds(time.UTC)

	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), end)
	assert.Equal(t, "2024-12", p.String())
	assert.NoError(t, p.Validate())
	assert.ErrorIs(t, domain.Period{Year: 2024, Month: 13}.Validate(), apperrors.ErrValidation)
}
