package pgsql

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/apperrors"
	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError("noop", nil))

	err := mapError("find", pgx.ErrNoRows)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.False(t, apperrors.IsRetryable(err))

	err = mapError("insert", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505", ConstraintName: "cash_drawers_pkey"}))
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.Contains(t, err.Error(), "cash_drawers_pkey")

	err = mapError("query", errors.New("connection reset by peer"))
	assert.ErrorIs(t, err, apperrors.ErrStorage)
	assert.True(t, apperrors.IsRetryable(err))
}

func TestTableFor(t *testing.T) {
	drawers, err := tableFor(domain.CashDrawer)
	require.NoError(t, err)
	assert.Equal(t, "cash_drawers", drawers.name)
	assert.Contains(t, drawers.selectColumns(), "location")

	banks, err := tableFor(domain.BankAccount)
	require.NoError(t, err)
	assert.Equal(t, "bank_accounts", banks.name)
	assert.Contains(t, banks.selectColumns(), "account_type")

	_, err = tableFor("SAFE")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestBuildListQuery(t *testing.T) {
	ref := domain.AccountRef{Kind: domain.CashDrawer, ID: "d1"}

	t.Run("minimal", func(t *testing.T) {
		query, args := buildListQuery(domain.TransactionFilter{Source: ref})
		assert.Equal(t, []any{"CASH_DRAWER", "d1"}, args)
		assert.True(t, strings.HasSuffix(query, "ORDER BY transaction_date DESC, created_at DESC"))
		assert.NotContains(t, query, "LIMIT")
	})

	t.Run("every clause", func(t *testing.T) {
		from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, 0)
		cursor := &domain.TransactionCursor{TransactionDate: from.AddDate(0, 0, 10), CreatedAt: from.AddDate(0, 0, 10)}

		query, args := buildListQuery(domain.TransactionFilter{
			Source:       ref,
			CurrencyCode: " tnd",
			From:         &from,
			To:           &to,
			After:        cursor,
			Limit:        50,
		})

		assert.Contains(t, query, "currency_code = $3")
		assert.Contains(t, query, "transaction_date >= $4")
		assert.Contains(t, query, "transaction_date < $5")
		assert.Contains(t, query, "(transaction_date, created_at) < ($6, $7)")
		assert.Contains(t, query, "LIMIT $8")
		require.Len(t, args, 8)
		assert.Equal(t, "TND", args[2])
		assert.Equal(t, 50, args[7])
	})
}
