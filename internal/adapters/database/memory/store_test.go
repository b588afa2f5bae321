package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/apperrors"
	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/caisse_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var drawerRef = domain.AccountRef{Kind: domain.CashDrawer, ID: "drawer-1"}

func seedAccount(t *testing.T, s *Store) domain.Account {
	t.Helper()
	acc := domain.Account{
		AccountID: drawerRef.ID,
		Kind:      drawerRef.Kind,
		Name:      "Office-1",
		Balances:  domain.Balances{"TND": decimal.NewFromInt(1000)},
	}
	require.NoError(t, s.SaveAccount(context.Background(), acc))
	return acc
}

func TestStore_AccountCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedAccount(t, s)

	err := s.SaveAccount(ctx, domain.Account{AccountID: drawerRef.ID, Kind: drawerRef.Kind})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	// Same id under the other kind is a different account.
	require.NoError(t, s.SaveAccount(ctx, domain.Account{AccountID: drawerRef.ID, Kind: domain.BankAccount, Name: "BIAT"}))

	got, err := s.FindAccountByID(ctx, drawerRef)
	require.NoError(t, err)
	got.Balances["TND"] = decimal.Zero
	again, err := s.FindAccountByID(ctx, drawerRef)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(again.Balances["TND"]), "returned accounts must be copies")

	drawers, err := s.ListAccounts(ctx, domain.CashDrawer)
	require.NoError(t, err)
	assert.Len(t, drawers, 1)
	all, err := s.ListAccounts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.DeleteAccount(ctx, drawerRef))
	_, err = s.FindAccountByID(ctx, drawerRef)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, s.DeleteAccount(ctx, drawerRef), apperrors.ErrNotFound)
	assert.ErrorIs(t, s.UpdateAccount(ctx, domain.Account{AccountID: drawerRef.ID, Kind: drawerRef.Kind}), apperrors.ErrNotFound)
}

func TestStore_ListTransactionsOrderAndRestart(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, d := range []int{2, 5, 2, 9} {
		require.NoError(t, s.SaveTransaction(ctx, domain.Transaction{
			TransactionID:   string(rune('a' + i)),
			Direction:       domain.Revenue,
			Amount:          decimal.NewFromInt(1),
			CurrencyCode:    "TND",
			Source:          drawerRef,
			TransactionDate: base.AddDate(0, 0, d),
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, s.SaveTransaction(ctx, domain.Transaction{
		TransactionID: "other", Source: domain.AccountRef{Kind: domain.BankAccount, ID: "b"},
		TransactionDate: base, CreatedAt: base,
	}))

	seq := s.ListTransactions(ctx, domain.TransactionFilter{Source: drawerRef})
	collect := func() []string {
		var ids []string
		for txn, err := range seq {
			require.NoError(t, err)
			ids = append(ids, txn.TransactionID)
		}
		return ids
	}

	assert.Equal(t, []string{"d", "b", "c", "a"}, collect())
	assert.Equal(t, []string{"d", "b", "c", "a"}, collect(), "sequence must be restartable")

	var limited []string
	for txn, err := range s.ListTransactions(ctx, domain.TransactionFilter{Source: drawerRef, Limit: 2}) {
		require.NoError(t, err)
		limited = append(limited, txn.TransactionID)
	}
	assert.Equal(t, []string{"d", "b"}, limited)

	assert.ErrorIs(t, s.SaveTransaction(ctx, domain.Transaction{TransactionID: "a"}), apperrors.ErrDuplicate)
}

func TestStore_ListTransactionsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, err := range New().ListTransactions(ctx, domain.TransactionFilter{Source: drawerRef}) {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestStore_UpsertArchiveKeepsOneRecord(t *testing.T) {
	ctx := context.Background()
	s := New()
	rec := domain.ArchiveRecord{
		ArchiveID:         "first",
		OriginalAccountID: drawerRef.ID,
		ArchiveYear:       2025,
		ArchiveMonth:      1,
		FinancialSummary:  domain.FinancialSummary{"TND": {Balance: decimal.NewFromInt(1150)}},
	}
	_, err := s.UpsertArchive(ctx, rec)
	require.NoError(t, err)

	rec.ArchiveID = "second"
	rec.FinancialSummary = domain.FinancialSummary{"TND": {Balance: decimal.NewFromInt(150)}}
	stored, err := s.UpsertArchive(ctx, rec)
	require.NoError(t, err)

	assert.Equal(t, "first", stored.ArchiveID)
	list, err := s.ListArchives(ctx, drawerRef.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, decimal.NewFromInt(150).Equal(list[0].FinancialSummary["TND"].Balance))

	_, err = s.FindArchive(ctx, drawerRef.ID, domain.Period{Year: 2025, Month: time.February})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_UpsertArchiveRejectsOtherKind(t *testing.T) {
	ctx := context.Background()
	s := New()
	rec := domain.ArchiveRecord{
		ArchiveID:         "drawer-archive",
		OriginalAccountID: "shared-id",
		AccountKind:       domain.CashDrawer,
		ArchiveYear:       2025,
		ArchiveMonth:      1,
		FinancialSummary:  domain.FinancialSummary{"TND": {Balance: decimal.NewFromInt(1150)}},
	}
	_, err := s.UpsertArchive(ctx, rec)
	require.NoError(t, err)

	rec.ArchiveID = "bank-archive"
	rec.AccountKind = domain.BankAccount
	rec.FinancialSummary = domain.FinancialSummary{"TND": {Balance: decimal.NewFromInt(5)}}
	_, err = s.UpsertArchive(ctx, rec)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	kept, err := s.FindArchive(ctx, "shared-id", domain.Period{Year: 2025, Month: time.January})
	require.NoError(t, err)
	assert.Equal(t, domain.CashDrawer, kept.AccountKind)
	assert.True(t, decimal.NewFromInt(1150).Equal(kept.FinancialSummary["TND"].Balance))
}

func TestStore_DailyHistoryUpsertAndRange(t *testing.T) {
	ctx := context.Background()
	s := New()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := s.UpsertDailyHistory(ctx, domain.DailyHistoryRecord{
			HistoryID:   "h",
			AccountID:   drawerRef.ID,
			HistoryDate: day.AddDate(0, 0, i),
			BalancesEnd: domain.Balances{"TND": decimal.NewFromInt(int64(i))},
		})
		require.NoError(t, err)
	}
	_, err := s.UpsertDailyHistory(ctx, domain.DailyHistoryRecord{
		AccountID:   drawerRef.ID,
		HistoryDate: day,
		BalancesEnd: domain.Balances{"TND": decimal.NewFromInt(42)},
	})
	require.NoError(t, err)

	got, err := s.FindDailyHistory(ctx, drawerRef.ID, day)
	require.NoError(t, err)
	assert.Equal(t, "h", got.HistoryID)
	assert.True(t, decimal.NewFromInt(42).Equal(got.BalancesEnd["TND"]))

	from, to := day.AddDate(0, 0, 1), day.AddDate(0, 0, 3)
	ranged, err := s.ListDailyHistory(ctx, drawerRef.ID, &from, &to)
	require.NoError(t, err)
	require.Len(t, ranged, 2)
	assert.True(t, ranged[0].HistoryDate.After(ranged[1].HistoryDate))
}

func TestStore_WithAccountLockSerializes(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedAccount(t, s)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithAccountLock(ctx, drawerRef, func(ctx context.Context, account *domain.Account, tx portsrepo.LedgerTx) error {
				account.Balances["TND"] = account.Balances["TND"].Add(decimal.NewFromInt(1))
				return tx.UpdateAccount(ctx, *account)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.FindAccountByID(ctx, drawerRef)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1020).Equal(got.Balances["TND"]), "got %s", got.Balances["TND"])
}

func TestStore_WithAccountLockErrors(t *testing.T) {
	ctx := context.Background()
	s := New()

	err := s.WithAccountLock(ctx, drawerRef, func(context.Context, *domain.Account, portsrepo.LedgerTx) error {
		t.Fatal("fn must not run for a missing account")
		return nil
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	seedAccount(t, s)
	boom := errors.New("boom")
	err = s.WithAccountLock(ctx, drawerRef, func(_ context.Context, account *domain.Account, _ portsrepo.LedgerTx) error {
		account.Name = "changed"
		return boom
	})
	assert.ErrorIs(t, err, boom)
	got, _ := s.FindAccountByID(ctx, drawerRef)
	assert.Equal(t, "Office-1", got.Name)
}
