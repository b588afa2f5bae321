package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/caisse_ledger/internal/apperrors"
	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/caisse_ledger/internal/core/ports/services"
	"github.com/SscSPs/caisse_ledger/internal/core/services"
	"github.com/SscSPs/caisse_ledger/internal/dto"
	"github.com/SscSPs/caisse_ledger/internal/jobs"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
)

type ArchiveServiceTestSuite struct {
	suite.Suite
	store    *memory.Store
	locker   *flakyLocker
	accounts portssvc.AccountSvcFacade
	clock    *fakeClock
}

func (suite *ArchiveServiceTestSuite) SetupTest() {
	suite.store = memory.New()
	suite.locker = newFlakyLocker(suite.store, apperrors.Storage("upsert archive", errors.New("connection reset")))
	suite.clock = newFakeClock(time.Date(2025, time.January, 31, 22, 0, 0, 0, time.UTC))
	suite.accounts = services.NewAccountService(suite.store, suite.store, suite.store, services.WithClock(suite.clock.Now))
}

func (suite *ArchiveServiceTestSuite) archiveService(maxAttempts int) portssvc.ArchiveSvcFacade {
	runner := jobs.NewRunner(
		jobs.WithConcurrency(2),
		jobs.WithRetryPolicy(jobs.RetryPolicy{MaxAttempts: maxAttempts}),
	)
	return services.NewArchiveService(suite.store, suite.store, suite.locker, runner, services.WithClock(suite.clock.Now))
}

func (suite *ArchiveServiceTestSuite) drawer(name string) *domain.Account {
	account, err := suite.accounts.CreateAccount(context.Background(), domain.CashDrawer,
		dto.CreateAccountRequest{Name: name, Balances: tnd(1000)}, "admin")
	suite.Require().NoError(err)
	return account
}

func (suite *ArchiveServiceTestSuite) assertUntouched(before *domain.Account) {
	after, err := suite.store.FindAccountByID(context.Background(), before.Ref())
	suite.Require().NoError(err)
	suite.True(decimal.NewFromInt(1000).Equal(after.Balances["TND"]), "balances must survive a failed archive")
	suite.True(before.PeriodStartedAt.Equal(after.PeriodStartedAt))
	_, err = suite.store.FindArchive(context.Background(), before.AccountID, january2025)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ArchiveServiceTestSuite) TestArchiveAccount_NoResetWhenArchiveFails() {
	office := suite.drawer("Office-1")
	suite.locker.failFor(office.AccountID, 1)

	_, err := suite.archiveService(1).ArchiveAccount(context.Background(), office.Ref(), january2025, "admin")

	suite.ErrorIs(err, apperrors.ErrStorage)
	suite.assertUntouched(office)
}

func (suite *ArchiveServiceTestSuite) TestRunMonthlyArchive_PartialSuccess() {
	ok := suite.drawer("Office-1")
	broken := suite.drawer("Office-2")
	suite.locker.err = errors.New("archive table missing")
	suite.locker.failFor(broken.AccountID, 5)

	report, err := suite.archiveService(3).RunMonthlyArchive(context.Background(), january2025, "cron")

	suite.Require().NoError(err)
	suite.Equal(jobs.MonthlyArchiveJob, report.Job)
	suite.Len(report.Results, 2)
	suite.Equal(1, report.Failed())

	suite.Equal(domain.OutcomeSuccess, report.Results[ok.AccountID].Status)
	failed := report.Results[broken.AccountID]
	suite.Equal(domain.OutcomeError, failed.Status)
	suite.Contains(failed.Error, "archive table missing")
	suite.Equal(1, failed.Attempts, "non-storage errors are not retried")
	suite.Equal(1, suite.locker.callCount(broken.AccountID))

	suite.assertUntouched(broken)
	reset, err := suite.store.FindAccountByID(context.Background(), ok.Ref())
	suite.Require().NoError(err)
	suite.True(reset.Balances.IsZero())
}

func (suite *ArchiveServiceTestSuite) TestRunMonthlyArchive_RetriesStorageErrors() {
	office := suite.drawer("Office-1")
	suite.locker.failFor(office.AccountID, 1)

	report, err := suite.archiveService(2).RunMonthlyArchive(context.Background(), january2025, "cron")

	suite.Require().NoError(err)
	outcome := report.Results[office.AccountID]
	suite.Equal(domain.OutcomeSuccess, outcome.Status)
	suite.Equal(2, outcome.Attempts)
	suite.Equal(2, suite.locker.callCount(office.AccountID))

	record, err := suite.store.FindArchive(context.Background(), office.AccountID, january2025)
	suite.Require().NoError(err)
	suite.True(decimal.NewFromInt(1000).Equal(record.FinancialSummary["TND"].Balance))
}

func (suite *ArchiveServiceTestSuite) TestRunMonthlyArchive_CancelledContext() {
	office := suite.drawer("Office-1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := suite.archiveService(1).RunMonthlyArchive(ctx, january2025, "cron")

	suite.Require().NoError(err)
	suite.Equal(domain.OutcomeError, report.Results[office.AccountID].Status)
	suite.assertUntouched(office)
}

func (suite *ArchiveServiceTestSuite) TestRunMonthlyArchive_InvalidPeriod() {
	_, err := suite.archiveService(1).RunMonthlyArchive(context.Background(), domain.Period{Year: 2025}, "cron")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ArchiveServiceTestSuite) TestArchiveAccount_TransactionsAfterCutoffStayLive() {
	ctx := context.Background()
	office := suite.drawer("Office-1")
	txns := services.NewTransactionService(suite.store, suite.store, services.WithClock(suite.clock.Now))
	february := time.Date(2025, time.February, 1, 8, 0, 0, 0, time.UTC)

	_, err := suite.archiveService(1).ArchiveAccount(ctx, office.Ref(), january2025, "admin")
	suite.Require().NoError(err)
	_, err = txns.RecordTransaction(ctx, dto.RecordTransactionRequest{
		Direction: domain.Revenue, Amount: decimal.NewFromInt(7), CurrencyCode: "TND",
		SourceKind: domain.CashDrawer, SourceID: office.AccountID, TransactionDate: &february,
	}, "cashier")
	suite.Require().NoError(err)

	summary, err := suite.accounts.GetBalanceSummary(ctx, office.Ref(), "")
	suite.Require().NoError(err)
	suite.True(decimal.NewFromInt(7).Equal(summary["TND"].Balance))
}

func (suite *ArchiveServiceTestSuite) TestArchiveAccount_EarlyFebruaryTransactionStaysLive() {
	ctx := context.Background()
	office := suite.drawer("Office-1")
	txns := services.NewTransactionService(suite.store, suite.store, services.WithClock(suite.clock.Now))

	suite.clock.set(time.Date(2025, time.February, 1, 8, 0, 0, 0, time.UTC))
	_, err := txns.RecordTransaction(ctx, dto.RecordTransactionRequest{
		Direction: domain.Revenue, Amount: decimal.NewFromInt(100), CurrencyCode: "TND",
		SourceKind: domain.CashDrawer, SourceID: office.AccountID,
	}, "cashier")
	suite.Require().NoError(err)

	suite.clock.set(time.Date(2025, time.February, 1, 9, 0, 0, 0, time.UTC))
	record, err := suite.archiveService(1).ArchiveAccount(ctx, office.Ref(), january2025, "cron")
	suite.Require().NoError(err)

	tndSummary := record.FinancialSummary["TND"]
	suite.True(tndSummary.Revenue.IsZero(), "a February transaction is not January revenue")
	suite.True(decimal.NewFromInt(1000).Equal(tndSummary.Balance))
	suite.True(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC).Equal(record.PeriodEnd))
	suite.True(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC).Equal(record.PeriodStart))

	summary, err := suite.accounts.GetBalanceSummary(ctx, office.Ref(), "")
	suite.Require().NoError(err)
	suite.True(decimal.NewFromInt(100).Equal(summary["TND"].Balance), "the February transaction stays in the live balance")
}

func (suite *ArchiveServiceTestSuite) TestRecordTransaction_RejectsClosedPeriod() {
	ctx := context.Background()
	office := suite.drawer("Office-1")
	txns := services.NewTransactionService(suite.store, suite.store, services.WithClock(suite.clock.Now))
	_, err := suite.archiveService(1).ArchiveAccount(ctx, office.Ref(), january2025, "admin")
	suite.Require().NoError(err)

	backdated := time.Date(2025, time.January, 20, 10, 0, 0, 0, time.UTC)
	_, err = txns.RecordTransaction(ctx, dto.RecordTransactionRequest{
		Direction: domain.Expense, Amount: decimal.NewFromInt(3), CurrencyCode: "TND",
		SourceKind: domain.CashDrawer, SourceID: office.AccountID, TransactionDate: &backdated,
	}, "cashier")

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "is closed before")
}

func (suite *ArchiveServiceTestSuite) TestArchiveAccount_RerunPicksUpLateTransactions() {
	ctx := context.Background()
	office := suite.drawer("Office-1")
	svc := suite.archiveService(1)
	first, err := svc.ArchiveAccount(ctx, office.Ref(), january2025, "cron")
	suite.Require().NoError(err)

	// Saved past the closed-period check while the first run held the lock.
	suite.Require().NoError(suite.store.SaveTransaction(ctx, domain.Transaction{
		TransactionID: "late-1", Direction: domain.Revenue, Amount: decimal.NewFromInt(40), CurrencyCode: "TND",
		Source: office.Ref(), TransactionDate: time.Date(2025, time.January, 30, 12, 0, 0, 0, time.UTC),
		CreatedAt: suite.clock.Now(),
	}))

	again, err := svc.ArchiveAccount(ctx, office.Ref(), january2025, "admin")
	suite.Require().NoError(err)

	suite.Equal(first.ArchiveID, again.ArchiveID)
	suite.Equal("admin", again.ArchivedBy)
	suite.True(first.PeriodEnd.Equal(again.PeriodEnd))
	tndSummary := again.FinancialSummary["TND"]
	suite.True(decimal.NewFromInt(1000).Equal(tndSummary.InitialAmount))
	suite.True(decimal.NewFromInt(40).Equal(tndSummary.Revenue))
	suite.True(decimal.NewFromInt(1040).Equal(tndSummary.Balance))
}

func (suite *ArchiveServiceTestSuite) TestArchiveAccount_ConcurrentRunsArchiveOnce() {
	ctx := context.Background()
	office := suite.drawer("Office-1")
	txns := services.NewTransactionService(suite.store, suite.store, services.WithClock(suite.clock.Now))
	for _, req := range []dto.RecordTransactionRequest{
		{Direction: domain.Revenue, Amount: decimal.NewFromInt(200)},
		{Direction: domain.Expense, Amount: decimal.NewFromInt(50)},
	} {
		req.CurrencyCode, req.SourceKind, req.SourceID = "TND", domain.CashDrawer, office.AccountID
		_, err := txns.RecordTransaction(ctx, req, "cashier")
		suite.Require().NoError(err)
	}

	svc := suite.archiveService(1)
	results := make([]*domain.ArchiveRecord, 2)
	g, gctx := errgroup.WithContext(ctx)
	for i := range results {
		g.Go(func() error {
			record, err := svc.ArchiveAccount(gctx, office.Ref(), january2025, "cron")
			results[i] = record
			return err
		})
	}
	suite.Require().NoError(g.Wait())

	archives, err := suite.store.ListArchives(ctx, office.AccountID)
	suite.Require().NoError(err)
	suite.Require().Len(archives, 1)
	for _, record := range append(results, &archives[0]) {
		tndSummary := record.FinancialSummary["TND"]
		suite.Equal(archives[0].ArchiveID, record.ArchiveID)
		suite.True(decimal.NewFromInt(1000).Equal(record.BalancesSnapshot["TND"]), "snapshot holds the pre-reset amounts")
		suite.True(decimal.NewFromInt(1000).Equal(tndSummary.InitialAmount))
		suite.True(decimal.NewFromInt(1150).Equal(tndSummary.Balance))
	}

	after, err := suite.store.FindAccountByID(ctx, office.Ref())
	suite.Require().NoError(err)
	suite.True(after.Balances.IsZero())
}

func (suite *ArchiveServiceTestSuite) TestArchiveAccount_MonthBeforeAccountOpened() {
	ctx := context.Background()
	office := suite.drawer("Office-1")
	december := domain.Period{Year: 2024, Month: time.December}

	_, err := suite.archiveService(1).ArchiveAccount(ctx, office.Ref(), december, "admin")
	suite.ErrorIs(err, apperrors.ErrValidation)

	report, err := suite.archiveService(1).RunMonthlyArchive(ctx, december, "cron")
	suite.Require().NoError(err)
	suite.Empty(report.Results, "accounts opened after the month are skipped")
	suite.assertUntouched(office)
}

func TestArchiveServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ArchiveServiceTestSuite))
}
