package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/apperrors"
	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/caisse_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/caisse_ledger/internal/core/ports/services"
	"github.com/SscSPs/caisse_ledger/internal/events"
	"github.com/SscSPs/caisse_ledger/internal/jobs"
	"github.com/google/uuid"
)

// dailyHistoryService implements the DailyHistorySvcFacade interface
type dailyHistoryService struct {
	BaseService
	accountRepo portsrepo.AccountReader
	txnRepo     portsrepo.TransactionReader
	historyRepo portsrepo.DailyHistoryRepositoryFacade
	runner      *jobs.Runner
}

// NewDailyHistoryService creates the daily snapshot service. A nil runner uses jobs.NewRunner defaults.
func NewDailyHistoryService(
	accountRepo portsrepo.AccountReader,
	txnRepo portsrepo.TransactionReader,
	historyRepo portsrepo.DailyHistoryRepositoryFacade,
	runner *jobs.Runner,
	options ...ServiceOption,
) portssvc.DailyHistorySvcFacade {
	if runner == nil {
		runner = jobs.NewRunner()
	}
	return &dailyHistoryService{
		BaseService: newBaseService(options...),
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		historyRepo: historyRepo,
		runner:      runner,
	}
}

var _ portssvc.DailyHistorySvcFacade = (*dailyHistoryService)(nil)

func (s *dailyHistoryService) SnapshotAccount(ctx context.Context, ref domain.AccountRef, date time.Time) (*domain.DailyHistoryRecord, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	day := domain.StartOfDay(date, s.Location())
	next := day.AddDate(0, 0, 1)

	account, err := s.accountRepo.FindAccountByID(ctx, ref)
	if err != nil {
		return nil, err
	}

	live, err := liveAccumulator(ctx, s.txnRepo, account)
	if err != nil {
		return nil, err
	}
	dayAcc, err := periodAccumulator(ctx, s.txnRepo, account, day, next)
	if err != nil {
		return nil, err
	}

	start := account.Balances.Clone()
	prev, err := s.historyRepo.FindDailyHistory(ctx, account.AccountID, day.AddDate(0, 0, -1))
	switch {
	case err == nil:
		start = prev.BalancesEnd.Clone()
	case errors.Is(err, apperrors.ErrNotFound):
	default:
		return nil, fmt.Errorf("failed to load previous day for %s: %w", ref, err)
	}

	record := domain.DailyHistoryRecord{
		HistoryID:     uuid.NewString(),
		AccountID:     account.AccountID,
		AccountKind:   account.Kind,
		HistoryDate:   day,
		BalancesStart: start,
		BalancesEnd:   live.Summary().Balances(),
		DaySummary:    dayAcc.DaySummary(),
		RecordedAt:    s.Now(),
	}
	stored, err := s.historyRepo.UpsertDailyHistory(ctx, record)
	if err != nil {
		s.LogError(ctx, err, "Failed to store daily history", accountAttr(ref))
		return nil, err
	}

	s.LogDebug(ctx, "Daily history recorded", accountAttr(ref), slog.Time("date", day),
		slog.Int("transactions", record.DaySummary.TransactionCount))
	s.Publish(ctx, events.New(events.HistorySnapshotted, ref, stored))
	return stored, nil
}

func (s *dailyHistoryService) RunDailySnapshot(ctx context.Context, date time.Time) (*domain.JobReport, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, "")
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts for daily snapshot")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	refs := make([]domain.AccountRef, len(accounts))
	for i := range accounts {
		refs[i] = accounts[i].Ref()
	}
	s.LogInfo(ctx, "Starting daily snapshot", slog.Time("date", domain.StartOfDay(date, s.Location())), slog.Int("accounts", len(refs)))

	return s.runner.Run(ctx, jobs.DailySnapshotJob, refs, func(ctx context.Context, ref domain.AccountRef) error {
		_, err := s.SnapshotAccount(ctx, ref, date)
		return err
	}), nil
}

func (s *dailyHistoryService) ListDailyHistory(ctx context.Context, ref domain.AccountRef, from, to *time.Time) ([]domain.DailyHistoryRecord, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, fmt.Errorf("%w: from must be before to", apperrors.ErrValidation)
	}
	records, err := s.historyRepo.ListDailyHistory(ctx, ref.ID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to list daily history", accountAttr(ref))
		return nil, err
	}
	if records == nil {
		return []domain.DailyHistoryRecord{}, nil
	}
	return records, nil
}
