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

// archiveService implements the ArchiveSvcFacade interface
type archiveService struct {
	BaseService
	accountRepo portsrepo.AccountReader
	archiveRepo portsrepo.ArchiveReader
	locker      portsrepo.AccountLocker
	runner      *jobs.Runner
}

// NewArchiveService creates the monthly archive service. A nil runner uses jobs.NewRunner defaults.
func NewArchiveService(
	accountRepo portsrepo.AccountReader,
	archiveRepo portsrepo.ArchiveReader,
	locker portsrepo.AccountLocker,
	runner *jobs.Runner,
	options ...ServiceOption,
) portssvc.ArchiveSvcFacade {
	if runner == nil {
		runner = jobs.NewRunner()
	}
	return &archiveService{
		BaseService: newBaseService(options...),
		accountRepo: accountRepo,
		archiveRepo: archiveRepo,
		locker:      locker,
		runner:      runner,
	}
}

var _ portssvc.ArchiveSvcFacade = (*archiveService)(nil)

// ArchiveAccount closes the account's open period at the end of the month (or now,
// when the month has not ended yet), stores the summary of the transactions dated
// in that window and resets the account. When the month is already closed, the
// stored archive is recomputed from its frozen snapshot and the account is left alone.
func (s *archiveService) ArchiveAccount(ctx context.Context, ref domain.AccountRef, period domain.Period, userID string) (*domain.ArchiveRecord, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}
	_, end := period.Bounds(s.Location())

	var (
		stored *domain.ArchiveRecord
		reset  bool
	)
	err := s.locker.WithAccountLock(ctx, ref, func(ctx context.Context, account *domain.Account, tx portsrepo.LedgerTx) error {
		existing, err := tx.FindArchive(ctx, account.AccountID, period)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to load archive for %s: %w", ref, err)
		}
		if existing != nil && existing.AccountKind == account.Kind && !account.PeriodStartedAt.Before(existing.PeriodEnd) {
			stored, err = s.recomputeArchive(ctx, tx, *existing, userID)
			return err
		}

		closeAt := s.Now()
		if end.Before(closeAt) {
			closeAt = end
		}
		if !account.PeriodStartedAt.Before(closeAt) {
			return fmt.Errorf("%w: %s has no open period before %s (period started %s)",
				apperrors.ErrValidation, ref, closeAt.Format(time.RFC3339), account.PeriodStartedAt.Format(time.RFC3339))
		}

		acc, err := periodAccumulator(ctx, tx, account, account.PeriodStartedAt, closeAt)
		if err != nil {
			return err
		}
		record := domain.ArchiveRecord{
			ArchiveID:         uuid.NewString(),
			OriginalAccountID: account.AccountID,
			AccountKind:       account.Kind,
			Name:              account.Name,
			Location:          account.Location,
			AccountType:       account.AccountType,
			BalancesSnapshot:  account.Balances.Clone(),
			FinancialSummary:  acc.Summary(),
			ArchiveMonth:      int(period.Month),
			ArchiveYear:       period.Year,
			PeriodStart:       account.PeriodStartedAt,
			PeriodEnd:         closeAt,
			ArchivedAt:        s.Now(),
			ArchivedBy:        userID,
		}
		saved, err := tx.UpsertArchive(ctx, record)
		if err != nil {
			return fmt.Errorf("failed to store archive for %s: %w", ref, err)
		}

		// Transactions dated from closeAt on belong to the next period.
		if err := resetLocked(ctx, tx, account, userID, closeAt, s.Now()); err != nil {
			return err
		}
		stored = saved
		reset = true
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to archive account", accountAttr(ref), slog.String("period", period.String()))
		}
		return nil, err
	}

	s.Publish(ctx, events.New(events.AccountArchived, ref, stored))
	if !reset {
		s.LogInfo(ctx, "Archive recomputed from its frozen snapshot", accountAttr(ref), slog.String("period", period.String()))
		return stored, nil
	}
	s.LogInfo(ctx, "Account archived and reset", accountAttr(ref), slog.String("period", period.String()))
	s.Publish(ctx, events.New(events.AccountReset, ref, nil))
	return stored, nil
}

// recomputeArchive rebuilds a stored archive's summary over its own window and
// initial amounts, picking up transactions that arrived after it was taken.
func (s *archiveService) recomputeArchive(ctx context.Context, tx portsrepo.LedgerTx, existing domain.ArchiveRecord, userID string) (*domain.ArchiveRecord, error) {
	ref := domain.AccountRef{Kind: existing.AccountKind, ID: existing.OriginalAccountID}
	acc, err := windowAccumulator(ctx, tx, ref, existing.BalancesSnapshot, existing.PeriodStart, existing.PeriodEnd)
	if err != nil {
		return nil, err
	}
	existing.FinancialSummary = acc.Summary()
	existing.ArchivedAt = s.Now()
	existing.ArchivedBy = userID
	saved, err := tx.UpsertArchive(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("failed to store archive for %s: %w", ref, err)
	}
	return saved, nil
}

func (s *archiveService) RunMonthlyArchive(ctx context.Context, period domain.Period, userID string) (*domain.JobReport, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, "")
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts for monthly archive")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	// Accounts opened after the month have nothing to archive for it.
	_, end := period.Bounds(s.Location())
	refs := make([]domain.AccountRef, 0, len(accounts))
	for i := range accounts {
		if !accounts[i].CreatedAt.Before(end) {
			continue
		}
		refs = append(refs, accounts[i].Ref())
	}
	s.LogInfo(ctx, "Starting monthly archive", slog.String("period", period.String()),
		slog.Int("accounts", len(refs)), slog.Int("skipped", len(accounts)-len(refs)))

	report := s.runner.Run(ctx, jobs.MonthlyArchiveJob, refs, func(ctx context.Context, ref domain.AccountRef) error {
		_, err := s.ArchiveAccount(ctx, ref, period, userID)
		return err
	})
	return report, nil
}

func (s *archiveService) ListArchives(ctx context.Context, ref domain.AccountRef) ([]domain.ArchiveRecord, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	// Archives outlive their account, so a deleted account still lists them.
	archives, err := s.archiveRepo.ListArchives(ctx, ref.ID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list archives", accountAttr(ref))
		return nil, err
	}
	if archives == nil {
		return []domain.ArchiveRecord{}, nil
	}
	return archives, nil
}
