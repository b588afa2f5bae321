package services

import (
	"context"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
)

// DailyHistorySvcFacade takes and reads per-day balance snapshots
type DailyHistorySvcFacade interface {
	// SnapshotAccount writes the record for the account and the calendar day containing date.
	SnapshotAccount(ctx context.Context, ref domain.AccountRef, date time.Time) (*domain.DailyHistoryRecord, error)

	// RunDailySnapshot snapshots every account and reports per-account outcomes.
	RunDailySnapshot(ctx context.Context, date time.Time) (*domain.JobReport, error)

	// ListDailyHistory returns the account's records in [from, to), newest first.
	ListDailyHistory(ctx context.Context, ref domain.AccountRef, from, to *time.Time) ([]domain.DailyHistoryRecord, error)
}
