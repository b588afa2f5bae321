package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
)

// DailyHistoryReader defines read operations for daily balance snapshots
type DailyHistoryReader interface {
	FindDailyHistory(ctx context.Context, accountID string, date time.Time) (*domain.DailyHistoryRecord, error)

	// ListDailyHistory returns records with HistoryDate in [from, to), newest first.
	// Nil bounds are open.
	ListDailyHistory(ctx context.Context, accountID string, from, to *time.Time) ([]domain.DailyHistoryRecord, error)
}

// DailyHistoryWriter defines write operations for daily balance snapshots
type DailyHistoryWriter interface {
	// UpsertDailyHistory writes the record, replacing any record for the same
	// (AccountID, HistoryDate).
	UpsertDailyHistory(ctx context.Context, record domain.DailyHistoryRecord) (*domain.DailyHistoryRecord, error)
}

// DailyHistoryRepositoryFacade combines all daily-history repository interfaces
type DailyHistoryRepositoryFacade interface {
	DailyHistoryReader
	DailyHistoryWriter
}
