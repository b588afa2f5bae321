package services

import (
	"context"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
)

// ArchiveSvcFacade runs the monthly archive and reset
type ArchiveSvcFacade interface {
	// ArchiveAccount archives one account for the period and resets it.
	// The reset happens only if the archive was stored. A month that is already
	// closed is recomputed from its stored snapshot without another reset.
	ArchiveAccount(ctx context.Context, ref domain.AccountRef, period domain.Period, userID string) (*domain.ArchiveRecord, error)

	// RunMonthlyArchive archives every account independently and reports per-account outcomes.
	RunMonthlyArchive(ctx context.Context, period domain.Period, userID string) (*domain.JobReport, error)

	// ListArchives returns an account's archives, newest period first.
	ListArchives(ctx context.Context, ref domain.AccountRef) ([]domain.ArchiveRecord, error)
}
