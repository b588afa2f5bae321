package repositories

import (
	"context"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
)

// ArchiveReader defines read operations for monthly archives
type ArchiveReader interface {
	FindArchive(ctx context.Context, accountID string, period domain.Period) (*domain.ArchiveRecord, error)
	ListArchives(ctx context.Context, accountID string) ([]domain.ArchiveRecord, error)
}

// ArchiveWriter defines write operations for monthly archives
type ArchiveWriter interface {
	// UpsertArchive inserts the record or overwrites the one stored under
	// (OriginalAccountID, ArchiveMonth, ArchiveYear). The stored ArchiveID is kept.
	UpsertArchive(ctx context.Context, record domain.ArchiveRecord) (*domain.ArchiveRecord, error)
}

// ArchiveRepositoryFacade combines all archive-related repository interfaces
type ArchiveRepositoryFacade interface {
	ArchiveReader
	ArchiveWriter
}
