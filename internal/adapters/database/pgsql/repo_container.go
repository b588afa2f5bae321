package pgsql

import (
	"time"

	portsrepo "github.com/SscSPs/caisse_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the PostgreSQL repositories. loc is the ledger's
// time zone, used to read and write calendar-day columns.
func NewRepositoryProvider(dbPool *pgxpool.Pool, loc *time.Location) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:      newPgxAccountRepository(dbPool),
		TransactionRepo:  newPgxTransactionRepository(dbPool),
		ArchiveRepo:      newPgxArchiveRepository(dbPool),
		DailyHistoryRepo: newPgxDailyHistoryRepository(dbPool, loc),
		Locker:           newPgxAccountLocker(dbPool),
	}
}
