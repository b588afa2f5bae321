package pgsql

import (
	"context"
	"log/slog"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/caisse_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxLedgerTx binds the repositories to one database transaction.
type pgxLedgerTx struct {
	*PgxAccountRepository
	*PgxTransactionRepository
	*PgxArchiveRepository
}

var _ portsrepo.LedgerTx = (*pgxLedgerTx)(nil)

// PgxAccountLocker implements the per-account critical section with a row lock
// (SELECT ... FOR UPDATE) held for the duration of a database transaction.
type PgxAccountLocker struct {
	BaseRepository
}

func newPgxAccountLocker(pool *pgxpool.Pool) *PgxAccountLocker {
	return &PgxAccountLocker{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountLocker = (*PgxAccountLocker)(nil)

// WithAccountLock runs fn while holding the account's row lock. Writes made
// through tx commit together when fn returns nil and roll back otherwise.
func (l *PgxAccountLocker) WithAccountLock(ctx context.Context, ref domain.AccountRef, fn func(ctx context.Context, account *domain.Account, tx portsrepo.LedgerTx) error) error {
	tx, err := l.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := l.Rollback(context.WithoutCancel(ctx), tx); rbErr != nil {
			slog.Default().WarnContext(ctx, "Rollback failed", slog.String("account", ref.String()), slog.String("error", rbErr.Error()))
		}
	}()

	accounts := newPgxAccountRepository(tx)
	account, err := accounts.findForUpdate(ctx, ref)
	if err != nil {
		return err
	}
	ledgerTx := &pgxLedgerTx{
		PgxAccountRepository:     accounts,
		PgxTransactionRepository: newPgxTransactionRepository(tx),
		PgxArchiveRepository:     newPgxArchiveRepository(tx),
	}
	if err := fn(ctx, account, ledgerTx); err != nil {
		return err
	}
	return l.Commit(ctx, tx)
}
