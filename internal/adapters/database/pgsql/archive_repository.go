package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/caisse_ledger/internal/apperrors"
	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/caisse_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/caisse_ledger/internal/models"
	"github.com/SscSPs/caisse_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const archiveColumns = `archive_id, original_account_id, account_kind, name, location, account_type, balances_snapshot, financial_summary, archive_month, archive_year, period_start, period_end, archived_at, archived_by`

type PgxArchiveRepository struct {
	db querier
}

func newPgxArchiveRepository(db querier) *PgxArchiveRepository {
	return &PgxArchiveRepository{db: db}
}

var _ portsrepo.ArchiveRepositoryFacade = (*PgxArchiveRepository)(nil)

func scanArchive(row pgx.Row) (models.AccountArchive, error) {
	var m models.AccountArchive
	err := row.Scan(
		&m.ArchiveID,
		&m.OriginalAccountID,
		&m.AccountKind,
		&m.Name,
		&m.Location,
		&m.AccountType,
		&m.BalancesSnapshot,
		&m.FinancialSummary,
		&m.ArchiveMonth,
		&m.ArchiveYear,
		&m.PeriodStart,
		&m.PeriodEnd,
		&m.ArchivedAt,
		&m.ArchivedBy,
	)
	return m, err
}

// UpsertArchive stores the record, replacing any archive of the same account and
// month while keeping that archive's id. An existing archive filed under the other
// account kind is left untouched and reported as ErrConflict.
func (r *PgxArchiveRepository) UpsertArchive(ctx context.Context, record domain.ArchiveRecord) (*domain.ArchiveRecord, error) {
	m := mapping.ToModelArchive(record)
	query := `
		INSERT INTO account_archives (` + archiveColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (original_account_id, archive_month, archive_year) DO UPDATE
		SET name = EXCLUDED.name,
		    location = EXCLUDED.location,
		    account_type = EXCLUDED.account_type,
		    balances_snapshot = EXCLUDED.balances_snapshot,
		    financial_summary = EXCLUDED.financial_summary,
		    period_start = EXCLUDED.period_start,
		    period_end = EXCLUDED.period_end,
		    archived_at = EXCLUDED.archived_at,
		    archived_by = EXCLUDED.archived_by
		WHERE account_archives.account_kind = EXCLUDED.account_kind
		RETURNING ` + archiveColumns + `;`

	stored, err := scanArchive(r.db.QueryRow(ctx, query,
		m.ArchiveID,
		m.OriginalAccountID,
		m.AccountKind,
		m.Name,
		m.Location,
		m.AccountType,
		m.BalancesSnapshot,
		m.FinancialSummary,
		m.ArchiveMonth,
		m.ArchiveYear,
		m.PeriodStart,
		m.PeriodEnd,
		m.ArchivedAt,
		m.ArchivedBy,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("archive %s %s is held by another account kind: %w",
			record.OriginalAccountID, record.Period(), apperrors.ErrConflict)
	}
	if err != nil {
		return nil, mapError(fmt.Sprintf("failed to upsert archive %s %s", record.OriginalAccountID, record.Period()), err)
	}
	out := mapping.ToDomainArchive(stored)
	return &out, nil
}

// FindArchive returns the archive of one account for one month.
func (r *PgxArchiveRepository) FindArchive(ctx context.Context, accountID string, period domain.Period) (*domain.ArchiveRecord, error) {
	query := `SELECT ` + archiveColumns + ` FROM account_archives
		WHERE original_account_id = $1 AND archive_month = $2 AND archive_year = $3;`
	m, err := scanArchive(r.db.QueryRow(ctx, query, accountID, int(period.Month), period.Year))
	if err != nil {
		return nil, mapError(fmt.Sprintf("failed to find archive %s %s", accountID, period), err)
	}
	out := mapping.ToDomainArchive(m)
	return &out, nil
}

// ListArchives returns an account's archives, most recent month first.
func (r *PgxArchiveRepository) ListArchives(ctx context.Context, accountID string) ([]domain.ArchiveRecord, error) {
	query := `SELECT ` + archiveColumns + ` FROM account_archives
		WHERE original_account_id = $1
		ORDER BY archive_year DESC, archive_month DESC;`
	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, mapError("failed to list archives for "+accountID, err)
	}
	defer rows.Close()

	archives := []domain.ArchiveRecord{}
	for rows.Next() {
		m, err := scanArchive(rows)
		if err != nil {
			return nil, mapError("failed to scan archive row", err)
		}
		archives = append(archives, mapping.ToDomainArchive(m))
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("error iterating archives", err)
	}
	return archives, nil
}
