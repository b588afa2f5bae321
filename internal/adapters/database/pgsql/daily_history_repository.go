package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/caisse_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/caisse_ledger/internal/models"
	"github.com/SscSPs/caisse_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const historyColumns = `history_id, account_id, account_kind, to_char(history_date, 'YYYY-MM-DD'), balances_start, balances_end, day_summary, recorded_at`

type PgxDailyHistoryRepository struct {
	db  querier
	loc *time.Location
}

func newPgxDailyHistoryRepository(db querier, loc *time.Location) *PgxDailyHistoryRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &PgxDailyHistoryRepository{db: db, loc: loc}
}

var _ portsrepo.DailyHistoryRepositoryFacade = (*PgxDailyHistoryRepository)(nil)

func (r *PgxDailyHistoryRepository) scan(row pgx.Row) (*domain.DailyHistoryRecord, error) {
	var m models.AccountDailyHistory
	if err := row.Scan(
		&m.HistoryID,
		&m.AccountID,
		&m.AccountKind,
		&m.HistoryDate,
		&m.BalancesStart,
		&m.BalancesEnd,
		&m.DaySummary,
		&m.RecordedAt,
	); err != nil {
		return nil, err
	}
	rec, err := mapping.ToDomainDailyHistory(m, r.loc)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *PgxDailyHistoryRepository) dateString(t time.Time) string {
	return t.In(r.loc).Format(mapping.DateLayout)
}

// UpsertDailyHistory stores the record, replacing the same account and day.
func (r *PgxDailyHistoryRepository) UpsertDailyHistory(ctx context.Context, record domain.DailyHistoryRecord) (*domain.DailyHistoryRecord, error) {
	m := mapping.ToModelDailyHistory(record)
	query := `
		INSERT INTO account_daily_history (history_id, account_id, account_kind, history_date, balances_start, balances_end, day_summary, recorded_at)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8)
		ON CONFLICT (account_id, history_date) DO UPDATE
		SET account_kind = EXCLUDED.account_kind,
		    balances_start = EXCLUDED.balances_start,
		    balances_end = EXCLUDED.balances_end,
		    day_summary = EXCLUDED.day_summary,
		    recorded_at = EXCLUDED.recorded_at
		RETURNING ` + historyColumns + `;`

	stored, err := r.scan(r.db.QueryRow(ctx, query,
		m.HistoryID,
		m.AccountID,
		m.AccountKind,
		r.dateString(record.HistoryDate),
		m.BalancesStart,
		m.BalancesEnd,
		m.DaySummary,
		m.RecordedAt,
	))
	if err != nil {
		return nil, mapError(fmt.Sprintf("failed to upsert daily history %s %s", record.AccountID, m.HistoryDate), err)
	}
	return stored, nil
}

// FindDailyHistory returns the record of one account for one calendar day.
func (r *PgxDailyHistoryRepository) FindDailyHistory(ctx context.Context, accountID string, date time.Time) (*domain.DailyHistoryRecord, error) {
	day := r.dateString(date)
	query := `SELECT ` + historyColumns + ` FROM account_daily_history WHERE account_id = $1 AND history_date = $2::date;`
	rec, err := r.scan(r.db.QueryRow(ctx, query, accountID, day))
	if err != nil {
		return nil, mapError(fmt.Sprintf("failed to find daily history %s %s", accountID, day), err)
	}
	return rec, nil
}

// ListDailyHistory returns records in [from, to), newest first. Nil bounds are open.
func (r *PgxDailyHistoryRepository) ListDailyHistory(ctx context.Context, accountID string, from, to *time.Time) ([]domain.DailyHistoryRecord, error) {
	var sb strings.Builder
	args := []any{accountID}
	sb.WriteString(`SELECT ` + historyColumns + ` FROM account_daily_history WHERE account_id = $1`)
	if from != nil {
		args = append(args, r.dateString(*from))
		sb.WriteString(" AND history_date >= $" + strconv.Itoa(len(args)) + "::date")
	}
	if to != nil {
		args = append(args, r.dateString(*to))
		sb.WriteString(" AND history_date < $" + strconv.Itoa(len(args)) + "::date")
	}
	sb.WriteString(" ORDER BY history_date DESC;")

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, mapError("failed to list daily history for "+accountID, err)
	}
	defer rows.Close()

	records := []domain.DailyHistoryRecord{}
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, mapError("failed to scan daily history row", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("error iterating daily history", err)
	}
	return records, nil
}
