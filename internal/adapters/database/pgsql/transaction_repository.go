package pgsql

import (
	"context"
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/caisse_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/caisse_ledger/internal/models"
	"github.com/SscSPs/caisse_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `transaction_id, direction, amount, currency_code, source_kind, source_id, transaction_date, category, payment_method, created_by, created_at`

type PgxTransactionRepository struct {
	db querier
}

func newPgxTransactionRepository(db querier) *PgxTransactionRepository {
	return &PgxTransactionRepository{db: db}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

// SaveTransaction inserts an immutable transaction row.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`

	_, err := r.db.Exec(ctx, query,
		m.TransactionID,
		m.Direction,
		m.Amount,
		m.CurrencyCode,
		m.SourceKind,
		m.SourceID,
		m.TransactionDate,
		m.Category,
		m.PaymentMethod,
		m.CreatedBy,
		m.CreatedAt,
	)
	return mapError("failed to save transaction "+txn.TransactionID, err)
}

// buildListQuery renders the filter as SQL, newest first with keyset pagination
// on (transaction_date, created_at).
func buildListQuery(filter domain.TransactionFilter) (string, []any) {
	var sb strings.Builder
	args := []any{string(filter.Source.Kind), filter.Source.ID}
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	sb.WriteString("SELECT " + transactionColumns + " FROM transactions WHERE source_kind = $1 AND source_id = $2")
	if filter.CurrencyCode != "" {
		sb.WriteString(" AND currency_code = " + next(domain.NormalizeCurrency(filter.CurrencyCode)))
	}
	if filter.From != nil {
		sb.WriteString(" AND transaction_date >= " + next(*filter.From))
	}
	if filter.To != nil {
		sb.WriteString(" AND transaction_date < " + next(*filter.To))
	}
	if filter.After != nil {
		date := next(filter.After.TransactionDate)
		created := next(filter.After.CreatedAt)
		sb.WriteString(" AND (transaction_date, created_at) < (" + date + ", " + created + ")")
	}
	sb.WriteString(" ORDER BY transaction_date DESC, created_at DESC")
	if filter.Limit > 0 {
		sb.WriteString(" LIMIT " + next(filter.Limit))
	}
	return sb.String(), args
}

// ListTransactions streams matching rows. Each range over the sequence runs the
// query again, and stopping early closes the cursor.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, filter domain.TransactionFilter) iter.Seq2[domain.Transaction, error] {
	query, args := buildListQuery(filter)
	op := fmt.Sprintf("failed to list transactions for %s", filter.Source)

	return func(yield func(domain.Transaction, error) bool) {
		rows, err := r.db.Query(ctx, query, args...)
		if err != nil {
			yield(domain.Transaction{}, mapError(op, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			m, err := scanTransaction(rows)
			if err != nil {
				yield(domain.Transaction{}, mapError(op, err))
				return
			}
			if !yield(mapping.ToDomainTransaction(m), nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.Transaction{}, mapError(op, err))
		}
	}
}

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.Direction,
		&m.Amount,
		&m.CurrencyCode,
		&m.SourceKind,
		&m.SourceID,
		&m.TransactionDate,
		&m.Category,
		&m.PaymentMethod,
		&m.CreatedBy,
		&m.CreatedAt,
	)
	return m, err
}
