package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/caisse_ledger/internal/apperrors"
	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/caisse_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/caisse_ledger/internal/models"
	"github.com/SscSPs/caisse_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

// accountTable describes where one account kind is stored. Cash drawers keep a
// location column, bank accounts an account_type column.
type accountTable struct {
	name     string
	extraCol string
}

var accountTables = map[domain.AccountKind]accountTable{
	domain.CashDrawer:  {name: "cash_drawers", extraCol: "location"},
	domain.BankAccount: {name: "bank_accounts", extraCol: "account_type"},
}

func tableFor(kind domain.AccountKind) (accountTable, error) {
	t, ok := accountTables[kind]
	if !ok {
		return accountTable{}, fmt.Errorf("%w: unknown account kind %q", apperrors.ErrValidation, kind)
	}
	return t, nil
}

func (t accountTable) selectColumns() string {
	return "id, name, " + t.extraCol + ", balances, secret_hash, period_started_at, created_at, created_by, last_updated_at, last_updated_by"
}

func (t accountTable) extraValue(m *models.LedgerAccount) *string {
	if t.extraCol == "location" {
		return &m.Location
	}
	return &m.AccountType
}

type PgxAccountRepository struct {
	db querier
}

func newPgxAccountRepository(db querier) *PgxAccountRepository {
	return &PgxAccountRepository{db: db}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row, t accountTable) (models.LedgerAccount, error) {
	var m models.LedgerAccount
	err := row.Scan(
		&m.ID,
		&m.Name,
		t.extraValue(&m),
		&m.Balances,
		&m.SecretHash,
		&m.PeriodStartedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveAccount inserts a new account into its kind's table.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	t, err := tableFor(account.Kind)
	if err != nil {
		return err
	}
	m := mapping.ToModelAccount(account)
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, %s, balances, secret_hash, period_started_at, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`, t.name, t.extraCol)

	_, err = r.db.Exec(ctx, query,
		m.ID,
		m.Name,
		*t.extraValue(&m),
		m.Balances,
		m.SecretHash,
		m.PeriodStartedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	return mapError(fmt.Sprintf("failed to save account %s", account.Ref()), err)
}

// FindAccountByID retrieves an account by kind and id.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, ref domain.AccountRef) (*domain.Account, error) {
	t, err := tableFor(ref.Kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1;`, t.selectColumns(), t.name)
	m, err := scanAccount(r.db.QueryRow(ctx, query, ref.ID), t)
	if err != nil {
		return nil, mapError(fmt.Sprintf("failed to find account %s", ref), err)
	}
	account := mapping.ToDomainAccount(ref.Kind, m)
	return &account, nil
}

// findForUpdate locks the account row until the surrounding transaction ends.
func (r *PgxAccountRepository) findForUpdate(ctx context.Context, ref domain.AccountRef) (*domain.Account, error) {
	t, err := tableFor(ref.Kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 FOR UPDATE;`, t.selectColumns(), t.name)
	m, err := scanAccount(r.db.QueryRow(ctx, query, ref.ID), t)
	if err != nil {
		return nil, mapError(fmt.Sprintf("failed to lock account %s", ref), err)
	}
	account := mapping.ToDomainAccount(ref.Kind, m)
	return &account, nil
}

// ListAccounts lists the accounts of one kind, or of both kinds when kind is empty.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, kind domain.AccountKind) ([]domain.Account, error) {
	kinds := []domain.AccountKind{domain.CashDrawer, domain.BankAccount}
	if kind != "" {
		kinds = []domain.AccountKind{kind}
	}

	accounts := []domain.Account{}
	for _, k := range kinds {
		t, err := tableFor(k)
		if err != nil {
			return nil, err
		}
		query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY name, id;`, t.selectColumns(), t.name)
		rows, err := r.db.Query(ctx, query)
		if err != nil {
			return nil, mapError("failed to list "+t.name, err)
		}
		for rows.Next() {
			m, err := scanAccount(rows, t)
			if err != nil {
				rows.Close()
				return nil, mapError("failed to scan "+t.name+" row", err)
			}
			accounts = append(accounts, mapping.ToDomainAccount(k, m))
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, mapError("error iterating "+t.name, err)
		}
	}
	return accounts, nil
}

// UpdateAccount overwrites the mutable columns of an account.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	t, err := tableFor(account.Kind)
	if err != nil {
		return err
	}
	m := mapping.ToModelAccount(account)
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, %s = $3, balances = $4, secret_hash = $5, period_started_at = $6,
		    last_updated_at = $7, last_updated_by = $8
		WHERE id = $1;`, t.name, t.extraCol)

	tag, err := r.db.Exec(ctx, query,
		m.ID,
		m.Name,
		*t.extraValue(&m),
		m.Balances,
		m.SecretHash,
		m.PeriodStartedAt,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapError(fmt.Sprintf("failed to update account %s", account.Ref()), err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", account.Ref(), apperrors.ErrNotFound)
	}
	return nil
}

// DeleteAccount removes an account. Its transactions, archives and history are kept.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, ref domain.AccountRef) error {
	t, err := tableFor(ref.Kind)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1;`, t.name), ref.ID)
	if err != nil {
		return mapError(fmt.Sprintf("failed to delete account %s", ref), err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", ref, apperrors.ErrNotFound)
	}
	return nil
}
