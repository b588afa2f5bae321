package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencySummary is the jsonb shape of one currency in financial_summary.
type CurrencySummary struct {
	InitialAmount decimal.Decimal `json:"initial_amount"`
	Revenue       decimal.Decimal `json:"revenue"`
	Expenses      decimal.Decimal `json:"expenses"`
	Balance       decimal.Decimal `json:"balance"`
}

// AccountArchive is a row of account_archives.
type AccountArchive struct {
	ArchiveID         string                     `db:"archive_id"`
	OriginalAccountID string                     `db:"original_account_id"`
	AccountKind       string                     `db:"account_kind"`
	Name              string                     `db:"name"`
	Location          *string                    `db:"location"`
	AccountType       *string                    `db:"account_type"`
	BalancesSnapshot  map[string]decimal.Decimal `db:"balances_snapshot"` // jsonb
	FinancialSummary  map[string]CurrencySummary `db:"financial_summary"` // jsonb
	ArchiveMonth      int                        `db:"archive_month"`
	ArchiveYear       int                        `db:"archive_year"`
	PeriodStart       time.Time                  `db:"period_start"`
	PeriodEnd         time.Time                  `db:"period_end"`
	ArchivedAt        time.Time                  `db:"archived_at"`
	ArchivedBy        string                     `db:"archived_by"`
}
