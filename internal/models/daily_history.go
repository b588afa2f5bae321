package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DaySummary is the jsonb shape of account_daily_history.day_summary.
type DaySummary struct {
	Revenue          map[string]decimal.Decimal `json:"revenue"`
	Expenses         map[string]decimal.Decimal `json:"expenses"`
	TransactionCount int                        `json:"transaction_count"`
}

// AccountDailyHistory is a row of account_daily_history.
type AccountDailyHistory struct {
	HistoryID     string                     `db:"history_id"`
	AccountID     string                     `db:"account_id"`
	AccountKind   string                     `db:"account_kind"`
	HistoryDate   string                     `db:"history_date"` // YYYY-MM-DD
	BalancesStart map[string]decimal.Decimal `db:"balances_start"`
	BalancesEnd   map[string]decimal.Decimal `db:"balances_end"`
	DaySummary    DaySummary                 `db:"day_summary"`
	RecordedAt    time.Time                  `db:"recorded_at"`
}
