package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DaySummary aggregates one calendar day of transactions.
type DaySummary struct {
	RevenueByCurrency  map[string]decimal.Decimal `json:"revenueByCurrency"`
	ExpensesByCurrency map[string]decimal.Decimal `json:"expensesByCurrency"`
	TransactionCount   int                        `json:"transactionCount"`
}

// DailyHistoryRecord is a per-day balance checkpoint for one account.
type DailyHistoryRecord struct {
	HistoryID     string      `json:"historyID"`
	AccountID     string      `json:"accountID"`
	AccountKind   AccountKind `json:"accountKind"`
	HistoryDate   time.Time   `json:"historyDate"` // midnight in the ledger's location
	BalancesStart Balances    `json:"balancesStart"`
	BalancesEnd   Balances    `json:"balancesEnd"`
	DaySummary    DaySummary  `json:"daySummary"`
	RecordedAt    time.Time   `json:"recordedAt"`
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
