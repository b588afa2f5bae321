package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerAccount is a row of cash_drawers or bank_accounts. Location is only
// stored for cash drawers and AccountType only for bank accounts.
type LedgerAccount struct {
	ID              string                     `db:"id"`
	Name            string                     `db:"name"`
	Location        string                     `db:"location"`
	AccountType     string                     `db:"account_type"`
	Balances        map[string]decimal.Decimal `db:"balances"` // jsonb
	SecretHash      *string                    `db:"secret_hash"`
	PeriodStartedAt time.Time                  `db:"period_started_at"`
	AuditFields
}
