package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of the transactions table.
type Transaction struct {
	TransactionID   string          `db:"transaction_id"`
	Direction       string          `db:"direction"`
	Amount          decimal.Decimal `db:"amount"`
	CurrencyCode    string          `db:"currency_code"`
	SourceKind      string          `db:"source_kind"`
	SourceID        string          `db:"source_id"`
	TransactionDate time.Time       `db:"transaction_date"`
	Category        *string         `db:"category"`
	PaymentMethod   *string         `db:"payment_method"`
	CreatedBy       string          `db:"created_by"`
	CreatedAt       time.Time       `db:"created_at"`
}
