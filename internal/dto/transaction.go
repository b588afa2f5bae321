package dto

import (
	"time"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecordTransactionRequest defines the data needed to record a money movement.
type RecordTransactionRequest struct {
	Direction       domain.Direction   `json:"direction" binding:"required,oneof=REVENUE EXPENSE"`
	Amount          decimal.Decimal    `json:"amount"`
	CurrencyCode    string             `json:"currencyCode" binding:"required,currency_code"`
	SourceKind      domain.AccountKind `json:"sourceKind" binding:"required,oneof=CASH_DRAWER BANK_ACCOUNT"`
	SourceID        string             `json:"sourceID" binding:"required"`
	TransactionDate *time.Time         `json:"transactionDate"` // Defaults to now
	Category        string             `json:"category"`
	PaymentMethod   string             `json:"paymentMethod"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID   string             `json:"transactionID"`
	Direction       domain.Direction   `json:"direction"`
	Amount          decimal.Decimal    `json:"amount"`
	CurrencyCode    string             `json:"currencyCode"`
	SourceKind      domain.AccountKind `json:"sourceKind"`
	SourceID        string             `json:"sourceID"`
	TransactionDate time.Time          `json:"transactionDate"`
	Category        string             `json:"category,omitempty"`
	PaymentMethod   string             `json:"paymentMethod,omitempty"`
	CreatedBy       string             `json:"createdBy"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   t.TransactionID,
		Direction:       t.Direction,
		Amount:          t.Amount,
		CurrencyCode:    t.CurrencyCode,
		SourceKind:      t.Source.Kind,
		SourceID:        t.Source.ID,
		TransactionDate: t.TransactionDate,
		Category:        t.Category,
		PaymentMethod:   t.PaymentMethod,
		CreatedBy:       t.CreatedBy,
		CreatedAt:       t.CreatedAt,
	}
}

// ListTransactionsParams defines query parameters for listing an account's transactions.
type ListTransactionsParams struct {
	Currency      string     `form:"currency"`
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
	Limit         int        `form:"limit,default=50" binding:"min=1,max=500"`
	NextToken     string     `form:"nextToken"`
	CurrentPeriod bool       `form:"currentPeriod"`
}

// ListTransactionsResponse wraps one page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    string                `json:"nextToken,omitempty"`
}
