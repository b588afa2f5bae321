package mapping

import (
	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	"github.com/SscSPs/caisse_ledger/internal/models"
)

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ToModelTransaction converts a domain Transaction to its table row.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:   d.TransactionID,
		Direction:       string(d.Direction),
		Amount:          d.Amount,
		CurrencyCode:    d.CurrencyCode,
		SourceKind:      string(d.Source.Kind),
		SourceID:        d.Source.ID,
		TransactionDate: d.TransactionDate,
		Category:        nullable(d.Category),
		PaymentMethod:   nullable(d.PaymentMethod),
		CreatedBy:       d.CreatedBy,
		CreatedAt:       d.CreatedAt,
	}
}

// ToDomainTransaction converts a table row to a domain Transaction.
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:   m.TransactionID,
		Direction:       domain.Direction(m.Direction),
		Amount:          m.Amount,
		CurrencyCode:    m.CurrencyCode,
		Source:          domain.AccountRef{Kind: domain.AccountKind(m.SourceKind), ID: m.SourceID},
		TransactionDate: m.TransactionDate,
		Category:        deref(m.Category),
		PaymentMethod:   deref(m.PaymentMethod),
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt,
	}
}
