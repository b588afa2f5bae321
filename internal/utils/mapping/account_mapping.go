package mapping

import (
	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	"github.com/SscSPs/caisse_ledger/internal/models"
)

// ToModelAccount converts a domain Account to its table row.
func ToModelAccount(d domain.Account) models.LedgerAccount {
	m := models.LedgerAccount{
		ID:              d.AccountID,
		Name:            d.Name,
		Balances:        d.Balances.Clone(),
		PeriodStartedAt: d.PeriodStartedAt,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
	switch d.Kind {
	case domain.CashDrawer:
		m.Location = d.Location
	case domain.BankAccount:
		m.AccountType = d.AccountType
	}
	if d.SecretHash != "" {
		hash := d.SecretHash
		m.SecretHash = &hash
	}
	return m
}

// ToDomainAccount converts a table row to a domain Account of the given kind.
func ToDomainAccount(kind domain.AccountKind, m models.LedgerAccount) domain.Account {
	d := domain.Account{
		AccountID:       m.ID,
		Kind:            kind,
		Name:            m.Name,
		Location:        m.Location,
		AccountType:     m.AccountType,
		Balances:        domain.Balances(m.Balances),
		PeriodStartedAt: m.PeriodStartedAt,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
	if d.Balances == nil {
		d.Balances = domain.Balances{}
	}
	if m.SecretHash != nil {
		d.SecretHash = *m.SecretHash
	}
	return d
}

// ToModelAuditFields converts domain audit fields to their columns.
func ToModelAuditFields(d domain.AuditFields) models.AuditFields {
	return models.AuditFields{
		CreatedAt:     d.CreatedAt,
		CreatedBy:     d.CreatedBy,
		LastUpdatedAt: d.LastUpdatedAt,
		LastUpdatedBy: d.LastUpdatedBy,
	}
}

// ToDomainAuditFields converts audit columns to domain audit fields.
func ToDomainAuditFields(m models.AuditFields) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     m.CreatedAt,
		CreatedBy:     m.CreatedBy,
		LastUpdatedAt: m.LastUpdatedAt,
		LastUpdatedBy: m.LastUpdatedBy,
	}
}
