package mapping

import (
	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	"github.com/SscSPs/caisse_ledger/internal/models"
)

// ToModelArchive converts a domain ArchiveRecord to its table row.
func ToModelArchive(d domain.ArchiveRecord) models.AccountArchive {
	summary := make(map[string]models.CurrencySummary, len(d.FinancialSummary))
	for c, s := range d.FinancialSummary {
		summary[c] = models.CurrencySummary{
			InitialAmount: s.InitialAmount,
			Revenue:       s.Revenue,
			Expenses:      s.Expenses,
			Balance:       s.Balance,
		}
	}
	return models.AccountArchive{
		ArchiveID:         d.ArchiveID,
		OriginalAccountID: d.OriginalAccountID,
		AccountKind:       string(d.AccountKind),
		Name:              d.Name,
		Location:          nullable(d.Location),
		AccountType:       nullable(d.AccountType),
		BalancesSnapshot:  d.BalancesSnapshot.Clone(),
		FinancialSummary:  summary,
		ArchiveMonth:      d.ArchiveMonth,
		ArchiveYear:       d.ArchiveYear,
		PeriodStart:       d.PeriodStart,
		PeriodEnd:         d.PeriodEnd,
		ArchivedAt:        d.ArchivedAt,
		ArchivedBy:        d.ArchivedBy,
	}
}

// ToDomainArchive converts a table row to a domain ArchiveRecord.
func ToDomainArchive(m models.AccountArchive) domain.ArchiveRecord {
	summary := make(domain.FinancialSummary, len(m.FinancialSummary))
	for c, s := range m.FinancialSummary {
		summary[c] = domain.CurrencySummary{
			InitialAmount: s.InitialAmount,
			Revenue:       s.Revenue,
			Expenses:      s.Expenses,
			Balance:       s.Balance,
		}
	}
	snapshot := domain.Balances(m.BalancesSnapshot)
	if snapshot == nil {
		snapshot = domain.Balances{}
	}
	return domain.ArchiveRecord{
		ArchiveID:         m.ArchiveID,
		OriginalAccountID: m.OriginalAccountID,
		AccountKind:       domain.AccountKind(m.AccountKind),
		Name:              m.Name,
		Location:          deref(m.Location),
		AccountType:       deref(m.AccountType),
		BalancesSnapshot:  snapshot,
		FinancialSummary:  summary,
		ArchiveMonth:      m.ArchiveMonth,
		ArchiveYear:       m.ArchiveYear,
		PeriodStart:       m.PeriodStart,
		PeriodEnd:         m.PeriodEnd,
		ArchivedAt:        m.ArchivedAt,
		ArchivedBy:        m.ArchivedBy,
	}
}
