package mapping

import (
	"fmt"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	"github.com/SscSPs/caisse_ledger/internal/models"
)

// DateLayout is the textual form of a history date column.
const DateLayout = "2006-01-02"

// ToModelDailyHistory converts a domain DailyHistoryRecord to its table row.
func ToModelDailyHistory(d domain.DailyHistoryRecord) models.AccountDailyHistory {
	return models.AccountDailyHistory{
		HistoryID:     d.HistoryID,
		AccountID:     d.AccountID,
		AccountKind:   string(d.AccountKind),
		HistoryDate:   d.HistoryDate.Format(DateLayout),
		BalancesStart: d.BalancesStart.Clone(),
		BalancesEnd:   d.BalancesEnd.Clone(),
		DaySummary: models.DaySummary{
			Revenue:          d.DaySummary.RevenueByCurrency,
			Expenses:         d.DaySummary.ExpensesByCurrency,
			TransactionCount: d.DaySummary.TransactionCount,
		},
		RecordedAt: d.RecordedAt,
	}
}

// ToDomainDailyHistory converts a table row to a domain record. The stored date
// is interpreted as midnight in loc.
func ToDomainDailyHistory(m models.AccountDailyHistory, loc *time.Location) (domain.DailyHistoryRecord, error) {
	day, err := time.ParseInLocation(DateLayout, m.HistoryDate, loc)
	if err != nil {
		return domain.DailyHistoryRecord{}, fmt.Errorf("invalid history date %q: %w", m.HistoryDate, err)
	}
	return domain.DailyHistoryRecord{
		HistoryID:     m.HistoryID,
		AccountID:     m.AccountID,
		AccountKind:   domain.AccountKind(m.AccountKind),
		HistoryDate:   day,
		BalancesStart: orEmpty(m.BalancesStart),
		BalancesEnd:   orEmpty(m.BalancesEnd),
		DaySummary: domain.DaySummary{
			RevenueByCurrency:  orEmpty(m.DaySummary.Revenue),
			ExpensesByCurrency: orEmpty(m.DaySummary.Expenses),
			TransactionCount:   m.DaySummary.TransactionCount,
		},
		RecordedAt: m.RecordedAt,
	}, nil
}

func orEmpty[M ~map[string]V, V any](m M) M {
	if m == nil {
		return M{}
	}
	return m
}
