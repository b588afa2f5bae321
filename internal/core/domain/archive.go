package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// CurrencySummary is the per-currency result of the balance calculation.
type CurrencySummary struct {
	InitialAmount decimal.Decimal `json:"initialAmount"`
	Revenue       decimal.Decimal `json:"revenue"`
	Expenses      decimal.Decimal `json:"expenses"`
	Balance       decimal.Decimal `json:"balance"`
}

// FinancialSummary maps currency code to its summary.
type FinancialSummary map[string]CurrencySummary

// Balances extracts the balance column.
func (s FinancialSummary) Balances() Balances {
	b := make(Balances, len(s))
	for c, cs := range s {
		b[c] = cs.Balance
	}
	return b
}

// Period is a calendar month.
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// PeriodOf returns the month containing t, in t's location.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// Validate checks the month range and a sane year.
func (p Period) Validate() error {
	if p.Month < time.January || p.Month > time.December {
		return fmt.Errorf("%w: month must be between 1 and 12", apperrors.ErrValidation)
	}
	if p.Year < 2000 || p.Year > 9999 {
		return fmt.Errorf("%w: year %d out of range", apperrors.ErrValidation, p.Year)
	}
	return nil
}

// Bounds returns [start, end) of the month in loc.
func (p Period) Bounds(loc *time.Location) (time.Time, time.Time) {
	start := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// ArchiveRecord is the frozen financial state of one account for one month.
type ArchiveRecord struct {
	ArchiveID         string           `json:"archiveID"`
	OriginalAccountID string           `json:"originalAccountID"`
	AccountKind       AccountKind      `json:"accountKind"`
	Name              string           `json:"name"`
	Location          string           `json:"location"`
	AccountType       string           `json:"accountType"`
	BalancesSnapshot  Balances         `json:"balancesSnapshot"`
	FinancialSummary  FinancialSummary `json:"financialSummary"`
	ArchiveMonth      int              `json:"archiveMonth"`
	ArchiveYear       int              `json:"archiveYear"`
	// PeriodStart and PeriodEnd bound the transaction dates the summary covers.
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
	ArchivedAt  time.Time `json:"archivedAt"`
	ArchivedBy  string    `json:"archivedBy"`
}

// Period returns the archived month.
func (r *ArchiveRecord) Period() Period {
	return Period{Year: r.ArchiveYear, Month: time.Month(r.ArchiveMonth)}
}
