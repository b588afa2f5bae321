package accounting

import (
	"iter"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Accumulator folds transactions into per-currency revenue and expense totals.
// Only currencies present in the initial balances are tracked; transactions in
// any other currency are ignored.
type Accumulator struct {
	initial  domain.Balances
	revenue  map[string]decimal.Decimal
	expenses map[string]decimal.Decimal
	count    int
}

// NewAccumulator starts an accumulator over the given initial amounts.
func NewAccumulator(initial domain.Balances) *Accumulator {
	acc := &Accumulator{
		initial:  initial.Clone(),
		revenue:  make(map[string]decimal.Decimal, len(initial)),
		expenses: make(map[string]decimal.Decimal, len(initial)),
	}
	for c := range initial {
		acc.revenue[c] = decimal.Zero
		acc.expenses[c] = decimal.Zero
	}
	return acc
}

// Add applies one transaction. It reports whether the transaction counted.
func (a *Accumulator) Add(txn domain.Transaction) bool {
	code := domain.NormalizeCurrency(txn.CurrencyCode)
	if _, ok := a.initial[code]; !ok {
		return false
	}
	switch txn.Direction {
	case domain.Revenue:
		a.revenue[code] = a.revenue[code].Add(txn.Amount)
	case domain.Expense:
		a.expenses[code] = a.expenses[code].Add(txn.Amount)
	default:
		return false
	}
	a.count++
	return true
}

// Count is the number of transactions that contributed to the totals.
func (a *Accumulator) Count() int {
	return a.count
}

// Summary returns balance = initial - expenses + revenue for each tracked currency.
func (a *Accumulator) Summary() domain.FinancialSummary {
	out := make(domain.FinancialSummary, len(a.initial))
	for c, initial := range a.initial {
		rev := a.revenue[c]
		exp := a.expenses[c]
		out[c] = domain.CurrencySummary{
			InitialAmount: initial,
			Revenue:       rev,
			Expenses:      exp,
			Balance:       initial.Sub(exp).Add(rev),
		}
	}
	return out
}

// DaySummary returns the per-currency totals in the shape stored on daily history records.
func (a *Accumulator) DaySummary() domain.DaySummary {
	rev := make(map[string]decimal.Decimal, len(a.revenue))
	exp := make(map[string]decimal.Decimal, len(a.expenses))
	for c, v := range a.revenue {
		rev[c] = v
	}
	for c, v := range a.expenses {
		exp[c] = v
	}
	return domain.DaySummary{
		RevenueByCurrency:  rev,
		ExpensesByCurrency: exp,
		TransactionCount:   a.count,
	}
}

// Summarize computes the financial summary of balances plus txns.
func Summarize(balances domain.Balances, txns []domain.Transaction) domain.FinancialSummary {
	acc := NewAccumulator(balances)
	for _, t := range txns {
		acc.Add(t)
	}
	return acc.Summary()
}

// SummarizeSeq drains a lazy transaction sequence into an accumulator.
// The first error from the sequence stops iteration and is returned.
func SummarizeSeq(balances domain.Balances, txns iter.Seq2[domain.Transaction, error]) (*Accumulator, error) {
	acc := NewAccumulator(balances)
	for t, err := range txns {
		if err != nil {
			return nil, err
		}
		acc.Add(t)
	}
	return acc, nil
}
