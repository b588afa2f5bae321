package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/caisse_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/caisse_ledger/internal/utils/accounting"
)

// liveAccumulator runs the balance calculator over the account's open period:
// every transaction dated at or after PeriodStartedAt.
func liveAccumulator(ctx context.Context, txns portsrepo.TransactionReader, account *domain.Account) (*accounting.Accumulator, error) {
	since := account.PeriodStartedAt
	filter := domain.TransactionFilter{Source: account.Ref(), From: &since}
	acc, err := accounting.SummarizeSeq(account.Balances, txns.ListTransactions(ctx, filter))
	if err != nil {
		return nil, fmt.Errorf("failed to compute balance for %s: %w", account.Ref(), err)
	}
	return acc, nil
}

// periodAccumulator runs the balance calculator over transactions dated in [from, to),
// starting from the account's current initial amounts.
func periodAccumulator(ctx context.Context, txns portsrepo.TransactionReader, account *domain.Account, from, to time.Time) (*accounting.Accumulator, error) {
	return windowAccumulator(ctx, txns, account.Ref(), account.Balances, from, to)
}

// windowAccumulator runs the balance calculator over transactions dated in [from, to)
// starting from the given initial amounts.
func windowAccumulator(ctx context.Context, txns portsrepo.TransactionReader, ref domain.AccountRef, initial domain.Balances, from, to time.Time) (*accounting.Accumulator, error) {
	filter := domain.TransactionFilter{Source: ref, From: &from, To: &to}
	acc, err := accounting.SummarizeSeq(initial, txns.ListTransactions(ctx, filter))
	if err != nil {
		return nil, fmt.Errorf("failed to summarize %s: %w", ref, err)
	}
	return acc, nil
}

// periodStartFor returns where a new account's first balance period begins:
// the first instant of the month containing now.
func periodStartFor(now time.Time, loc *time.Location) time.Time {
	start, _ := domain.PeriodOf(now.In(loc)).Bounds(loc)
	return start
}

// resetLocked zeroes the account's initial amounts and opens a new balance period
// at periodStart. It must run inside the account's critical section.
func resetLocked(ctx context.Context, tx portsrepo.LedgerTx, account *domain.Account, userID string, periodStart, now time.Time) error {
	account.Balances = account.Balances.Zeroed()
	account.PeriodStartedAt = periodStart
	account.Touch(userID, now)
	if err := tx.UpdateAccount(ctx, *account); err != nil {
		return fmt.Errorf("failed to reset %s: %w", account.Ref(), err)
	}
	return nil
}
