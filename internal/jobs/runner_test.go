package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/SscSPs/caisse_ledger/internal/apperrors"
	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refs(ids ...string) []domain.AccountRef {
	out := make([]domain.AccountRef, len(ids))
	for i, id := range ids {
		out[i] = domain.AccountRef{Kind: domain.CashDrawer, ID: id}
	}
	return out
}

func TestRunner_PartialSuccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	r := NewRunner(WithConcurrency(2), WithMetrics(metrics), WithRetryPolicy(noSleep(RetryPolicy{MaxAttempts: 1})))

	report := r.Run(context.Background(), MonthlyArchiveJob, refs("a", "b", "c"), func(ctx context.Context, ref domain.AccountRef) error {
		if ref.ID == "b" {
			return errors.New("disk full")
		}
		return nil
	})

	require.Len(t, report.Results, 3)
	assert.Equal(t, domain.OutcomeSuccess, report.Results["a"].Status)
	assert.Equal(t, domain.OutcomeError, report.Results["b"].Status)
	assert.Equal(t, "disk full", report.Results["b"].Error)
	assert.Equal(t, domain.OutcomeSuccess, report.Results["c"].Status)
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, MonthlyArchiveJob, report.Job)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.AccountOutcomes.WithLabelValues(MonthlyArchiveJob, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AccountOutcomes.WithLabelValues(MonthlyArchiveJob, "error")))
}

func TestRunner_RetriesTransientFailures(t *testing.T) {
	r := NewRunner(WithRetryPolicy(noSleep(RetryPolicy{MaxAttempts: 3})))
	var calls atomic.Int32

	report := r.Run(context.Background(), DailySnapshotJob, refs("a"), func(ctx context.Context, ref domain.AccountRef) error {
		if calls.Add(1) == 1 {
			return apperrors.Storage("upsert history", errors.New("conn reset"))
		}
		return nil
	})

	assert.Equal(t, domain.OutcomeSuccess, report.Results["a"].Status)
	assert.Equal(t, 2, report.Results["a"].Attempts)
}

func TestRunner_CancelledContextMarksRemainingAccounts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRunner()
	var calls atomic.Int32

	report := r.Run(ctx, MonthlyArchiveJob, refs("a", "b"), func(ctx context.Context, ref domain.AccountRef) error {
		calls.Add(1)
		return nil
	})

	assert.Equal(t, int32(0), calls.Load())
	assert.Equal(t, 2, report.Failed())
	assert.Contains(t, report.Results["a"].Error, context.Canceled.Error())
}

func TestRunner_BoundedConcurrency(t *testing.T) {
	r := NewRunner(WithConcurrency(2))
	var inFlight, peak atomic.Int32
	ids := make([]string, 20)
	for i := range ids {
		ids[i] = fmt.Sprintf("acc-%d", i)
	}

	report := r.Run(context.Background(), DailySnapshotJob, refs(ids...), func(ctx context.Context, ref domain.AccountRef) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		inFlight.Add(-1)
		return nil
	})

	assert.Len(t, report.Results, 20)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}
