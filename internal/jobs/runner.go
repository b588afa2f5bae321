package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

// Job names used in reports, logs and metrics.
const (
	MonthlyArchiveJob = "monthly-archive"
	DailySnapshotJob  = "daily-snapshot"
)

// Task processes one account.
type Task func(ctx context.Context, ref domain.AccountRef) error

// Runner applies a task to many accounts independently. One account failing
// never stops the others.
type Runner struct {
	concurrency int
	retry       RetryPolicy
	metrics     *Metrics
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency bounds the number of accounts processed at once.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(r *Runner) {
		r.retry = p
	}
}

// WithMetrics records outcomes and durations.
func WithMetrics(m *Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// NewRunner creates a runner. Defaults: 4 concurrent accounts, DefaultRetryPolicy.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		concurrency: 4,
		retry:       DefaultRetryPolicy(),
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes task for every account and returns the per-account report.
// Cancelling ctx stops accounts that have not started yet and pending retries;
// they are reported as errors.
func (r *Runner) Run(ctx context.Context, job string, accounts []domain.AccountRef, task Task) *domain.JobReport {
	logger := r.logger.With(slog.String("job", job))
	report := &domain.JobReport{
		Job:       job,
		StartedAt: r.now(),
		Results:   make(map[string]domain.AccountOutcome, len(accounts)),
	}
	var mu sync.Mutex
	record := func(o domain.AccountOutcome) {
		mu.Lock()
		report.Results[o.Account.ID] = o
		mu.Unlock()
		if r.metrics != nil {
			r.metrics.AccountOutcomes.WithLabelValues(job, string(o.Status)).Inc()
		}
	}

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for _, ref := range accounts {
		if err := ctx.Err(); err != nil {
			record(domain.AccountOutcome{Account: ref, Status: domain.OutcomeError, Error: err.Error()})
			continue
		}
		g.Go(func() error {
			attempts, err := r.retry.Do(ctx, func(ctx context.Context) error {
				return task(ctx, ref)
			})
			outcome := domain.AccountOutcome{Account: ref, Status: domain.OutcomeSuccess, Attempts: attempts}
			if err != nil {
				outcome.Status = domain.OutcomeError
				outcome.Error = err.Error()
				logger.ErrorContext(ctx, "Account failed",
					slog.String("account_id", ref.ID),
					slog.String("account_kind", string(ref.Kind)),
					slog.Int("attempt", attempts),
					slog.String("error", err.Error()))
			} else {
				logger.DebugContext(ctx, "Account processed",
					slog.String("account_id", ref.ID),
					slog.Int("attempt", attempts))
			}
			record(outcome)
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = r.now()
	if r.metrics != nil {
		r.metrics.Duration.WithLabelValues(job).Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	}
	logger.InfoContext(ctx, "Job finished",
		slog.Int("accounts", len(accounts)),
		slog.Int("failed", report.Failed()))
	return report
}
