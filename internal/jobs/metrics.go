package jobs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports job outcomes.
type Metrics struct {
	AccountOutcomes *prometheus.CounterVec
	Duration        *prometheus.HistogramVec
}

// NewMetrics registers the job metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AccountOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Subsystem: "job",
			Name:      "account_outcomes_total",
			Help:      "Per-account results of ledger jobs.",
		}, []string{"job", "status"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ledger",
			Subsystem: "job",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of ledger job runs.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"job"}),
	}
}
