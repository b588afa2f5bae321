// Package app assembles the ledger from configuration. It is shared by the
// HTTP server and the ledgerctl command.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/caisse_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/caisse_ledger/internal/adapters/database/pgsql"
	portsrepo "github.com/SscSPs/caisse_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/caisse_ledger/internal/core/ports/services"
	"github.com/SscSPs/caisse_ledger/internal/core/services"
	"github.com/SscSPs/caisse_ledger/internal/events"
	"github.com/SscSPs/caisse_ledger/internal/events/amqp"
	"github.com/SscSPs/caisse_ledger/internal/jobs"
	"github.com/SscSPs/caisse_ledger/internal/platform/config"
	"github.com/SscSPs/caisse_ledger/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App holds the wired services and the resources that back them.
type App struct {
	Services *portssvc.ServiceContainer
	Broker   *events.Broker
	Registry *prometheus.Registry

	pool      *pgxpool.Pool
	forwarder *amqp.Forwarder
	logger    *slog.Logger
}

// New connects storage, applies migrations and builds the service container.
// Without a database URL the ledger lives in memory.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{
		Broker:   events.NewBroker(cfg.EventBufferSize),
		Registry: prometheus.NewRegistry(),
		logger:   logger,
	}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var repos portsrepo.RepositoryProvider
	if cfg.DatabaseURL == "" {
		logger.Warn("PGSQL_URL not set; using the in-memory ledger")
		repos = memory.New().Provider()
	} else {
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		a.pool = pool
		logger.Info("Database connection pool established.")

		if err := database.RunMigrations(cfg.DatabaseURL, logger); err != nil {
			a.Close()
			return nil, err
		}
		repos = pgsql.NewRepositoryProvider(pool, cfg.Location)
	}

	runner := jobs.NewRunner(
		jobs.WithConcurrency(cfg.JobConcurrency),
		jobs.WithRetryPolicy(jobs.RetryPolicy{
			MaxAttempts:    cfg.JobMaxAttempts,
			InitialBackoff: cfg.JobInitialBackoff,
			MaxBackoff:     cfg.JobMaxBackoff,
		}),
		jobs.WithMetrics(jobs.NewMetrics(a.Registry)),
		jobs.WithLogger(logger),
	)
	a.Services = services.NewServiceContainer(repos, runner,
		services.WithPublisher(a.Broker),
		services.WithLocation(cfg.Location))

	if cfg.AMQPURL != "" {
		forwarder, err := amqp.NewForwarder(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect event forwarder: %w", err)
		}
		a.forwarder = forwarder
	}
	return a, nil
}

// ForwardEvents republishes ledger events to RabbitMQ until ctx is done.
// It returns immediately when no AMQP_URL is configured.
func (a *App) ForwardEvents(ctx context.Context) {
	if a.forwarder == nil {
		return
	}
	a.forwarder.Run(ctx, a.Broker)
}

// Close releases subscriptions, the forwarder and the database pool.
func (a *App) Close() {
	a.Broker.Close()
	if a.forwarder != nil {
		if err := a.forwarder.Close(); err != nil {
			a.logger.Warn("Error closing event forwarder", slog.String("error", err.Error()))
		}
	}
	if a.pool != nil {
		database.ClosePgxPool(a.pool)
	}
}
