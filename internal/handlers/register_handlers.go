package handlers

import (
	"net/http"
	"time"

	"github.com/SscSPs/caisse_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/caisse_ledger/internal/core/ports/services"
	"github.com/SscSPs/caisse_ledger/internal/events"
	"github.com/SscSPs/caisse_ledger/internal/middleware"
	"github.com/SscSPs/caisse_ledger/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Services *portssvc.ServiceContainer
	Broker   *events.Broker
	Gatherer prometheus.Gatherer
	// PrivilegedLimiter throttles secret checks. Nil disables throttling.
	PrivilegedLimiter *limiter.Limiter
	// Clock picks the default day of snapshot requests. Nil means time.Now.
	Clock func() time.Time
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Dependencies) {
	RegisterValidators()

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	setupAPIV1Routes(r, cfg, deps)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(r *gin.Engine, cfg *config.Config, deps Dependencies) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	var privileged []gin.HandlerFunc
	if deps.PrivilegedLimiter != nil {
		privileged = append(privileged, middleware.RateLimit(deps.PrivilegedLimiter))
	}

	now := deps.Clock
	if now == nil {
		now = time.Now
	}

	ledger := v1.Group("/ledger")
	for _, kind := range []domain.AccountKind{domain.CashDrawer, domain.BankAccount} {
		registerAccountRoutes(ledger, kind, deps.Services, cfg.Location, now, privileged...)
	}
	registerTransactionRoutes(ledger, deps.Services)
	registerJobRoutes(v1, deps.Services, cfg.Location, now)
	if deps.Broker != nil {
		registerEventRoutes(v1, deps.Broker)
	}
}
