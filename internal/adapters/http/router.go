package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eletroorca/quote-service/internal/adapters/http/handlers"
	"github.com/eletroorca/quote-service/internal/adapters/http/middleware"
	"github.com/eletroorca/quote-service/internal/platform/config"
	"github.com/eletroorca/quote-service/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// HealthHandler handles health check endpoints.
	HealthHandler *handlers.HealthHandler

	// StateHandler serves the combined application state.
	StateHandler *handlers.StateHandler

	// ProfileHandler handles professional-profile endpoints.
	ProfileHandler *handlers.ProfileHandler

	// QuoteHandler handles active-quote endpoints.
	QuoteHandler *handlers.QuoteHandler

	// ItemsHandler handles line-item endpoints.
	ItemsHandler *handlers.ItemsHandler

	// HistoryHandler handles saved-quote endpoints.
	HistoryHandler *handlers.HistoryHandler

	// AssistHandler handles message, suggestion and share endpoints.
	AssistHandler *handlers.AssistHandler

	// DocumentHandler renders the printable quote.
	DocumentHandler *handlers.DocumentHandler

	// Timeout is the default request timeout.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID - generate/extract request ID
//  3. Correlation ID - handle distributed tracing correlation
//  4. OpenTelemetry - tracing and metrics
//  5. Logging - request logging (skips health endpoints)
//  6. Timeout - request deadline (applied per-route or globally)
//
// Route groups:
//   - /-/ (internal): Health endpoints
//   - /api/v1/ (public API): Business endpoints
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	// Apply global middleware in order
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.Middleware(cfg.AppConfig.Name),
		middleware.Logging(cfg.Logger),
	)

	// Register health endpoints (no timeout for probes)
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	// Setup API v1 routes with timeout
	apiV1 := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		apiV1.Use(middleware.SimpleTimeout(cfg.Timeout))
	}

	setupAPIRoutes(apiV1, cfg)
}

// setupAPIRoutes registers business API routes.
func setupAPIRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.StateHandler != nil {
		cfg.StateHandler.RegisterStateRoutes(rg)
	}

	if cfg.ProfileHandler != nil {
		cfg.ProfileHandler.RegisterProfileRoutes(rg)
	}

	if cfg.QuoteHandler != nil {
		cfg.QuoteHandler.RegisterQuoteRoutes(rg)
	}

	if cfg.ItemsHandler != nil {
		cfg.ItemsHandler.RegisterItemRoutes(rg)
	}

	if cfg.HistoryHandler != nil {
		cfg.HistoryHandler.RegisterHistoryRoutes(rg)
	}

	if cfg.AssistHandler != nil {
		cfg.AssistHandler.RegisterAssistRoutes(rg)
	}

	if cfg.DocumentHandler != nil {
		cfg.DocumentHandler.RegisterDocumentRoutes(rg)
	}
}

// SetupMinimalRouter sets up a minimal router with just health endpoints.
// Useful for testing or lightweight deployments.
func SetupMinimalRouter(engine *gin.Engine, logger *slog.Logger, healthHandler *handlers.HealthHandler) {
	engine.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
	)

	if healthHandler != nil {
		healthHandler.RegisterHealthRoutesOnEngine(engine)
	}
}

// NewDefaultRouterConfig creates a RouterConfig with sensible defaults.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	healthHandler *handlers.HealthHandler,
) RouterConfig {
	return RouterConfig{
		Logger:        logger,
		AppConfig:     appCfg,
		HealthHandler: healthHandler,
		Timeout:       DefaultRequestTimeout,
	}
}
