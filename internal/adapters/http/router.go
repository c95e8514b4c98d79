package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotes-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotes-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotes-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotes-service/internal/platform/config"
	"github.com/jsamuelsen/quotes-service/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// AuthConfig names the header and scheme carrying the bearer token.
	AuthConfig *config.AuthConfig

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// HealthHandler handles health check endpoints.
	HealthHandler *handlers.HealthHandler

	QuoteHandler *handlers.QuoteHandler
	TokenHandler *handlers.TokenHandler

	// TokenAuthenticator admits requests to the quote routes.
	TokenAuthenticator middleware.TokenAuthenticator

	// Timeout is the default request timeout.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID - generate/extract request ID
//  3. Correlation ID - handle distributed tracing correlation
//  4. OpenTelemetry - server span, then HTTP metrics
//  5. Logging - request logging (skips health endpoints)
//  6. Timeout - request deadline on /api
//
// Unmatched routes answer 404 with a JSON error body.
//
// Route groups:
//   - /-/ (internal): Health endpoints, no token required
//   - /api/tokens: token issue and revoke, no token required
//   - /api/quotes: quote CRUD behind the token gate
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	serviceName := "quotes-service"
	if cfg.AppConfig != nil && cfg.AppConfig.Name != "" {
		serviceName = cfg.AppConfig.Name
	}

	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(serviceName),
		telemetry.Middleware(),
		middleware.Logging(cfg.Logger),
	)

	// Health endpoints get no timeout so probes are never cut short
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	api := engine.Group("/api")
	if cfg.Timeout > 0 {
		api.Use(middleware.SimpleTimeout(cfg.Timeout))
	}

	setupAPIRoutes(api, cfg)

	engine.NoRoute(notFound)
	engine.NoMethod(notFound)
}

// notFound answers unmatched paths and methods with the JSON error envelope.
func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.NewErrorResponse("Not found."))
}

// setupAPIRoutes registers the token and quote routes.
func setupAPIRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.TokenHandler != nil {
		cfg.TokenHandler.RegisterTokenRoutes(rg)
	}

	if cfg.QuoteHandler != nil {
		if cfg.TokenAuthenticator == nil {
			panic("token authenticator is required for quote routes")
		}

		cfg.QuoteHandler.RegisterQuoteRoutes(rg, middleware.RequireToken(cfg.TokenAuthenticator, cfg.AuthConfig))
	}
}
