package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nosenfield/smart-scrip/internal/metrics"
	"github.com/nosenfield/smart-scrip/internal/middleware"
	"github.com/nosenfield/smart-scrip/internal/tracing"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds router configuration options.
type RouterConfig struct {
	// RateLimiter limits /api requests per client; nil disables limiting.
	RateLimiter    middleware.RateLimiter
	APIKeys        map[string]string
	CORSOrigins    []string
	RequestTimeout time.Duration
	Tracing        bool
}

// DefaultRouterConfig returns the default router configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		RequestTimeout: 30 * time.Second,
	}
}

// NewRouter creates and configures the Gin router. catalogHandler may be nil,
// in which case the catalog routes are not registered.
func NewRouter(handler *Handler, catalogHandler *CatalogHandler, healthHandler *HealthHandler, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	configureGlobalMiddleware(router, &cfg)
	registerInfrastructureRoutes(router, healthHandler)

	api := router.Group("/api")
	configureAPIMiddleware(api, &cfg)

	groups := []RouteGroup{NewReconcileRoutes(handler)}
	if catalogHandler != nil {
		groups = append(groups, NewCatalogRoutes(catalogHandler))
	}
	for _, g := range groups {
		g.RegisterRoutes(api)
	}

	return router
}

// configureGlobalMiddleware sets up middleware applied to all routes.
func configureGlobalMiddleware(router *gin.Engine, cfg *RouterConfig) {
	router.Use(middleware.CORS(cfg.CORSOrigins))
	if cfg.Tracing {
		router.Use(tracing.Middleware())
	}
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		metrics.PrometheusMiddleware(),
		middleware.Compression(),
		middleware.RequestLogger(),
		middleware.ErrorHandler(),
	)
}

// registerInfrastructureRoutes registers health and metrics routes.
func registerInfrastructureRoutes(router *gin.Engine, healthHandler *HealthHandler) {
	if healthHandler == nil {
		healthHandler = NewHealthHandler()
	}
	healthHandler.Register(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// configureAPIMiddleware sets up middleware for the API group. Authentication
// runs before rate limiting so limits apply per client rather than per IP.
func configureAPIMiddleware(api *gin.RouterGroup, cfg *RouterConfig) {
	api.Use(middleware.APIKeyAuth(cfg.APIKeys))
	if cfg.RateLimiter != nil {
		api.Use(middleware.RateLimit(cfg.RateLimiter))
	}
	if cfg.RequestTimeout > 0 {
		api.Use(middleware.Timeout(cfg.RequestTimeout))
	}
}
