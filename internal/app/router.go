package app

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nosenfield/smart-scrip/config"
	"github.com/nosenfield/smart-scrip/internal/http"
	"github.com/nosenfield/smart-scrip/internal/middleware"
)

// StoppableRateLimiter is a rate limiter with a background janitor.
type StoppableRateLimiter interface {
	middleware.RateLimiter
	Stop()
}

// RouterComponents holds the router and the limiter it runs.
type RouterComponents struct {
	Engine  *gin.Engine
	Limiter StoppableRateLimiter
}

// InitializeRouter builds the handlers and the gin engine.
func InitializeRouter(cfg config.Config, services *ServiceComponents, catalog *CatalogComponents) *RouterComponents {
	handler := http.NewHandler(services.Reconciler,
		http.WithOptimizer(services.Optimizer),
		http.WithDefaultCriteria(services.Criteria),
		http.WithBatchConcurrency(cfg.Server.BatchConcurrency),
	)
	catalogHandler := http.NewCatalogHandler(services.Catalog)

	healthHandler := http.NewHealthHandler()
	if catalog.Mongo != nil {
		healthHandler.RegisterChecker("mongodb", catalog.Mongo)
	}
	if catalog.Breaker != nil {
		healthHandler.RegisterCircuitBreaker(catalog.Breaker)
	}
	for _, cb := range services.Breakers() {
		healthHandler.RegisterCircuitBreaker(cb)
	}

	limiter := newRateLimiter(cfg.Server)

	routerCfg := http.DefaultRouterConfig()
	routerCfg.RateLimiter = limiter
	routerCfg.CORSOrigins = cfg.Server.CORSOrigins
	routerCfg.RequestTimeout = cfg.Server.RequestTimeout
	routerCfg.Tracing = cfg.Tracing.Enabled
	if cfg.Auth.Enabled {
		routerCfg.APIKeys = cfg.Auth.APIKeys
	}

	return &RouterComponents{
		Engine:  http.NewRouter(handler, catalogHandler, healthHandler, routerCfg),
		Limiter: limiter,
	}
}

func newRateLimiter(cfg config.ServerConfig) StoppableRateLimiter {
	if strings.EqualFold(cfg.RateLimiter, "bucket") {
		return middleware.NewTokenBucketLimiter(cfg.RateLimit, cfg.RateWindow)
	}
	return middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
}
