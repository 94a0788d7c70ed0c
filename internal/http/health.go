package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nosenfield/smart-scrip/internal/circuitbreaker"
	"github.com/nosenfield/smart-scrip/internal/domain/dto"
	"github.com/nosenfield/smart-scrip/internal/logger"
	"golang.org/x/sync/errgroup"
)

// healthCheckTimeout bounds each readiness dependency check.
const healthCheckTimeout = 2 * time.Second

// breakerCheckPrefix namespaces circuit breakers in the readiness checks.
const breakerCheckPrefix = "breaker:"

// HealthChecker is a dependency probed by the readiness endpoint.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checkers map[string]HealthChecker
	breakers map[string]*circuitbreaker.CircuitBreaker
}

// NewHealthHandler creates a HealthHandler with nothing registered.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		checkers: make(map[string]HealthChecker),
		breakers: make(map[string]*circuitbreaker.CircuitBreaker),
	}
}

// RegisterChecker adds a dependency to the readiness probe.
func (h *HealthHandler) RegisterChecker(name string, checker HealthChecker) {
	h.checkers[name] = checker
}

// RegisterCircuitBreaker reports cb in the readiness probe under its name.
func (h *HealthHandler) RegisterCircuitBreaker(cb *circuitbreaker.CircuitBreaker) {
	h.breakers[cb.Name()] = cb
}

// Register mounts /healthz and /readyz.
func (h *HealthHandler) Register(router *gin.Engine) {
	router.GET("/healthz", h.Liveness)
	router.GET("/readyz", h.Readiness)
}

// Liveness handles the liveness probe endpoint.
// @Summary     Liveness probe
// @Tags        Health
// @Produce     json
// @Success     200 {object} map[string]string "Service is alive"
// @Router      /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": dto.ReadinessOK})
}

// Readiness probes every registered dependency concurrently. A failing
// dependency or an open circuit marks the service degraded; a half-open
// circuit is reported but still counts as ready.
// @Summary     Readiness probe
// @Tags        Health
// @Produce     json
// @Success     200 {object} dto.ReadinessResponse "Service is ready"
// @Failure     503 {object} dto.ReadinessResponse "A dependency is unavailable"
// @Router      /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx := c.Request.Context()
	resp := dto.ReadinessResponse{
		Status: dto.ReadinessOK,
		Checks: make(map[string]dto.DependencyStatus, len(h.checkers)+len(h.breakers)),
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for name, checker := range h.checkers {
		g.Go(func() error {
			status := probe(ctx, name, checker)
			mu.Lock()
			resp.Checks[name] = status
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for name, cb := range h.breakers {
		stats := cb.GetStats()
		resp.Checks[breakerCheckPrefix+name] = dto.DependencyStatus{
			Status:              stats.State,
			ConsecutiveFailures: stats.FailureCount,
		}
	}

	for name, check := range resp.Checks {
		if check.Status == dto.ReadinessOK || check.Status == circuitbreaker.StateClosed.String() ||
			check.Status == circuitbreaker.StateHalfOpen.String() {
			continue
		}
		resp.Status = dto.ReadinessDegraded
		logger.FromContext(ctx).Warn().
			Str("check", name).
			Str("status", check.Status).
			Msg("Readiness degraded")
	}

	status := http.StatusOK
	if resp.Status != dto.ReadinessOK {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// probe runs one checker under healthCheckTimeout. The response carries only
// a generic reason; the dependency's own error goes to the log.
func probe(ctx context.Context, name string, checker HealthChecker) dto.DependencyStatus {
	pctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := checker.HealthCheck(pctx)
	status := dto.DependencyStatus{Status: dto.ReadinessOK, LatencyMS: time.Since(start).Milliseconds()}
	if err == nil {
		return status
	}

	status.Status = "down"
	status.Error = "check failed"
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(pctx.Err(), context.DeadlineExceeded) {
		status.Error = "check timed out"
	}
	logger.FromContext(ctx).Warn().
		Err(err).
		Str("check", name).
		Int64("latency_ms", status.LatencyMS).
		Msg("Dependency health check failed")
	return status
}
