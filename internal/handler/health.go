package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/booking-now/internal/config"
	"github.com/deppfellow/booking-now/internal/middleware"
	"github.com/deppfellow/booking-now/internal/server"
	"github.com/labstack/echo/v4"
)

// HealthHandler reports whether the API and its dependencies are reachable.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

type pinger func(ctx context.Context) error

func (h *HealthHandler) recordFailure(checkType string, elapsed time.Duration, err error) {
	if h.server.LoggerService == nil || h.server.LoggerService.GetApplication() == nil {
		return
	}

	attrs := map[string]interface{}{
		"check_type":       checkType,
		"operation":        "health_check",
		"error_type":       checkType + "_unhealthy",
		"response_time_ms": elapsed.Milliseconds(),
	}
	if err != nil {
		attrs["error_message"] = err.Error()
	}
	h.server.LoggerService.GetApplication().RecordCustomEvent("HealthCheckError", attrs)
}

// check runs one dependency ping and returns its report entry.
func (h *HealthHandler) check(c echo.Context, name string, ping pinger) (map[string]interface{}, bool) {
	logger := middleware.GetLogger(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.checks().Timeout)
	defer cancel()

	start := time.Now()
	err := ping(ctx)
	elapsed := time.Since(start)

	if err != nil {
		logger.Error().Err(err).Str("check", name).Dur("response_time", elapsed).Msg("health check failed")
		h.recordFailure(name, elapsed, err)
		return map[string]interface{}{
			"status":        "unhealthy",
			"response_time": elapsed.String(),
			"error":         err.Error(),
		}, false
	}

	logger.Debug().Str("check", name).Dur("response_time", elapsed).Msg("health check passed")
	return map[string]interface{}{
		"status":        "healthy",
		"response_time": elapsed.String(),
	}, true
}

func (h *HealthHandler) checks() config.HealthChecksConfig {
	if obs := h.server.Config.Observability; obs != nil {
		return obs.HealthChecks
	}
	return config.DefaultObservabilityConfig().HealthChecks
}

// CheckHealth answers 200 when every configured dependency responds and 503
// otherwise. Both are on by default: Redis backs sign-out and the email queue.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	checks := map[string]interface{}{}
	healthy := true
	enabled := h.checks()

	if enabled.Enabled(config.HealthCheckDatabase) {
		dbCheck, ok := h.check(c, config.HealthCheckDatabase, h.server.DB.Pool.Ping)
		checks[config.HealthCheckDatabase] = dbCheck
		healthy = healthy && ok
	}

	if enabled.Enabled(config.HealthCheckRedis) {
		redisCheck, ok := h.check(c, config.HealthCheckRedis, func(ctx context.Context) error {
			if h.server.Redis == nil {
				return errors.New("redis client not configured")
			}
			return h.server.Redis.Ping(ctx).Err()
		})
		checks[config.HealthCheckRedis] = redisCheck
		healthy = healthy && ok
	}

	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	if !healthy {
		response["status"] = "unhealthy"
		middleware.GetLogger(c).Warn().Dur("total_duration", time.Since(start)).Msg("health check failed")
		h.recordFailure("overall", time.Since(start), nil)
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}
	return nil
}
