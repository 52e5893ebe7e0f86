package middleware

import (
	"github.com/deppfellow/booking-now/internal/logger"
	"github.com/deppfellow/booking-now/internal/server"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// Echo context keys. Auth sets the user keys; ContextEnhancer sets the logger.
const (
	UserIDKey   = "user_id"
	UserRoleKey = "user_role"
	TenantIDKey = "tenant_id"
	ClaimsKey   = "claims"
	LoggerKey   = "logger"
)

// ContextEnhancer builds the request-scoped logger.
type ContextEnhancer struct {
	server *server.Server
}

func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

// EnhanceContext creates a logger carrying request_id, method, path and ip,
// plus New Relic trace ids when a transaction exists, and stores it both on
// the Echo context and on the request context. Services read it back with
// zerolog.Ctx.
func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			contextLogger := ce.server.Logger.With().
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("ip", c.RealIP()).
				Logger()

			if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
				contextLogger = logger.WithTraceContext(contextLogger, txn)
			}

			setLogger(c, contextLogger)

			return next(c)
		}
	}
}

// setLogger replaces the request logger in both places it is read from.
func setLogger(c echo.Context, l zerolog.Logger) {
	c.Set(LoggerKey, &l)
	c.SetRequest(c.Request().WithContext(l.WithContext(c.Request().Context())))
}

func GetUserID(c echo.Context) string {
	if userID, ok := c.Get(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

// GetTenantID is the caller's tenant, set by RequireAuth for tenant staff.
func GetTenantID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(TenantIDKey).(uuid.UUID)
	return id, ok
}

// GetLogger retrieves the request-scoped logger from Echo context, or a no-op
// logger when EnhanceContext did not run.
func GetLogger(c echo.Context) *zerolog.Logger {
	if logger, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return logger
	}

	logger := zerolog.Nop()
	return &logger
}
