package router

import (
	"github.com/deppfellow/booking-now/internal/handler"
	"github.com/deppfellow/booking-now/internal/server"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes mounts health, metrics and API docs. None of them sit
// under /api/v1 or behind auth.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers, s *server.Server) {
	r.GET("/status", h.Health.CheckHealth)
	r.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))

	r.Static("/static", "static")
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
	r.GET("/openapi.json", h.OpenAPI.ServeOpenAPISpec)
}
