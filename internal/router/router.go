// Package router builds the Echo instance: global middleware, the system
// routes and the versioned API groups.
package router

import (
	"net/http"

	"github.com/deppfellow/booking-now/internal/handler"
	"github.com/deppfellow/booking-now/internal/middleware"
	"github.com/deppfellow/booking-now/internal/model"
	"github.com/deppfellow/booking-now/internal/server"
	"github.com/deppfellow/booking-now/internal/service"
	"github.com/labstack/echo/v4"
)

func NewRouter(s *server.Server, h *handler.Handlers, services *service.Services) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s, services.Auth)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// Order matters: the request id and the New Relic transaction must exist
	// before the context logger reads them.
	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h, s)

	v1 := router.Group("/api/v1")
	registerAuthRoutes(v1, h, middlewares)
	registerWidgetRoutes(v1, h, middlewares)
	registerTenantRoutes(v1, h, middlewares)
	registerAdminRoutes(v1, h, middlewares)

	return router
}

func registerAuthRoutes(v1 *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	a := h.Auth
	g := v1.Group("/auth")

	g.POST("/sign-in", handler.Handle(a.Handler, a.SignIn, http.StatusOK, &handler.SignInRequest{}),
		m.RateLimit.Limit())
	g.GET("/session", handler.Handle(a.Handler, a.Session, http.StatusOK, &handler.NoParams{}),
		m.Auth.RequireAuth)
	g.POST("/sign-out", handler.HandleNoContent(a.Handler, a.SignOut, http.StatusNoContent, &handler.NoParams{}),
		m.Auth.RequireAuth)
}

func registerWidgetRoutes(v1 *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	w := h.Widget
	g := v1.Group("/widget/tenant/:tenantId", m.RateLimit.Limit())

	g.GET("", handler.Handle(w.Handler, w.GetTenantProfile, http.StatusOK, &handler.TenantProfileRequest{}))
	g.GET("/services/:serviceId/slots", handler.Handle(w.Handler, w.GetSlots, http.StatusOK, &handler.SlotsRequest{}))
	g.POST("/bookings", handler.Handle(w.Handler, w.CreateBooking, http.StatusOK, &handler.CreateBookingRequest{}))
}

func registerTenantRoutes(v1 *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	t := h.Tenant
	g := v1.Group("/tenant", m.Auth.RequireAuth, m.Auth.RequireTenant)

	g.GET("/bookings", handler.Handle(t.Handler, t.ListBookings, http.StatusOK, &handler.ListBookingsRequest{}))
	g.GET("/bookings/export", handler.HandleFile(t.Handler, t.ExportBookings, http.StatusOK,
		&handler.ListBookingsRequest{}, "bookings.csv", "text/csv; charset=utf-8"))
	g.PATCH("/bookings/:bookingId/status", handler.Handle(t.Handler, t.UpdateBookingStatus, http.StatusOK,
		&handler.UpdateBookingStatusRequest{}))

	g.GET("/notifications", handler.Handle(t.Handler, t.ListNotifications, http.StatusOK, &handler.ListNotificationsRequest{}))
	g.PATCH("/notifications/:notificationId/read", handler.Handle(t.Handler, t.MarkNotificationRead, http.StatusOK,
		&handler.NotificationRequest{}))
	g.POST("/notifications/read-all", handler.Handle(t.Handler, t.MarkAllNotificationsRead, http.StatusOK, &handler.NoParams{}))

	g.GET("/services/:serviceId/availability", handler.Handle(t.Handler, t.GetAvailability, http.StatusOK,
		&handler.ServiceAvailabilityRequest{}))
	g.PUT("/services/:serviceId/availability", handler.Handle(t.Handler, t.ReplaceAvailability, http.StatusOK,
		&handler.ReplaceAvailabilityRequest{}))
}

func registerAdminRoutes(v1 *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	a := h.Admin
	g := v1.Group("/admin", m.Auth.RequireAuth, m.Auth.RequireRole(model.RoleAdmin))

	g.GET("/tenants", handler.Handle(a.Handler, a.ListTenants, http.StatusOK, &handler.NoParams{}))
	g.POST("/tenants", handler.Handle(a.Handler, a.CreateTenant, http.StatusCreated, &handler.CreateTenantRequest{}))
	g.GET("/bookings", handler.Handle(a.Handler, a.ListBookings, http.StatusOK, &handler.AdminListBookingsRequest{}))
}
