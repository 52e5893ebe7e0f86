package handler

import (
	"github.com/deppfellow/booking-now/internal/server"
	"github.com/deppfellow/booking-now/internal/service"
)

// Handlers groups every HTTP handler so the router receives one value.
type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Auth    *AuthHandler
	Widget  *WidgetHandler
	Tenant  *TenantHandler
	Admin   *AdminHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		Auth:    NewAuthHandler(s, services.Auth),
		Widget:  NewWidgetHandler(s, services.Catalog, services.Booking),
		Tenant:  NewTenantHandler(s, services.Booking, services.Notification, services.Availability),
		Admin:   NewAdminHandler(s, services.Tenant, services.Booking),
	}
}
