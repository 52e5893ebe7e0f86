package handler

import (
	"github.com/deppfellow/booking-now/internal/model"
	"github.com/deppfellow/booking-now/internal/server"
	"github.com/deppfellow/booking-now/internal/service"
	"github.com/deppfellow/booking-now/internal/validation"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AdminHandler serves the super-admin dashboard.
type AdminHandler struct {
	Handler
	tenantService  *service.TenantService
	bookingService *service.BookingService
}

func NewAdminHandler(s *server.Server, tenantService *service.TenantService, bookingService *service.BookingService) *AdminHandler {
	return &AdminHandler{
		Handler:        NewHandler(s),
		tenantService:  tenantService,
		bookingService: bookingService,
	}
}

type TenantListResponse struct {
	Data []model.Tenant `json:"data"`
}

func (h *AdminHandler) ListTenants(c echo.Context, _ *NoParams) (*TenantListResponse, error) {
	tenants, err := h.tenantService.List(c.Request().Context())
	if err != nil {
		return nil, err
	}
	if tenants == nil {
		tenants = []model.Tenant{}
	}
	return &TenantListResponse{Data: tenants}, nil
}

type CreateTenantRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	Slug          string `json:"slug" validate:"required,min=2,max=63,hostname_rfc1123,lowercase"`
	Email         string `json:"email" validate:"required,email,max=255"`
	Phone         string `json:"phone" validate:"omitempty,max=50"`
	Timezone      string `json:"timezone" validate:"omitempty,timezone"`
	OwnerName     string `json:"ownerName" validate:"required,max=200"`
	OwnerEmail    string `json:"ownerEmail" validate:"required,email,max=255"`
	OwnerPassword string `json:"ownerPassword" validate:"required,min=8,max=128"`
}

func (r *CreateTenantRequest) Validate() error {
	return validation.Struct(r)
}

func (h *AdminHandler) CreateTenant(c echo.Context, req *CreateTenantRequest) (*service.CreateTenantResult, error) {
	return h.tenantService.Create(c.Request().Context(), service.CreateTenantInput{
		Name:          req.Name,
		Slug:          req.Slug,
		Email:         req.Email,
		Phone:         req.Phone,
		Timezone:      req.Timezone,
		OwnerName:     req.OwnerName,
		OwnerEmail:    req.OwnerEmail,
		OwnerPassword: req.OwnerPassword,
	})
}

type AdminListBookingsRequest struct {
	ListBookingsRequest
	TenantID string `query:"tenantId" validate:"omitempty,uuid"`
}

func (r *AdminListBookingsRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	return r.ListBookingsRequest.Validate()
}

func (h *AdminHandler) ListBookings(c echo.Context, req *AdminListBookingsRequest) (*model.PaginatedResponse[model.BookingDetails], error) {
	f := req.filter()
	if req.TenantID != "" {
		id := uuid.MustParse(req.TenantID)
		f.TenantID = &id
	}
	return h.bookingService.List(c.Request().Context(), f)
}
