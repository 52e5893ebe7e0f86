package handler

import (
	"github.com/deppfellow/booking-now/internal/model"
	"github.com/deppfellow/booking-now/internal/server"
	"github.com/deppfellow/booking-now/internal/service"
	"github.com/deppfellow/booking-now/internal/validation"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// WidgetHandler serves the public, unauthenticated booking widget.
type WidgetHandler struct {
	Handler
	catalogService *service.CatalogService
	bookingService *service.BookingService
}

func NewWidgetHandler(s *server.Server, catalogService *service.CatalogService, bookingService *service.BookingService) *WidgetHandler {
	return &WidgetHandler{
		Handler:        NewHandler(s),
		catalogService: catalogService,
		bookingService: bookingService,
	}
}

type TenantProfileRequest struct {
	TenantID string `param:"tenantId" validate:"required,uuid"`
}

func (r *TenantProfileRequest) Validate() error {
	return validation.Struct(r)
}

func (h *WidgetHandler) GetTenantProfile(c echo.Context, req *TenantProfileRequest) (*model.TenantProfile, error) {
	return h.catalogService.Profile(c.Request().Context(), uuid.MustParse(req.TenantID))
}

type SlotsRequest struct {
	TenantID       string `param:"tenantId" validate:"required,uuid"`
	ServiceID      string `param:"serviceId" validate:"required,uuid"`
	Date           string `query:"date" validate:"required,datetime=2006-01-02"`
	ProfessionalID string `query:"professionalId" validate:"omitempty,uuid|eq=any"`
}

func (r *SlotsRequest) Validate() error {
	return validation.Struct(r)
}

func (h *WidgetHandler) GetSlots(c echo.Context, req *SlotsRequest) (*service.SlotsResult, error) {
	professionalID, err := service.ParseProfessionalPreference(req.ProfessionalID)
	if err != nil {
		return nil, err
	}

	return h.bookingService.AvailableSlots(c.Request().Context(), service.SlotsInput{
		TenantID:       uuid.MustParse(req.TenantID),
		ServiceID:      uuid.MustParse(req.ServiceID),
		ProfessionalID: professionalID,
		Date:           req.Date,
	})
}

type CreateBookingRequest struct {
	TenantID       string `param:"tenantId" json:"-" validate:"required,uuid"`
	ServiceID      string `json:"serviceId" validate:"required,uuid"`
	ProfessionalID string `json:"professionalId" validate:"omitempty,uuid|eq=any"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	Time           string `json:"time" validate:"required,max=20"`
	CustomerName   string `json:"customerName" validate:"required,notblank,max=200"`
	CustomerEmail  string `json:"customerEmail" validate:"required,email,max=255"`
	CustomerPhone  string `json:"customerPhone" validate:"omitempty,max=50"`
	Notes          string `json:"notes" validate:"omitempty,max=2000"`
}

func (r *CreateBookingRequest) Validate() error {
	return validation.Struct(r)
}

type CreateBookingResponse struct {
	Success bool                 `json:"success"`
	Booking model.BookingSummary `json:"booking"`
}

func (h *WidgetHandler) CreateBooking(c echo.Context, req *CreateBookingRequest) (*CreateBookingResponse, error) {
	professionalID, err := service.ParseProfessionalPreference(req.ProfessionalID)
	if err != nil {
		return nil, err
	}

	booking, err := h.bookingService.CreateWidgetBooking(c.Request().Context(), service.CreateBookingInput{
		TenantID:       uuid.MustParse(req.TenantID),
		ServiceID:      uuid.MustParse(req.ServiceID),
		ProfessionalID: professionalID,
		Date:           req.Date,
		Time:           req.Time,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		CustomerPhone:  req.CustomerPhone,
		Notes:          req.Notes,
	})
	if err != nil {
		return nil, err
	}

	return &CreateBookingResponse{
		Success: true,
		Booking: booking.Summary(),
	}, nil
}
