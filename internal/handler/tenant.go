package handler

import (
	"bytes"
	"encoding/csv"
	"time"

	"github.com/deppfellow/booking-now/internal/errs"
	"github.com/deppfellow/booking-now/internal/middleware"
	"github.com/deppfellow/booking-now/internal/model"
	"github.com/deppfellow/booking-now/internal/server"
	"github.com/deppfellow/booking-now/internal/service"
	"github.com/deppfellow/booking-now/internal/validation"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const exportLimit = 5000

// TenantHandler serves the tenant dashboard. Every call is scoped to the
// tenant of the signed-in user.
type TenantHandler struct {
	Handler
	bookingService      *service.BookingService
	notificationService *service.NotificationService
	availabilityService *service.AvailabilityService
}

func NewTenantHandler(
	s *server.Server,
	bookingService *service.BookingService,
	notificationService *service.NotificationService,
	availabilityService *service.AvailabilityService,
) *TenantHandler {
	return &TenantHandler{
		Handler:             NewHandler(s),
		bookingService:      bookingService,
		notificationService: notificationService,
		availabilityService: availabilityService,
	}
}

func tenantOf(c echo.Context) (uuid.UUID, error) {
	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		return uuid.Nil, errs.NewForbiddenError("Your account is not linked to a business", true)
	}
	return tenantID, nil
}

type ListBookingsRequest struct {
	Status         string `query:"status" validate:"omitempty,oneof=PENDING CONFIRMED CANCELLED COMPLETED NO_SHOW"`
	ProfessionalID string `query:"professionalId" validate:"omitempty,uuid"`
	From           string `query:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To             string `query:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Limit          int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset         int    `query:"offset" validate:"omitempty,min=0"`
}

func (r *ListBookingsRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}

	from, to := r.window()
	if from != nil && to != nil && to.Before(*from) {
		return validation.CustomValidationErrors{{Field: "to", Message: "must not be before from"}}
	}
	return nil
}

// window parses the validated from/to bounds.
func (r *ListBookingsRequest) window() (*time.Time, *time.Time) {
	parse := func(raw string) *time.Time {
		if raw == "" {
			return nil
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil
		}
		return &t
	}
	return parse(r.From), parse(r.To)
}

func (r *ListBookingsRequest) filter() model.BookingFilter {
	f := model.BookingFilter{
		Limit:  r.Limit,
		Offset: r.Offset,
	}
	if r.Status != "" {
		status := model.BookingStatus(r.Status)
		f.Status = &status
	}
	if r.ProfessionalID != "" {
		id := uuid.MustParse(r.ProfessionalID)
		f.ProfessionalID = &id
	}
	f.From, f.To = r.window()
	return f
}

func (h *TenantHandler) ListBookings(c echo.Context, req *ListBookingsRequest) (*model.PaginatedResponse[model.BookingDetails], error) {
	tenantID, err := tenantOf(c)
	if err != nil {
		return nil, err
	}
	return h.bookingService.ListForTenant(c.Request().Context(), tenantID, req.filter())
}

// ExportBookings renders the filtered bookings as CSV, ignoring pagination.
func (h *TenantHandler) ExportBookings(c echo.Context, req *ListBookingsRequest) ([]byte, error) {
	tenantID, err := tenantOf(c)
	if err != nil {
		return nil, err
	}

	ctx := c.Request().Context()
	f := req.filter()
	f.Offset = 0
	f.Limit = model.MaxPageLimit

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"id", "start", "end", "status", "service", "professional", "client_name", "client_email", "total_price", "notes"})

	for written := 0; written < exportLimit; {
		page, err := h.bookingService.ListForTenant(ctx, tenantID, f)
		if err != nil {
			return nil, err
		}

		for _, b := range page.Data {
			loc := b.Location()
			professional := ""
			if b.Professional != nil {
				professional = b.Professional.Name
			}
			_ = w.Write([]string{
				b.ID.String(),
				b.StartDateTime.In(loc).Format(time.RFC3339),
				b.EndDateTime.In(loc).Format(time.RFC3339),
				string(b.Status),
				b.Service.Name,
				professional,
				b.Client.Name,
				b.Client.Email,
				b.TotalPrice.StringFixed(2),
				b.Notes,
			})
		}

		written += len(page.Data)
		f.Offset += len(page.Data)
		if len(page.Data) < f.Limit || f.Offset >= page.Total {
			break
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type UpdateBookingStatusRequest struct {
	BookingID string `param:"bookingId" json:"-" validate:"required,uuid"`
	Status    string `json:"status" validate:"required,oneof=PENDING CONFIRMED CANCELLED COMPLETED NO_SHOW"`
}

func (r *UpdateBookingStatusRequest) Validate() error {
	return validation.Struct(r)
}

func (h *TenantHandler) UpdateBookingStatus(c echo.Context, req *UpdateBookingStatusRequest) (*model.BookingDetails, error) {
	tenantID, err := tenantOf(c)
	if err != nil {
		return nil, err
	}
	return h.bookingService.UpdateStatus(c.Request().Context(), tenantID, uuid.MustParse(req.BookingID),
		model.BookingStatus(req.Status))
}

type ListNotificationsRequest struct {
	Unread bool `query:"unread"`
	Limit  int  `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int  `query:"offset" validate:"omitempty,min=0"`
}

func (r *ListNotificationsRequest) Validate() error {
	return validation.Struct(r)
}

func (h *TenantHandler) ListNotifications(c echo.Context, req *ListNotificationsRequest) (*model.PaginatedResponse[model.Notification], error) {
	tenantID, err := tenantOf(c)
	if err != nil {
		return nil, err
	}
	return h.notificationService.List(c.Request().Context(), service.ListNotificationsInput{
		TenantID:   tenantID,
		UnreadOnly: req.Unread,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
}

type NotificationRequest struct {
	NotificationID string `param:"notificationId" validate:"required,uuid"`
}

func (r *NotificationRequest) Validate() error {
	return validation.Struct(r)
}

func (h *TenantHandler) MarkNotificationRead(c echo.Context, req *NotificationRequest) (*model.Notification, error) {
	tenantID, err := tenantOf(c)
	if err != nil {
		return nil, err
	}
	return h.notificationService.MarkRead(c.Request().Context(), tenantID, uuid.MustParse(req.NotificationID))
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

func (h *TenantHandler) MarkAllNotificationsRead(c echo.Context, _ *NoParams) (*MarkAllReadResponse, error) {
	tenantID, err := tenantOf(c)
	if err != nil {
		return nil, err
	}
	n, err := h.notificationService.MarkAllRead(c.Request().Context(), tenantID)
	if err != nil {
		return nil, err
	}
	return &MarkAllReadResponse{Updated: n}, nil
}

type ServiceAvailabilityRequest struct {
	ServiceID string `param:"serviceId" validate:"required,uuid"`
}

func (r *ServiceAvailabilityRequest) Validate() error {
	return validation.Struct(r)
}

type AvailabilityResponse struct {
	ServiceID uuid.UUID            `json:"serviceId"`
	Windows   []model.Availability `json:"windows"`
}

func availabilityResponse(serviceID uuid.UUID, windows []model.Availability) *AvailabilityResponse {
	if windows == nil {
		windows = []model.Availability{}
	}
	return &AvailabilityResponse{ServiceID: serviceID, Windows: windows}
}

func (h *TenantHandler) GetAvailability(c echo.Context, req *ServiceAvailabilityRequest) (*AvailabilityResponse, error) {
	tenantID, err := tenantOf(c)
	if err != nil {
		return nil, err
	}

	serviceID := uuid.MustParse(req.ServiceID)
	windows, err := h.availabilityService.List(c.Request().Context(), tenantID, serviceID)
	if err != nil {
		return nil, err
	}
	return availabilityResponse(serviceID, windows), nil
}

type ReplaceAvailabilityRequest struct {
	ServiceID string                    `param:"serviceId" json:"-" validate:"required,uuid"`
	Windows   []model.AvailabilityInput `json:"windows" validate:"max=50,dive"`
}

func (r *ReplaceAvailabilityRequest) Validate() error {
	return validation.Struct(r)
}

func (h *TenantHandler) ReplaceAvailability(c echo.Context, req *ReplaceAvailabilityRequest) (*AvailabilityResponse, error) {
	tenantID, err := tenantOf(c)
	if err != nil {
		return nil, err
	}

	serviceID := uuid.MustParse(req.ServiceID)
	windows, err := h.availabilityService.Replace(c.Request().Context(), tenantID, serviceID, req.Windows)
	if err != nil {
		return nil, err
	}
	return availabilityResponse(serviceID, windows), nil
}
