package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/deppfellow/booking-now/internal/errs"
	"github.com/deppfellow/booking-now/internal/lib/schedule"
	"github.com/deppfellow/booking-now/internal/metrics"
	"github.com/deppfellow/booking-now/internal/model"
	"github.com/deppfellow/booking-now/internal/repository"
	"github.com/deppfellow/booking-now/internal/server"
	"github.com/deppfellow/booking-now/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type BookingService struct {
	tenants       TenantStore
	users         UserStore
	catalog       CatalogStore
	availability  AvailabilityStore
	bookings      BookingStore
	notifications *NotificationService
	metrics       *metrics.Metrics
	logger        *zerolog.Logger
	defaultLoc    *time.Location
	now           func() time.Time
}

func NewBookingService(
	s *server.Server,
	repos *repository.Repositories,
	notifications *NotificationService,
	defaultLoc *time.Location,
) *BookingService {
	return &BookingService{
		tenants:       repos.Tenant,
		users:         repos.User,
		catalog:       repos.Catalog,
		availability:  repos.Availability,
		bookings:      repos.Booking,
		notifications: notifications,
		metrics:       s.Metrics,
		logger:        s.Logger,
		defaultLoc:    defaultLoc,
		now:           time.Now,
	}
}

// CreateBookingInput is a widget booking request. A nil ProfessionalID means
// no preference.
type CreateBookingInput struct {
	TenantID       uuid.UUID
	ServiceID      uuid.UUID
	ProfessionalID *uuid.UUID
	Date           string
	Time           string
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	Notes          string
}

func scopeLabel(scope model.ConflictScope) string {
	if scope.ProfessionalID != nil {
		return "professional"
	}
	return "service"
}

func invalidSlot(err error) *errs.HTTPError {
	field := "date"
	if errors.Is(err, schedule.ErrInvalidClock) {
		field = "time"
	}
	return errs.NewBadRequestError("Invalid date or time", true, errs.Ptr("INVALID_SLOT"),
		[]errs.FieldError{{Field: field, Error: err.Error()}}, nil)
}

// CreateWidgetBooking books a slot for a customer. The slot is resolved in the
// tenant's timezone, checked against the service's availability and against
// overlapping active bookings, then stored as PENDING. Notification and
// emails are best effort.
func (s *BookingService) CreateWidgetBooking(ctx context.Context, in CreateBookingInput) (*model.BookingDetails, error) {
	logger := loggerFrom(ctx, s.logger)

	tenant, err := activeTenant(ctx, s.tenants, in.TenantID)
	if err != nil {
		return nil, err
	}

	svc, err := activeService(ctx, s.catalog, tenant.ID, in.ServiceID)
	if err != nil {
		return nil, err
	}

	pro, err := professionalFor(ctx, s.catalog, tenant.ID, in.ProfessionalID)
	if err != nil {
		return nil, err
	}

	loc := tenant.Location(s.defaultLoc)
	start, err := schedule.SlotStart(in.Date, in.Time, loc)
	if err != nil {
		return nil, invalidSlot(err)
	}
	end := start.Add(svc.Length())

	if start.Before(s.now()) {
		return nil, errs.NewBadRequestError("The selected time is in the past", true, errs.Ptr("SLOT_IN_PAST"),
			[]errs.FieldError{{Field: "time", Error: "must be in the future"}}, nil)
	}

	windows, err := s.activeWindows(ctx, svc.ID)
	if err != nil {
		return nil, err
	}
	if len(windows) > 0 && !schedule.Fits(windows, start, end, loc) {
		s.metrics.BookingConflicts.WithLabelValues("outside_availability").Inc()
		return nil, errs.NewConflictError("The selected time is outside the service's availability", true,
			errs.Ptr("OUTSIDE_AVAILABILITY"))
	}

	tenantID := tenant.ID
	client, err := s.users.FindOrCreateClient(ctx, repository.CreateUserParams{
		Email:    in.CustomerEmail,
		Name:     strings.TrimSpace(in.CustomerName),
		Phone:    strings.TrimSpace(in.CustomerPhone),
		Role:     model.RoleClient,
		TenantID: &tenantID,
	})
	if err != nil {
		return nil, err
	}

	scope := model.ConflictScope{ServiceID: svc.ID}
	var professionalID *uuid.UUID
	if pro != nil {
		professionalID = &pro.ID
		scope.ProfessionalID = professionalID
	}

	details, err := s.bookings.CreateExclusive(ctx, repository.CreateBookingParams{
		TenantID:       tenant.ID,
		ServiceID:      svc.ID,
		ProfessionalID: professionalID,
		ClientID:       client.ID,
		Start:          start,
		End:            end,
		TotalPrice:     svc.Price,
		Notes:          strings.TrimSpace(in.Notes),
	}, scope)
	if err != nil {
		if errors.Is(err, repository.ErrBookingConflict) {
			s.metrics.BookingConflicts.WithLabelValues("overlap").Inc()
			return nil, errs.NewConflictError("The selected time is no longer available", true,
				errs.Ptr("SLOT_UNAVAILABLE"))
		}
		return nil, err
	}

	s.metrics.BookingsCreated.WithLabelValues(scopeLabel(scope)).Inc()
	logger.Info().
		Str("booking_id", details.ID.String()).
		Str("tenant_id", tenant.ID.String()).
		Str("service_id", svc.ID.String()).
		Time("start", start).
		Msg("booking created")

	s.notifications.BookingCreated(ctx, details, tenant.Email)

	return details, nil
}

// activeWindows loads the service's active weekly windows. Rows that no
// longer parse are skipped.
func (s *BookingService) activeWindows(ctx context.Context, serviceID uuid.UUID) ([]schedule.Window, error) {
	rows, err := s.availability.ListActiveByService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	windows := make([]schedule.Window, 0, len(rows))
	for _, row := range rows {
		w, err := schedule.ParseWindow(row.DayOfWeek, row.StartTime, row.EndTime)
		if err != nil {
			loggerFrom(ctx, s.logger).Warn().
				Err(err).
				Str("availability_id", row.ID.String()).
				Msg("skipping malformed availability window")
			continue
		}
		windows = append(windows, w)
	}
	return windows, nil
}

type SlotsInput struct {
	TenantID       uuid.UUID
	ServiceID      uuid.UUID
	ProfessionalID *uuid.UUID
	Date           string
}

type SlotsResult struct {
	Date     string          `json:"date"`
	Timezone string          `json:"timezone"`
	Duration int             `json:"duration"`
	Slots    []schedule.Slot `json:"slots"`
}

// AvailableSlots lists the free start times of a service on one day.
func (s *BookingService) AvailableSlots(ctx context.Context, in SlotsInput) (*SlotsResult, error) {
	tenant, err := activeTenant(ctx, s.tenants, in.TenantID)
	if err != nil {
		return nil, err
	}

	svc, err := activeService(ctx, s.catalog, tenant.ID, in.ServiceID)
	if err != nil {
		return nil, err
	}

	pro, err := professionalFor(ctx, s.catalog, tenant.ID, in.ProfessionalID)
	if err != nil {
		return nil, err
	}

	loc := tenant.Location(s.defaultLoc)
	day, err := schedule.ParseDate(in.Date, loc)
	if err != nil {
		return nil, invalidSlot(err)
	}

	windows, err := s.activeWindows(ctx, svc.ID)
	if err != nil {
		return nil, err
	}

	scope := model.ConflictScope{ServiceID: svc.ID}
	if pro != nil {
		scope.ProfessionalID = &pro.ID
	}

	taken, err := s.bookings.ListBusy(ctx, scope, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	busy := make([]schedule.Busy, len(taken))
	for i, r := range taken {
		busy[i] = schedule.Busy{Start: r.Start, End: r.End}
	}

	slots := schedule.Slots(schedule.SlotQuery{
		Day:       day,
		Location:  loc,
		Windows:   windows,
		Length:    svc.Length(),
		Busy:      busy,
		NotBefore: s.now(),
	})
	if slots == nil {
		slots = []schedule.Slot{}
	}

	return &SlotsResult{
		Date:     day.Format(schedule.DateLayout),
		Timezone: loc.String(),
		Duration: svc.Duration,
		Slots:    slots,
	}, nil
}

// List returns bookings across tenants for the super-admin.
func (s *BookingService) List(ctx context.Context, f model.BookingFilter) (*model.PaginatedResponse[model.BookingDetails], error) {
	f.Limit, f.Offset = model.NormalizePage(f.Limit, f.Offset)
	return s.bookings.List(ctx, f)
}

// ListForTenant scopes the filter to one tenant whatever it asked for.
func (s *BookingService) ListForTenant(ctx context.Context, tenantID uuid.UUID, f model.BookingFilter) (*model.PaginatedResponse[model.BookingDetails], error) {
	f.TenantID = &tenantID
	return s.List(ctx, f)
}

// UpdateStatus moves a tenant's booking along the status lifecycle.
func (s *BookingService) UpdateStatus(ctx context.Context, tenantID, bookingID uuid.UUID, to model.BookingStatus) (*model.BookingDetails, error) {
	current, err := s.bookings.GetDetailsForTenant(ctx, tenantID, bookingID)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, errs.NewNotFoundError("Booking not found", true, nil)
		}
		return nil, err
	}

	if !current.Status.CanTransition(to) {
		return nil, errs.NewConflictError(
			"A "+strings.ToLower(string(current.Status))+" booking cannot become "+strings.ToLower(string(to)),
			true, errs.Ptr("INVALID_STATUS_TRANSITION"))
	}

	updated, err := s.bookings.UpdateStatus(ctx, tenantID, bookingID, current.Status, to)
	if err != nil {
		if errors.Is(err, repository.ErrBookingStatusChanged) {
			return nil, errs.NewConflictError("The booking was updated by someone else, reload and try again", true,
				errs.Ptr("STATUS_CHANGED"))
		}
		return nil, err
	}

	s.metrics.BookingStatusChanges.WithLabelValues(string(to)).Inc()
	loggerFrom(ctx, s.logger).Info().
		Str("booking_id", bookingID.String()).
		Str("from", string(current.Status)).
		Str("to", string(to)).
		Msg("booking status updated")

	s.notifications.BookingStatusChanged(ctx, updated)

	return updated, nil
}
