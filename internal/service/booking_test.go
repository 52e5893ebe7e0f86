package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/deppfellow/booking-now/internal/errs"
	"github.com/deppfellow/booking-now/internal/lib/job"
	"github.com/deppfellow/booking-now/internal/model"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireHTTPError(t *testing.T, err error, status int) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected *errs.HTTPError, got %v", err)
	assert.Equal(t, status, httpErr.Status)
	return httpErr
}

func (f *fixture) bookingInput() CreateBookingInput {
	return CreateBookingInput{
		TenantID:      f.tenant.ID,
		ServiceID:     f.service.ID,
		Date:          "2026-03-03",
		Time:          "10:00",
		CustomerName:  "Maria Lopez",
		CustomerEmail: "Maria@Example.com",
		CustomerPhone: "+34 600 000 000",
	}
}

func TestCreateWidgetBooking_NoPreference(t *testing.T) {
	f := newFixture()
	svc := f.bookingService()

	d, err := svc.CreateWidgetBooking(context.Background(), f.bookingInput())
	require.NoError(t, err)

	madrid, _ := time.LoadLocation("Europe/Madrid")
	assert.Equal(t, time.Date(2026, 3, 3, 10, 0, 0, 0, madrid).UTC(), d.StartDateTime.UTC())
	assert.Equal(t, 30*time.Minute, d.EndDateTime.Sub(d.StartDateTime))
	assert.Equal(t, model.BookingStatusPending, d.Status)
	assert.Equal(t, "25.5", d.TotalPrice.String())
	assert.Nil(t, d.ProfessionalID)
	assert.Equal(t, "", d.Notes)
	assert.Equal(t, "maria@example.com", d.Client.Email)

	require.Len(t, f.notifications.created, 1)
	assert.Equal(t, model.NotificationNewBooking, f.notifications.created[0].Type)
	assert.Equal(t, f.tenant.ID, f.notifications.created[0].TenantID)
	assert.Contains(t, f.notifications.created[0].Message, "Tue, Mar 3 2026 at 10:00")

	assert.Equal(t, []string{job.TaskNewBookingAlert, job.TaskBookingReceipt}, f.queue.tasks())
	assert.Equal(t, f.tenant.Email, f.queue.sent[0].to)
	assert.Equal(t, "maria@example.com", f.queue.sent[1].to)
	assert.Equal(t, 10, f.queue.sent[1].data.Start.Hour())
	assert.Equal(t, "25.50", f.queue.sent[1].data.Price)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BookingsCreated.WithLabelValues("service")))
}

func TestCreateWidgetBooking_WithProfessional(t *testing.T) {
	f := newFixture()
	in := f.bookingInput()
	in.ProfessionalID = &f.professional.ID
	in.Time = "10:00 - 10:30"
	in.Notes = "  first visit "

	d, err := f.bookingService().CreateWidgetBooking(context.Background(), in)
	require.NoError(t, err)

	require.NotNil(t, d.Professional)
	assert.Equal(t, "Ana", d.Professional.Name)
	assert.Equal(t, "first visit", d.Notes)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BookingsCreated.WithLabelValues("professional")))
}

func TestCreateWidgetBooking_ReusesExistingCustomer(t *testing.T) {
	f := newFixture()
	existing := f.users.add(&model.User{
		Base:  model.Base{ID: uuid.New()},
		Email: "maria@example.com",
		Name:  "Maria L.",
		Role:  model.RoleClient,
	})

	d, err := f.bookingService().CreateWidgetBooking(context.Background(), f.bookingInput())
	require.NoError(t, err)

	assert.Len(t, f.users.byEmail, 1)
	assert.Equal(t, "Maria L.", d.Client.Name)
	assert.Equal(t, "Maria L.", existing.Name)
}

func TestCreateWidgetBooking_BlankNameUsesEmailInNotification(t *testing.T) {
	f := newFixture()
	in := f.bookingInput()
	in.CustomerName = "   "

	_, err := f.bookingService().CreateWidgetBooking(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, f.notifications.created, 1)
	assert.Equal(t, "maria@example.com booked Haircut for Tue, Mar 3 2026 at 10:00", f.notifications.created[0].Message)
}

func TestCreateWidgetBooking_NotFound(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *fixture, in *CreateBookingInput)
		message string
	}{
		{
			name:    "unknown tenant",
			mutate:  func(f *fixture, in *CreateBookingInput) { in.TenantID = uuid.New() },
			message: "Tenant not found",
		},
		{
			name:    "inactive tenant",
			mutate:  func(f *fixture, in *CreateBookingInput) { f.tenant.IsActive = false },
			message: "Tenant not found",
		},
		{
			name:    "inactive service",
			mutate:  func(f *fixture, in *CreateBookingInput) { f.service.IsActive = false },
			message: "Service not found",
		},
		{
			name: "service of another tenant",
			mutate: func(f *fixture, in *CreateBookingInput) {
				f.service.TenantID = uuid.New()
			},
			message: "Service not found",
		},
		{
			name: "unavailable professional",
			mutate: func(f *fixture, in *CreateBookingInput) {
				f.professional.IsAvailable = false
				in.ProfessionalID = &f.professional.ID
			},
			message: "Professional not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			in := f.bookingInput()
			tt.mutate(f, &in)

			_, err := f.bookingService().CreateWidgetBooking(context.Background(), in)

			httpErr := requireHTTPError(t, err, http.StatusNotFound)
			assert.Equal(t, tt.message, httpErr.Message)
			assert.Empty(t, f.bookings.stored)
			assert.Empty(t, f.users.byEmail)
		})
	}
}

func TestCreateWidgetBooking_InvalidSlot(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		time  string
		code  string
		field string
	}{
		{"bad date", "03/03/2026", "10:00", "INVALID_SLOT", "date"},
		{"bad time", "2026-03-03", "10am", "INVALID_SLOT", "time"},
		{"out of range time", "2026-03-03", "24:00", "INVALID_SLOT", "time"},
		{"in the past", "2026-03-02", "08:30", "SLOT_IN_PAST", "time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			in := f.bookingInput()
			in.Date, in.Time = tt.date, tt.time

			_, err := f.bookingService().CreateWidgetBooking(context.Background(), in)

			httpErr := requireHTTPError(t, err, http.StatusBadRequest)
			assert.Equal(t, tt.code, httpErr.Code)
			require.Len(t, httpErr.Errors, 1)
			assert.Equal(t, tt.field, httpErr.Errors[0].Field)
		})
	}
}

func TestCreateWidgetBooking_Availability(t *testing.T) {
	f := newFixture()
	_, err := f.availability.ReplaceForService(context.Background(), f.service.ID, []model.AvailabilityInput{
		{DayOfWeek: int(time.Tuesday), StartTime: "09:00", EndTime: "12:00"},
	})
	require.NoError(t, err)
	svc := f.bookingService()

	in := f.bookingInput()
	in.Time = "11:45"
	_, err = svc.CreateWidgetBooking(context.Background(), in)
	httpErr := requireHTTPError(t, err, http.StatusConflict)
	assert.Equal(t, "OUTSIDE_AVAILABILITY", httpErr.Code)

	in.Time = "11:30"
	_, err = svc.CreateWidgetBooking(context.Background(), in)
	require.NoError(t, err)

	in.Date = "2026-03-08"
	in.Time = "10:00"
	_, err = svc.CreateWidgetBooking(context.Background(), in)
	requireHTTPError(t, err, http.StatusConflict)

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.BookingConflicts.WithLabelValues("outside_availability")))
}

func TestCreateWidgetBooking_Overlap(t *testing.T) {
	f := newFixture()
	svc := f.bookingService()

	first := f.bookingInput()
	first.ProfessionalID = &f.professional.ID
	_, err := svc.CreateWidgetBooking(context.Background(), first)
	require.NoError(t, err)

	second := f.bookingInput()
	second.ProfessionalID = &f.professional.ID
	second.CustomerEmail = "other@example.com"
	second.Time = "10:15 - 10:45"
	_, err = svc.CreateWidgetBooking(context.Background(), second)
	httpErr := requireHTTPError(t, err, http.StatusConflict)
	assert.Equal(t, "SLOT_UNAVAILABLE", httpErr.Code)

	// Back to back is fine.
	second.Time = "10:30"
	_, err = svc.CreateWidgetBooking(context.Background(), second)
	require.NoError(t, err)

	// No preference is a separate scope from the professional's bookings.
	second.ProfessionalID = nil
	second.Time = "10:00"
	_, err = svc.CreateWidgetBooking(context.Background(), second)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BookingConflicts.WithLabelValues("overlap")))
}

func TestCreateWidgetBooking_SideEffectFailuresAreIgnored(t *testing.T) {
	f := newFixture()
	f.notifications.err = errors.New("db down")
	f.queue.err = errors.New("redis down")

	d, err := f.bookingService().CreateWidgetBooking(context.Background(), f.bookingInput())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, d.ID)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Notifications.WithLabelValues("NEW_BOOKING", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.EmailsEnqueued.WithLabelValues(job.TaskBookingReceipt, "error")))
}

func TestAvailableSlots(t *testing.T) {
	f := newFixture()
	_, err := f.availability.ReplaceForService(context.Background(), f.service.ID, []model.AvailabilityInput{
		{DayOfWeek: int(time.Tuesday), StartTime: "09:00", EndTime: "10:30"},
		{DayOfWeek: int(time.Wednesday), StartTime: "09:00", EndTime: "18:00"},
	})
	require.NoError(t, err)
	svc := f.bookingService()

	in := f.bookingInput()
	in.Time = "09:30"
	_, err = svc.CreateWidgetBooking(context.Background(), in)
	require.NoError(t, err)

	res, err := svc.AvailableSlots(context.Background(), SlotsInput{
		TenantID:  f.tenant.ID,
		ServiceID: f.service.ID,
		Date:      "2026-03-03",
	})
	require.NoError(t, err)

	assert.Equal(t, "2026-03-03", res.Date)
	assert.Equal(t, "Europe/Madrid", res.Timezone)
	assert.Equal(t, 30, res.Duration)

	var labels []string
	for _, s := range res.Slots {
		labels = append(labels, s.Label)
	}
	assert.Equal(t, []string{"09:00 - 09:30", "10:00 - 10:30"}, labels)

	// The professional's calendar is empty.
	res, err = svc.AvailableSlots(context.Background(), SlotsInput{
		TenantID:       f.tenant.ID,
		ServiceID:      f.service.ID,
		ProfessionalID: &f.professional.ID,
		Date:           "2026-03-03",
	})
	require.NoError(t, err)
	assert.Len(t, res.Slots, 3)
}

func TestAvailableSlots_PastAndClosedDays(t *testing.T) {
	f := newFixture()
	_, err := f.availability.ReplaceForService(context.Background(), f.service.ID, []model.AvailabilityInput{
		{DayOfWeek: int(time.Monday), StartTime: "08:00", EndTime: "10:00"},
	})
	require.NoError(t, err)
	svc := f.bookingService()

	// Now is 09:00 in Madrid.
	res, err := svc.AvailableSlots(context.Background(), SlotsInput{TenantID: f.tenant.ID, ServiceID: f.service.ID, Date: "2026-03-02"})
	require.NoError(t, err)
	require.Len(t, res.Slots, 2)
	assert.Equal(t, "09:00 - 09:30", res.Slots[0].Label)

	res, err = svc.AvailableSlots(context.Background(), SlotsInput{TenantID: f.tenant.ID, ServiceID: f.service.ID, Date: "2026-03-04"})
	require.NoError(t, err)
	assert.NotNil(t, res.Slots)
	assert.Empty(t, res.Slots)

	_, err = svc.AvailableSlots(context.Background(), SlotsInput{TenantID: f.tenant.ID, ServiceID: f.service.ID, Date: "tomorrow"})
	requireHTTPError(t, err, http.StatusBadRequest)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture()
	svc := f.bookingService()

	d, err := svc.CreateWidgetBooking(context.Background(), f.bookingInput())
	require.NoError(t, err)
	f.queue.sent = nil
	f.notifications.created = nil

	updated, err := svc.UpdateStatus(context.Background(), f.tenant.ID, d.ID, model.BookingStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, updated.Status)

	require.Len(t, f.notifications.created, 1)
	assert.Equal(t, model.NotificationBookingConfirmed, f.notifications.created[0].Type)
	assert.Equal(t, []string{job.TaskBookingStatus}, f.queue.tasks())
	assert.Equal(t, "CONFIRMED", f.queue.sent[0].data.Status)

	_, err = svc.UpdateStatus(context.Background(), f.tenant.ID, d.ID, model.BookingStatusPending)
	httpErr := requireHTTPError(t, err, http.StatusConflict)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", httpErr.Code)

	_, err = svc.UpdateStatus(context.Background(), f.tenant.ID, d.ID, model.BookingStatusNoShow)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), f.tenant.ID, d.ID, model.BookingStatusCancelled)
	requireHTTPError(t, err, http.StatusConflict)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BookingStatusChanges.WithLabelValues("NO_SHOW")))
}

func TestUpdateStatus_OtherTenantAndRace(t *testing.T) {
	f := newFixture()
	svc := f.bookingService()

	d, err := svc.CreateWidgetBooking(context.Background(), f.bookingInput())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), uuid.New(), d.ID, model.BookingStatusConfirmed)
	httpErr := requireHTTPError(t, err, http.StatusNotFound)
	assert.Equal(t, "Booking not found", httpErr.Message)

	f.bookings.raceTo = true
	_, err = svc.UpdateStatus(context.Background(), f.tenant.ID, d.ID, model.BookingStatusConfirmed)
	httpErr = requireHTTPError(t, err, http.StatusConflict)
	assert.Equal(t, "STATUS_CHANGED", httpErr.Code)
}

func TestListForTenant_ForcesTenant(t *testing.T) {
	f := newFixture()
	other := uuid.New()

	_, err := f.bookingService().ListForTenant(context.Background(), f.tenant.ID, model.BookingFilter{
		TenantID: &other,
		Limit:    500,
		Offset:   -3,
	})
	require.NoError(t, err)

	require.NotNil(t, f.bookings.lastList.TenantID)
	assert.Equal(t, f.tenant.ID, *f.bookings.lastList.TenantID)
	assert.Equal(t, model.MaxPageLimit, f.bookings.lastList.Limit)
	assert.Equal(t, 0, f.bookings.lastList.Offset)
}

func TestParseProfessionalPreference(t *testing.T) {
	id := uuid.New()

	got, err := ParseProfessionalPreference(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, *got)

	for _, raw := range []string{"", "any", "ANY", "  "} {
		got, err := ParseProfessionalPreference(raw)
		require.NoError(t, err)
		assert.Nil(t, got)
	}

	_, err = ParseProfessionalPreference("nobody")
	requireHTTPError(t, err, http.StatusBadRequest)
}
