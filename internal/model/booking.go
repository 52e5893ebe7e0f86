package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusNoShow    BookingStatus = "NO_SHOW"
)

// ActiveBookingStatuses occupy a slot.
var ActiveBookingStatuses = []BookingStatus{BookingStatusPending, BookingStatusConfirmed}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled, BookingStatusNoShow},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled,
		BookingStatusCompleted, BookingStatusNoShow:
		return true
	}
	return false
}

func (s BookingStatus) IsActive() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// CanTransition reports whether a booking may move from s to next.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// StatusStrings renders statuses for SQL ANY($n) arguments.
func StatusStrings(statuses []BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

type Booking struct {
	Base
	TenantID       uuid.UUID       `json:"tenantId"`
	ServiceID      uuid.UUID       `json:"serviceId"`
	ProfessionalID *uuid.UUID      `json:"professionalId"`
	ClientID       uuid.UUID       `json:"clientId"`
	StartDateTime  time.Time       `json:"startDateTime"`
	EndDateTime    time.Time       `json:"endDateTime"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	Notes          string          `json:"notes"`
	Status         BookingStatus   `json:"status"`
	ReminderSentAt *time.Time      `json:"reminderSentAt"`
}

// BookingService is the service snapshot embedded in booking responses.
type BookingService struct {
	Name     string          `json:"name"`
	Duration int             `json:"duration"`
	Price    decimal.Decimal `json:"price"`
}

// BookingPerson is a name/email pair for the client or professional.
type BookingPerson struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DisplayName falls back to the email when no name was stored.
func (p BookingPerson) DisplayName() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return p.Email
}

// BookingDetails is a booking joined with its service, professional, client
// and tenant.
type BookingDetails struct {
	ID             uuid.UUID       `json:"id"`
	TenantID       uuid.UUID       `json:"tenantId"`
	TenantName     string          `json:"tenantName"`
	TenantTimezone string          `json:"-"`
	ServiceID      uuid.UUID       `json:"serviceId"`
	ProfessionalID *uuid.UUID      `json:"professionalId"`
	StartDateTime  time.Time       `json:"startDateTime"`
	EndDateTime    time.Time       `json:"endDateTime"`
	Service        BookingService  `json:"service"`
	Professional   *BookingPerson  `json:"professional"`
	Client         BookingPerson   `json:"client"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	Notes          string          `json:"notes"`
	Status         BookingStatus   `json:"status"`
	ReminderSentAt *time.Time      `json:"reminderSentAt"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// BookingSummary is the widget's view of a freshly created booking.
type BookingSummary struct {
	ID            uuid.UUID       `json:"id"`
	StartDateTime time.Time       `json:"startDateTime"`
	EndDateTime   time.Time       `json:"endDateTime"`
	Service       BookingService  `json:"service"`
	Professional  *BookingPerson  `json:"professional"`
	Client        BookingPerson   `json:"client"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Status        BookingStatus   `json:"status"`
}

func (d *BookingDetails) Summary() BookingSummary {
	return BookingSummary{
		ID:            d.ID,
		StartDateTime: d.StartDateTime,
		EndDateTime:   d.EndDateTime,
		Service:       d.Service,
		Professional:  d.Professional,
		Client:        d.Client,
		TotalPrice:    d.TotalPrice,
		Status:        d.Status,
	}
}

// Location resolves the tenant timezone, falling back to UTC.
func (d *BookingDetails) Location() *time.Location {
	t := Tenant{Timezone: d.TenantTimezone}
	return t.Location(time.UTC)
}

// BookingFilter narrows booking listings. Nil fields are not applied.
type BookingFilter struct {
	TenantID       *uuid.UUID
	Status         *BookingStatus
	ProfessionalID *uuid.UUID
	From           *time.Time
	To             *time.Time
	Limit          int
	Offset         int
}

// ConflictScope identifies the set of bookings a new booking must not overlap:
// the professional's, or for "no preference" the service's unassigned ones.
type ConflictScope struct {
	ServiceID      uuid.UUID
	ProfessionalID *uuid.UUID
}

// Key is the advisory lock key for the scope.
func (c ConflictScope) Key() string {
	if c.ProfessionalID != nil {
		return "booking:professional:" + c.ProfessionalID.String()
	}
	return "booking:service:" + c.ServiceID.String()
}

// TimeRange is a half-open interval [Start, End).
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
