package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_RedirectPath(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleAdmin, "/admin"},
		{RoleTenantAdmin, "/tenant"},
		{RoleProfessional, "/tenant"},
		{RoleClient, "/"},
		{Role("UNKNOWN"), "/"},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.RedirectPath())
		})
	}
}

func TestRole_IsTenant(t *testing.T) {
	assert.True(t, RoleTenantAdmin.IsTenant())
	assert.True(t, RoleProfessional.IsTenant())
	assert.False(t, RoleAdmin.IsTenant())
	assert.False(t, RoleClient.IsTenant())
}

func TestBookingStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		want     bool
	}{
		{BookingStatusPending, BookingStatusConfirmed, true},
		{BookingStatusPending, BookingStatusCancelled, true},
		{BookingStatusPending, BookingStatusCompleted, false},
		{BookingStatusPending, BookingStatusNoShow, false},
		{BookingStatusConfirmed, BookingStatusCompleted, true},
		{BookingStatusConfirmed, BookingStatusCancelled, true},
		{BookingStatusConfirmed, BookingStatusNoShow, true},
		{BookingStatusConfirmed, BookingStatusPending, false},
		{BookingStatusCancelled, BookingStatusConfirmed, false},
		{BookingStatusCompleted, BookingStatusCancelled, false},
		{BookingStatusNoShow, BookingStatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestBookingStatus_Valid(t *testing.T) {
	assert.True(t, BookingStatusNoShow.Valid())
	assert.False(t, BookingStatus("DONE").Valid())
	assert.Equal(t, []string{"PENDING", "CONFIRMED"}, StatusStrings(ActiveBookingStatuses))
}

func TestNotificationForStatus(t *testing.T) {
	typ, ok := NotificationForStatus(BookingStatusNoShow)
	require.True(t, ok)
	assert.Equal(t, NotificationBookingNoShow, typ)

	_, ok = NotificationForStatus(BookingStatusPending)
	assert.False(t, ok)
}

func TestNotificationMessages(t *testing.T) {
	start := time.Date(2026, time.March, 9, 14, 30, 0, 0, time.UTC)

	types := []NotificationType{
		NotificationNewBooking,
		NotificationBookingConfirmed,
		NotificationBookingCancelled,
		NotificationBookingCompleted,
		NotificationBookingNoShow,
		NotificationBookingReminder,
	}

	titles := map[string]bool{}
	for _, typ := range types {
		title, message := NotificationMessages(typ, "Ana", "Haircut", start)
		assert.NotEmpty(t, title)
		assert.Contains(t, message, "Ana")
		assert.Contains(t, message, "Haircut")
		assert.Contains(t, message, "Mon, Mar 9 2026 at 14:30")
		titles[title] = true
	}
	assert.Len(t, titles, len(types), "every type has its own title")

	title, _ := NotificationMessages(NotificationNewBooking, "Ana", "Haircut", start)
	assert.Equal(t, "New booking", title)
}

func TestNormalizePage(t *testing.T) {
	limit, offset := NormalizePage(0, -5)
	assert.Equal(t, DefaultPageLimit, limit)
	assert.Equal(t, 0, offset)

	limit, offset = NormalizePage(500, 40)
	assert.Equal(t, MaxPageLimit, limit)
	assert.Equal(t, 40, offset)
}

func TestConflictScope_Key(t *testing.T) {
	serviceID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	proID := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	assert.Equal(t, "booking:service:"+serviceID.String(), ConflictScope{ServiceID: serviceID}.Key())
	assert.Equal(t, "booking:professional:"+proID.String(), ConflictScope{ServiceID: serviceID, ProfessionalID: &proID}.Key())
}

func TestTenant_Location(t *testing.T) {
	tenant := Tenant{Timezone: "America/Bogota"}
	assert.Equal(t, "America/Bogota", tenant.Location(time.UTC).String())

	tenant.Timezone = "Mars/Olympus"
	assert.Equal(t, time.UTC, tenant.Location(time.UTC))

	tenant.Timezone = ""
	assert.Equal(t, time.UTC, tenant.Location(time.UTC))
}

func TestBookingPerson_DisplayName(t *testing.T) {
	assert.Equal(t, "Maria", BookingPerson{Name: "Maria", Email: "maria@example.com"}.DisplayName())
	assert.Equal(t, "maria@example.com", BookingPerson{Name: "  ", Email: "maria@example.com"}.DisplayName())
	assert.Equal(t, "maria@example.com", BookingPerson{Email: "maria@example.com"}.DisplayName())
}

func TestUser_DisplayName(t *testing.T) {
	u := User{Email: "ana@example.com"}
	assert.Equal(t, "ana@example.com", u.DisplayName())

	u.Name = "Ana"
	assert.Equal(t, "Ana", u.DisplayName())
}
