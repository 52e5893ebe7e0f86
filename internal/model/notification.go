package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationNewBooking       NotificationType = "NEW_BOOKING"
	NotificationBookingConfirmed NotificationType = "BOOKING_CONFIRMED"
	NotificationBookingCancelled NotificationType = "BOOKING_CANCELLED"
	NotificationBookingCompleted NotificationType = "BOOKING_COMPLETED"
	NotificationBookingNoShow    NotificationType = "BOOKING_NO_SHOW"
	NotificationBookingReminder  NotificationType = "BOOKING_REMINDER"
)

type Notification struct {
	ID        uuid.UUID        `json:"id"`
	TenantID  uuid.UUID        `json:"tenantId"`
	BookingID *uuid.UUID       `json:"bookingId"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}

// NotificationForStatus maps a booking status to the notification it raises.
func NotificationForStatus(status BookingStatus) (NotificationType, bool) {
	switch status {
	case BookingStatusConfirmed:
		return NotificationBookingConfirmed, true
	case BookingStatusCancelled:
		return NotificationBookingCancelled, true
	case BookingStatusCompleted:
		return NotificationBookingCompleted, true
	case BookingStatusNoShow:
		return NotificationBookingNoShow, true
	}
	return "", false
}

// NotificationTimeLayout formats slot times inside notification messages.
const NotificationTimeLayout = "Mon, Jan 2 2006 at 15:04"

// NotificationMessages returns the title and message for a notification.
// start should already be in the tenant's timezone.
func NotificationMessages(t NotificationType, customerName, serviceName string, start time.Time) (string, string) {
	when := start.Format(NotificationTimeLayout)

	switch t {
	case NotificationNewBooking:
		return "New booking",
			fmt.Sprintf("%s booked %s for %s", customerName, serviceName, when)
	case NotificationBookingConfirmed:
		return "Booking confirmed",
			fmt.Sprintf("The booking of %s for %s on %s was confirmed", customerName, serviceName, when)
	case NotificationBookingCancelled:
		return "Booking cancelled",
			fmt.Sprintf("The booking of %s for %s on %s was cancelled", customerName, serviceName, when)
	case NotificationBookingCompleted:
		return "Booking completed",
			fmt.Sprintf("%s completed %s on %s", customerName, serviceName, when)
	case NotificationBookingNoShow:
		return "Customer did not show up",
			fmt.Sprintf("%s did not show up for %s on %s", customerName, serviceName, when)
	case NotificationBookingReminder:
		return "Upcoming booking",
			fmt.Sprintf("Reminder: %s has %s on %s", customerName, serviceName, when)
	default:
		return "Notification",
			fmt.Sprintf("Update on the booking of %s for %s on %s", customerName, serviceName, when)
	}
}
