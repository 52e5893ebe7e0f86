package model

import (
	"time"

	"github.com/google/uuid"
)

// Availability is one weekly opening window of a service. DayOfWeek follows
// time.Weekday (0 = Sunday). Times are "HH:MM" in the tenant timezone.
type Availability struct {
	ID        uuid.UUID `json:"id"`
	ServiceID uuid.UUID `json:"serviceId"`
	DayOfWeek int       `json:"dayOfWeek"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// AvailabilityInput is a window to be stored.
type AvailabilityInput struct {
	DayOfWeek int    `json:"dayOfWeek" validate:"min=0,max=6"`
	StartTime string `json:"startTime" validate:"required,len=5"`
	EndTime   string `json:"endTime" validate:"required,len=5"`
	IsActive  *bool  `json:"isActive"`
}

// Active defaults to true when the flag is omitted.
func (a AvailabilityInput) Active() bool {
	return a.IsActive == nil || *a.IsActive
}
