// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data
package service

import (
	"context"

	"github.com/deppfellow/booking-now/internal/lib/email"
	"github.com/deppfellow/booking-now/internal/model"
	"github.com/rs/zerolog"
)

// loggerFrom prefers the request-scoped logger the context middleware puts on
// ctx. Background callers get fallback.
func loggerFrom(ctx context.Context, fallback *zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return fallback
}

// bookingEmail renders a booking into template data, with times in the
// tenant's timezone.
func bookingEmail(d *model.BookingDetails) email.BookingEmail {
	loc := d.Location()

	data := email.BookingEmail{
		BookingID:     d.ID.String(),
		TenantName:    d.TenantName,
		Timezone:      loc.String(),
		CustomerName:  d.Client.Name,
		CustomerEmail: d.Client.Email,
		ServiceName:   d.Service.Name,
		Start:         d.StartDateTime.In(loc),
		End:           d.EndDateTime.In(loc),
		Price:         d.TotalPrice.StringFixed(2),
		Status:        string(d.Status),
		Notes:         d.Notes,
	}
	if d.Professional != nil {
		data.ProfessionalName = d.Professional.Name
	}
	return data
}
