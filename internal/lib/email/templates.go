package email

import (
	"embed"
	"html/template"

	"github.com/Masterminds/sprig/v3"
)

// Template names an embedded file under templates/ without its extension.
type Template string

const (
	TemplateNewBooking      Template = "new_booking"
	TemplateBookingReceived Template = "booking_received"
	TemplateBookingStatus   Template = "booking_status"
	TemplateBookingReminder Template = "booking_reminder"
)

// Templates lists every template, for previews and tests.
var Templates = []Template{
	TemplateNewBooking,
	TemplateBookingReceived,
	TemplateBookingStatus,
	TemplateBookingReminder,
}

//go:embed templates/*.html
var templateFS embed.FS

// parseTemplates compiles all templates with the sprig function map.
func parseTemplates() (*template.Template, error) {
	return template.New("emails").
		Funcs(sprig.FuncMap()).
		ParseFS(templateFS, "templates/*.html")
}
