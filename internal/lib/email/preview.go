package email

import (
	"time"
)

// PreviewData is sample template data for local previews.
var PreviewData = BookingEmail{
	Subject:          "Preview",
	BookingID:        "3f1c2a9e-7b44-4f0e-9a55-1c2d3e4f5a6b",
	TenantName:       "Studio Nova",
	Timezone:         "Europe/Madrid",
	CustomerName:     "ana lopez",
	CustomerEmail:    "ana@example.com",
	ServiceName:      "Haircut",
	ProfessionalName: "Marta",
	Start:            time.Date(2026, time.March, 9, 10, 0, 0, 0, time.UTC),
	End:              time.Date(2026, time.March, 9, 10, 30, 0, 0, time.UTC),
	Price:            "25.00",
	Status:           "NO_SHOW",
	Notes:            "First visit",
}

// Preview renders name with PreviewData.
func (c *Client) Preview(name Template) (string, error) {
	return c.Render(name, PreviewData)
}
