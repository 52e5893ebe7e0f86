package email

import (
	"fmt"
	"time"
)

// BookingEmail is the data every booking template renders. Start and End
// must already be in the tenant's timezone.
type BookingEmail struct {
	Subject          string
	BookingID        string
	TenantName       string
	Timezone         string
	CustomerName     string
	CustomerEmail    string
	ServiceName      string
	ProfessionalName string
	Start            time.Time
	End              time.Time
	Price            string
	Status           string
	Notes            string
}

// Sender is the set of booking emails the job handlers deliver.
type Sender interface {
	SendNewBookingAlert(to string, data BookingEmail) error
	SendBookingReceipt(to string, data BookingEmail) error
	SendBookingStatus(to string, data BookingEmail) error
	SendBookingReminder(to string, data BookingEmail) error
}

var _ Sender = (*Client)(nil)

func (c *Client) send(to string, tmpl Template, data BookingEmail) error {
	return c.SendEmail(to, data.Subject, tmpl, data)
}

// SendNewBookingAlert tells the tenant about a new request.
func (c *Client) SendNewBookingAlert(to string, data BookingEmail) error {
	data.Subject = fmt.Sprintf("New booking: %s with %s", data.ServiceName, data.CustomerName)
	return c.send(to, TemplateNewBooking, data)
}

// SendBookingReceipt confirms to the customer that the request arrived.
func (c *Client) SendBookingReceipt(to string, data BookingEmail) error {
	data.Subject = fmt.Sprintf("We received your booking at %s", data.TenantName)
	return c.send(to, TemplateBookingReceived, data)
}

func (c *Client) SendBookingStatus(to string, data BookingEmail) error {
	data.Subject = fmt.Sprintf("Your booking at %s was updated", data.TenantName)
	return c.send(to, TemplateBookingStatus, data)
}

func (c *Client) SendBookingReminder(to string, data BookingEmail) error {
	data.Subject = fmt.Sprintf("Reminder: %s on %s", data.ServiceName, data.Start.Format("Jan 2 at 15:04"))
	return c.send(to, TemplateBookingReminder, data)
}
