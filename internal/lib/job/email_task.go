package job

import (
	"encoding/json"
	"time"

	"github.com/deppfellow/booking-now/internal/lib/email"
	"github.com/hibiken/asynq"
)

// Task type names stored in Redis. Asynq routes on these.
const (
	TaskNewBookingAlert = "email:new_booking_alert"
	TaskBookingReceipt  = "email:booking_receipt"
	TaskBookingStatus   = "email:booking_status"
	TaskBookingReminder = "email:booking_reminder"
)

const (
	emailMaxRetry = 3
	emailTimeout  = 30 * time.Second
)

// taskQueues puts messages the customer waits on ahead of staff alerts.
var taskQueues = map[string]string{
	TaskNewBookingAlert: "default",
	TaskBookingReceipt:  "critical",
	TaskBookingStatus:   "critical",
	TaskBookingReminder: "default",
}

// BookingEmailPayload is the JSON payload of every booking email task. The
// email data is rendered ahead of time so workers never touch the database.
type BookingEmailPayload struct {
	To   string             `json:"to"`
	Data email.BookingEmail `json:"data"`
}

// NewBookingEmailTask builds a task of taskType with retry, queue and
// timeout options set.
func NewBookingEmailTask(taskType, to string, data email.BookingEmail) (*asynq.Task, error) {
	payload, err := json.Marshal(BookingEmailPayload{
		To:   to,
		Data: data,
	})
	if err != nil {
		return nil, err
	}

	queue, ok := taskQueues[taskType]
	if !ok {
		queue = "low"
	}

	return asynq.NewTask(
		taskType,
		payload,
		asynq.MaxRetry(emailMaxRetry),
		asynq.Queue(queue),
		asynq.Timeout(emailTimeout),
	), nil
}
