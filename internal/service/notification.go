package service

import (
	"context"
	"time"

	"github.com/deppfellow/booking-now/internal/errs"
	"github.com/deppfellow/booking-now/internal/lib/job"
	"github.com/deppfellow/booking-now/internal/metrics"
	"github.com/deppfellow/booking-now/internal/model"
	"github.com/deppfellow/booking-now/internal/repository"
	"github.com/deppfellow/booking-now/internal/server"
	"github.com/deppfellow/booking-now/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// reminderBatch caps how many bookings one sweep claims.
const reminderBatch = 100

// NotificationService records in-app notifications and queues the matching
// emails. Dispatch is best effort: failures are logged and counted, never
// returned to the booking flow.
type NotificationService struct {
	notifications  NotificationStore
	bookings       BookingStore
	queue          EmailQueue
	metrics        *metrics.Metrics
	logger         *zerolog.Logger
	reminderWindow time.Duration
	now            func() time.Time
}

func NewNotificationService(s *server.Server, notifications NotificationStore, bookings BookingStore, queue EmailQueue) *NotificationService {
	return &NotificationService{
		notifications:  notifications,
		bookings:       bookings,
		queue:          queue,
		metrics:        s.Metrics,
		logger:         s.Logger,
		reminderWindow: s.Config.Booking.ReminderWindow,
		now:            time.Now,
	}
}

// notify stores one notification for the booking's tenant.
func (s *NotificationService) notify(ctx context.Context, d *model.BookingDetails, t model.NotificationType) {
	title, message := model.NotificationMessages(t, d.Client.DisplayName(), d.Service.Name, d.StartDateTime.In(d.Location()))

	bookingID := d.ID
	_, err := s.notifications.Create(ctx, repository.CreateNotificationParams{
		TenantID:  d.TenantID,
		BookingID: &bookingID,
		Type:      t,
		Title:     title,
		Message:   message,
	})

	s.metrics.Notifications.WithLabelValues(string(t), metrics.Outcome(err)).Inc()
	if err != nil {
		loggerFrom(ctx, s.logger).Error().
			Err(err).
			Str("booking_id", d.ID.String()).
			Str("type", string(t)).
			Msg("failed to create notification")
	}
}

func (s *NotificationService) enqueue(ctx context.Context, taskType, to string, d *model.BookingDetails) {
	if to == "" {
		return
	}

	err := s.queue.EnqueueBookingEmail(ctx, taskType, to, bookingEmail(d))

	s.metrics.EmailsEnqueued.WithLabelValues(taskType, metrics.Outcome(err)).Inc()
	if err != nil {
		loggerFrom(ctx, s.logger).Error().
			Err(err).
			Str("booking_id", d.ID.String()).
			Str("task", taskType).
			Msg("failed to enqueue booking email")
	}
}

// BookingCreated notifies the tenant about a new booking, then emails the
// tenant an alert and the customer a receipt.
func (s *NotificationService) BookingCreated(ctx context.Context, d *model.BookingDetails, tenantEmail string) {
	s.notify(ctx, d, model.NotificationNewBooking)
	s.enqueue(ctx, job.TaskNewBookingAlert, tenantEmail, d)
	s.enqueue(ctx, job.TaskBookingReceipt, d.Client.Email, d)
}

// BookingStatusChanged notifies the tenant and emails the customer.
func (s *NotificationService) BookingStatusChanged(ctx context.Context, d *model.BookingDetails) {
	if t, ok := model.NotificationForStatus(d.Status); ok {
		s.notify(ctx, d, t)
	}
	s.enqueue(ctx, job.TaskBookingStatus, d.Client.Email, d)
}

// SendDueReminders claims bookings starting within the reminder window and
// queues their reminders. A claimed booking is never reminded twice, even if
// its email fails to queue.
func (s *NotificationService) SendDueReminders(ctx context.Context) (int, error) {
	due, err := s.bookings.ClaimDueReminders(ctx, s.now(), s.reminderWindow, reminderBatch)
	if err != nil {
		return 0, err
	}

	for i := range due {
		d := &due[i]
		s.notify(ctx, d, model.NotificationBookingReminder)
		s.enqueue(ctx, job.TaskBookingReminder, d.Client.Email, d)
	}

	s.metrics.RemindersSent.Add(float64(len(due)))
	if len(due) > 0 {
		s.logger.Info().Int("count", len(due)).Msg("booking reminders queued")
	}

	return len(due), nil
}

type ListNotificationsInput struct {
	TenantID   uuid.UUID
	UnreadOnly bool
	Limit      int
	Offset     int
}

func (s *NotificationService) List(ctx context.Context, in ListNotificationsInput) (*model.PaginatedResponse[model.Notification], error) {
	limit, offset := model.NormalizePage(in.Limit, in.Offset)

	return s.notifications.List(ctx, repository.NotificationFilter{
		TenantID:   in.TenantID,
		UnreadOnly: in.UnreadOnly,
		Limit:      limit,
		Offset:     offset,
	})
}

func (s *NotificationService) MarkRead(ctx context.Context, tenantID, id uuid.UUID) (*model.Notification, error) {
	n, err := s.notifications.MarkRead(ctx, tenantID, id)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, errs.NewNotFoundError("Notification not found", true, nil)
		}
		return nil, err
	}
	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return s.notifications.MarkAllRead(ctx, tenantID)
}
