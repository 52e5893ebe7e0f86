package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/deppfellow/booking-now/internal/config"
	"github.com/deppfellow/booking-now/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// InitHandlers builds the email client the task handlers send through.
func (j *JobService) InitHandlers(cfg *config.Config, logger *zerolog.Logger) error {
	client, err := email.NewClient(cfg, logger)
	if err != nil {
		return err
	}
	j.emails = client
	return nil
}

func (j *JobService) senderFor(taskType string) (func(string, email.BookingEmail) error, error) {
	if j.emails == nil {
		return nil, fmt.Errorf("email sender not initialized")
	}

	switch taskType {
	case TaskNewBookingAlert:
		return j.emails.SendNewBookingAlert, nil
	case TaskBookingReceipt:
		return j.emails.SendBookingReceipt, nil
	case TaskBookingStatus:
		return j.emails.SendBookingStatus, nil
	case TaskBookingReminder:
		return j.emails.SendBookingReminder, nil
	}
	return nil, fmt.Errorf("unknown email task type %q", taskType)
}

// handleBookingEmailTask delivers any of the booking email tasks. A returned
// error makes asynq retry the task.
func (j *JobService) handleBookingEmailTask(ctx context.Context, t *asynq.Task) error {
	var p BookingEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal booking email payload: %w: %w", err, asynq.SkipRetry)
	}

	send, err := j.senderFor(t.Type())
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	log := j.logger.With().
		Str("type", t.Type()).
		Str("to", p.To).
		Str("booking_id", p.Data.BookingID).
		Logger()

	log.Info().Msg("Processing booking email task")

	if err := send(p.To, p.Data); err != nil {
		log.Error().Err(err).Msg("Failed to send booking email")
		return err
	}

	log.Info().Msg("Successfully sent booking email")
	return nil
}
