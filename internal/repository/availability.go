package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/booking-now/internal/model"
	"github.com/deppfellow/booking-now/internal/server"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AvailabilityRepository struct {
	server *server.Server
}

func NewAvailabilityRepository(s *server.Server) *AvailabilityRepository {
	return &AvailabilityRepository{server: s}
}

const availabilityColumns = `id, service_id, day_of_week, start_time, end_time, is_active, created_at`

func collectAvailability(rows pgx.Rows) ([]model.Availability, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Availability, error) {
		var a model.Availability
		err := row.Scan(&a.ID, &a.ServiceID, &a.DayOfWeek, &a.StartTime, &a.EndTime, &a.IsActive, &a.CreatedAt)
		return a, err
	})
}

// ListByService returns all windows of a service, active or not.
func (r *AvailabilityRepository) ListByService(ctx context.Context, serviceID uuid.UUID) ([]model.Availability, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT `+availabilityColumns+` FROM service_availability
		 WHERE service_id = $1 ORDER BY day_of_week, start_time`,
		serviceID)
	if err != nil {
		return nil, fmt.Errorf("listing availability: %w", err)
	}
	return collectAvailability(rows)
}

func (r *AvailabilityRepository) ListActiveByService(ctx context.Context, serviceID uuid.UUID) ([]model.Availability, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT `+availabilityColumns+` FROM service_availability
		 WHERE service_id = $1 AND is_active ORDER BY day_of_week, start_time`,
		serviceID)
	if err != nil {
		return nil, fmt.Errorf("listing availability: %w", err)
	}
	return collectAvailability(rows)
}

func insertWindows(batch *pgx.Batch, serviceID uuid.UUID, windows []model.AvailabilityInput) {
	for _, w := range windows {
		batch.Queue(`
			INSERT INTO service_availability (service_id, day_of_week, start_time, end_time, is_active)
			VALUES ($1, $2, $3, $4, $5)`,
			serviceID, w.DayOfWeek, w.StartTime, w.EndTime, w.Active())
	}
}

// ReplaceForService swaps every window of a service in one transaction.
func (r *AvailabilityRepository) ReplaceForService(ctx context.Context, serviceID uuid.UUID, windows []model.AvailabilityInput) ([]model.Availability, error) {
	var out []model.Availability

	err := pgx.BeginFunc(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM service_availability WHERE service_id = $1`, serviceID); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		insertWindows(batch, serviceID, windows)
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}

		rows, err := tx.Query(ctx,
			`SELECT `+availabilityColumns+` FROM service_availability
			 WHERE service_id = $1 ORDER BY day_of_week, start_time`,
			serviceID)
		if err != nil {
			return err
		}
		out, err = collectAvailability(rows)
		return err
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// ResetAll deletes every availability row, then gives each service the same
// windows. onService is called after each service's rows are queued and
// written. Returns the table's row count after the reset.
func (r *AvailabilityRepository) ResetAll(
	ctx context.Context,
	services []model.Service,
	windows []model.AvailabilityInput,
	onService func(model.Service),
) (int64, error) {
	var total int64

	err := pgx.BeginFunc(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM service_availability`); err != nil {
			return fmt.Errorf("clearing availability: %w", err)
		}

		for _, svc := range services {
			batch := &pgx.Batch{}
			insertWindows(batch, svc.ID, windows)
			if err := tx.SendBatch(ctx, batch).Close(); err != nil {
				return fmt.Errorf("creating availability for %s: %w", svc.Name, err)
			}
			if onService != nil {
				onService(svc)
			}
		}

		return tx.QueryRow(ctx, `SELECT COUNT(*) FROM service_availability`).Scan(&total)
	})
	if err != nil {
		return 0, err
	}

	return total, nil
}
