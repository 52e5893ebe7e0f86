package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/deppfellow/booking-now/internal/model"
	"github.com/deppfellow/booking-now/internal/server"
	"github.com/deppfellow/booking-now/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	// ErrBookingConflict means the slot overlaps an active booking in the
	// same conflict scope.
	ErrBookingConflict = errors.New("booking overlaps an existing booking")

	// ErrBookingStatusChanged means the booking left the expected status
	// between read and update.
	ErrBookingStatusChanged = errors.New("booking status changed concurrently")
)

type BookingRepository struct {
	server *server.Server
}

func NewBookingRepository(s *server.Server) *BookingRepository {
	return &BookingRepository{server: s}
}

var bookingDetailColumns = []string{
	"b.id", "b.tenant_id", "t.name", "t.timezone", "b.service_id", "b.professional_id",
	"b.start_date_time", "b.end_date_time",
	"s.name", "s.duration", "s.price",
	"pu.name", "pu.email",
	"c.name", "c.email",
	"b.total_price", "b.notes", "b.status", "b.reminder_sent_at", "b.created_at",
}

// bookingDetailsQuery selects bookings joined with everything a response
// needs. The professional side is optional.
func bookingDetailsQuery() sq.SelectBuilder {
	return psql.Select(bookingDetailColumns...).
		From("bookings b").
		Join("tenants t ON t.id = b.tenant_id").
		Join("services s ON s.id = b.service_id").
		Join("users c ON c.id = b.client_id").
		LeftJoin("professionals p ON p.id = b.professional_id").
		LeftJoin("users pu ON pu.id = p.user_id")
}

func scanBookingDetails(row pgx.Row) (*model.BookingDetails, error) {
	var (
		d        model.BookingDetails
		proName  *string
		proEmail *string
	)

	err := row.Scan(
		&d.ID, &d.TenantID, &d.TenantName, &d.TenantTimezone, &d.ServiceID, &d.ProfessionalID,
		&d.StartDateTime, &d.EndDateTime,
		&d.Service.Name, &d.Service.Duration, &d.Service.Price,
		&proName, &proEmail,
		&d.Client.Name, &d.Client.Email,
		&d.TotalPrice, &d.Notes, &d.Status, &d.ReminderSentAt, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if proName != nil || proEmail != nil {
		d.Professional = &model.BookingPerson{}
		if proName != nil {
			d.Professional.Name = *proName
		}
		if proEmail != nil {
			d.Professional.Email = *proEmail
		}
	}

	return &d, nil
}

func collectBookingDetails(rows pgx.Rows) ([]model.BookingDetails, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.BookingDetails, error) {
		d, err := scanBookingDetails(row)
		if err != nil {
			return model.BookingDetails{}, err
		}
		return *d, nil
	})
}

func (r *BookingRepository) getDetails(ctx context.Context, db DBTX, where sq.Eq) (*model.BookingDetails, error) {
	query, args, err := bookingDetailsQuery().Where(where).ToSql()
	if err != nil {
		return nil, err
	}

	d, err := scanBookingDetails(db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, sqlerr.WrapNotFound("bookings", err)
	}
	return d, nil
}

func (r *BookingRepository) GetDetails(ctx context.Context, id uuid.UUID) (*model.BookingDetails, error) {
	return r.getDetails(ctx, r.server.DB.Pool, sq.Eq{"b.id": id})
}

// GetDetailsForTenant hides bookings of other tenants behind a 404.
func (r *BookingRepository) GetDetailsForTenant(ctx context.Context, tenantID, id uuid.UUID) (*model.BookingDetails, error) {
	return r.getDetails(ctx, r.server.DB.Pool, sq.Eq{"b.id": id, "b.tenant_id": tenantID})
}

type CreateBookingParams struct {
	TenantID       uuid.UUID
	ServiceID      uuid.UUID
	ProfessionalID *uuid.UUID
	ClientID       uuid.UUID
	Start          time.Time
	End            time.Time
	TotalPrice     decimal.Decimal
	Notes          string
}

// overlapQuery counts active bookings in scope that intersect [start, end).
func overlapQuery(scope model.ConflictScope, start, end time.Time) sq.SelectBuilder {
	q := psql.Select("COUNT(*)").
		From("bookings").
		Where(sq.Eq{"status": model.StatusStrings(model.ActiveBookingStatuses)}).
		Where(sq.Lt{"start_date_time": end}).
		Where(sq.Gt{"end_date_time": start})

	if scope.ProfessionalID != nil {
		return q.Where(sq.Eq{"professional_id": *scope.ProfessionalID})
	}
	return q.Where(sq.Eq{"service_id": scope.ServiceID, "professional_id": nil})
}

// CreateExclusive inserts a PENDING booking unless it overlaps an active
// booking in scope. The check and insert run under a transaction-scoped
// advisory lock on the scope key, so two requests for the same slot cannot
// both pass the check.
func (r *BookingRepository) CreateExclusive(ctx context.Context, p CreateBookingParams, scope model.ConflictScope) (*model.BookingDetails, error) {
	var details *model.BookingDetails

	err := pgx.BeginFunc(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, scope.Key()); err != nil {
			return fmt.Errorf("acquiring booking lock: %w", err)
		}

		overlapping, err := countBuilt(ctx, tx, overlapQuery(scope, p.Start, p.End))
		if err != nil {
			return fmt.Errorf("checking overlaps: %w", err)
		}
		if overlapping > 0 {
			return ErrBookingConflict
		}

		var id uuid.UUID
		err = tx.QueryRow(ctx, `
			INSERT INTO bookings (tenant_id, service_id, professional_id, client_id,
			                      start_date_time, end_date_time, total_price, notes, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			p.TenantID, p.ServiceID, p.ProfessionalID, p.ClientID,
			p.Start, p.End, p.TotalPrice, p.Notes, model.BookingStatusPending,
		).Scan(&id)
		if err != nil {
			return err
		}

		details, err = r.getDetails(ctx, tx, sq.Eq{"b.id": id})
		return err
	})
	if err != nil {
		return nil, err
	}

	return details, nil
}

// applyBookingFilter adds the WHERE clauses of f. Limit and offset are not
// applied here so the same builder serves the count query.
func applyBookingFilter(b sq.SelectBuilder, f model.BookingFilter) sq.SelectBuilder {
	if f.TenantID != nil {
		b = b.Where(sq.Eq{"b.tenant_id": *f.TenantID})
	}
	if f.Status != nil {
		b = b.Where(sq.Eq{"b.status": string(*f.Status)})
	}
	if f.ProfessionalID != nil {
		b = b.Where(sq.Eq{"b.professional_id": *f.ProfessionalID})
	}
	if f.From != nil {
		b = b.Where(sq.GtOrEq{"b.start_date_time": *f.From})
	}
	if f.To != nil {
		b = b.Where(sq.Lt{"b.start_date_time": *f.To})
	}
	return b
}

func buildBookingListQueries(f model.BookingFilter) (sq.SelectBuilder, sq.SelectBuilder) {
	limit, offset := model.NormalizePage(f.Limit, f.Offset)

	list := applyBookingFilter(bookingDetailsQuery(), f).
		OrderBy("b.start_date_time DESC", "b.id").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	count := applyBookingFilter(psql.Select("COUNT(*)").From("bookings b"), f)

	return list, count
}

func (r *BookingRepository) List(ctx context.Context, f model.BookingFilter) (*model.PaginatedResponse[model.BookingDetails], error) {
	list, count := buildBookingListQueries(f)

	rows, err := queryBuilt(ctx, r.server.DB.Pool, list)
	if err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}
	data, err := collectBookingDetails(rows)
	if err != nil {
		return nil, fmt.Errorf("scanning bookings: %w", err)
	}

	total, err := countBuilt(ctx, r.server.DB.Pool, count)
	if err != nil {
		return nil, fmt.Errorf("counting bookings: %w", err)
	}

	limit, offset := model.NormalizePage(f.Limit, f.Offset)
	return &model.PaginatedResponse[model.BookingDetails]{
		Data:   data,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

// UpdateStatus moves a booking from one status to another. It fails with
// ErrBookingStatusChanged when the booking is no longer in from.
func (r *BookingRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, from, to model.BookingStatus) (*model.BookingDetails, error) {
	tag, err := r.server.DB.Pool.Exec(ctx, `
		UPDATE bookings SET status = $1, updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3 AND status = $4`,
		to, id, tenantID, from)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrBookingStatusChanged
	}

	return r.GetDetailsForTenant(ctx, tenantID, id)
}

// ListBusy returns the active bookings in scope that intersect [from, to).
func (r *BookingRepository) ListBusy(ctx context.Context, scope model.ConflictScope, from, to time.Time) ([]model.TimeRange, error) {
	q := psql.Select("start_date_time", "end_date_time").
		From("bookings").
		Where(sq.Eq{"status": model.StatusStrings(model.ActiveBookingStatuses)}).
		Where(sq.Lt{"start_date_time": to}).
		Where(sq.Gt{"end_date_time": from}).
		OrderBy("start_date_time")

	if scope.ProfessionalID != nil {
		q = q.Where(sq.Eq{"professional_id": *scope.ProfessionalID})
	} else {
		q = q.Where(sq.Eq{"service_id": scope.ServiceID, "professional_id": nil})
	}

	rows, err := queryBuilt(ctx, r.server.DB.Pool, q)
	if err != nil {
		return nil, fmt.Errorf("listing busy ranges: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.TimeRange, error) {
		var tr model.TimeRange
		err := row.Scan(&tr.Start, &tr.End)
		return tr, err
	})
}

// ClaimDueReminders marks up to limit active bookings that start within
// (now, now+window] and have no reminder yet, and returns them. Rows locked by
// a concurrent sweep are skipped, so each booking is claimed once.
func (r *BookingRepository) ClaimDueReminders(ctx context.Context, now time.Time, window time.Duration, limit int) ([]model.BookingDetails, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `
		UPDATE bookings SET reminder_sent_at = $1
		WHERE id IN (
			SELECT id FROM bookings
			WHERE status = ANY($2)
			  AND reminder_sent_at IS NULL
			  AND start_date_time > $1
			  AND start_date_time <= $3
			ORDER BY start_date_time
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id`,
		now, model.StatusStrings(model.ActiveBookingStatuses), now.Add(window), limit)
	if err != nil {
		return nil, fmt.Errorf("claiming reminders: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := bookingDetailsQuery().
		Where(sq.Eq{"b.id": ids}).
		OrderBy("b.start_date_time").
		ToSql()
	if err != nil {
		return nil, err
	}

	detailRows, err := r.server.DB.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectBookingDetails(detailRows)
}
