package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/deppfellow/booking-now/internal/model"
	"github.com/deppfellow/booking-now/internal/server"
	"github.com/deppfellow/booking-now/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type NotificationRepository struct {
	server *server.Server
}

func NewNotificationRepository(s *server.Server) *NotificationRepository {
	return &NotificationRepository{server: s}
}

var notificationColumns = []string{"id", "tenant_id", "booking_id", "type", "title", "message", "is_read", "created_at"}

func scanNotification(row pgx.Row) (*model.Notification, error) {
	var n model.Notification
	err := row.Scan(&n.ID, &n.TenantID, &n.BookingID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

type CreateNotificationParams struct {
	TenantID  uuid.UUID
	BookingID *uuid.UUID
	Type      model.NotificationType
	Title     string
	Message   string
}

func (r *NotificationRepository) Create(ctx context.Context, p CreateNotificationParams) (*model.Notification, error) {
	query, args, err := psql.Insert("notifications").
		Columns("tenant_id", "booking_id", "type", "title", "message").
		Values(p.TenantID, p.BookingID, string(p.Type), p.Title, p.Message).
		Suffix("RETURNING " + joinColumns(notificationColumns)).
		ToSql()
	if err != nil {
		return nil, err
	}

	return scanNotification(r.server.DB.Pool.QueryRow(ctx, query, args...))
}

type NotificationFilter struct {
	TenantID   uuid.UUID
	UnreadOnly bool
	Limit      int
	Offset     int
}

func buildNotificationListQueries(f NotificationFilter) (sq.SelectBuilder, sq.SelectBuilder) {
	limit, offset := model.NormalizePage(f.Limit, f.Offset)

	where := sq.And{sq.Eq{"tenant_id": f.TenantID}}
	if f.UnreadOnly {
		where = append(where, sq.Eq{"is_read": false})
	}

	list := psql.Select(notificationColumns...).
		From("notifications").
		Where(where).
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	count := psql.Select("COUNT(*)").From("notifications").Where(where)

	return list, count
}

func (r *NotificationRepository) List(ctx context.Context, f NotificationFilter) (*model.PaginatedResponse[model.Notification], error) {
	list, count := buildNotificationListQueries(f)

	rows, err := queryBuilt(ctx, r.server.DB.Pool, list)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	data, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Notification, error) {
		n, err := scanNotification(row)
		if err != nil {
			return model.Notification{}, err
		}
		return *n, nil
	})
	if err != nil {
		return nil, err
	}

	total, err := countBuilt(ctx, r.server.DB.Pool, count)
	if err != nil {
		return nil, fmt.Errorf("counting notifications: %w", err)
	}

	limit, offset := model.NormalizePage(f.Limit, f.Offset)
	return &model.PaginatedResponse[model.Notification]{
		Data:   data,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, tenantID, id uuid.UUID) (*model.Notification, error) {
	n, err := scanNotification(r.server.DB.Pool.QueryRow(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND tenant_id = $2
		RETURNING `+joinColumns(notificationColumns),
		id, tenantID))
	if err != nil {
		return nil, sqlerr.WrapNotFound("notifications", err)
	}
	return n, nil
}

// MarkAllRead returns how many notifications changed.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	tag, err := r.server.DB.Pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE tenant_id = $1 AND NOT is_read`, tenantID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
