package service

import (
	"context"
	"time"

	"github.com/deppfellow/booking-now/internal/lib/email"
	"github.com/deppfellow/booking-now/internal/model"
	"github.com/deppfellow/booking-now/internal/repository"
	"github.com/google/uuid"
)

// The store interfaces are the slices of the repositories each service
// reads or writes. The *repository types satisfy them.

type TenantStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error)
	List(ctx context.Context) ([]model.Tenant, error)
	CreateWithOwner(ctx context.Context, tp repository.CreateTenantParams, owner repository.CreateUserParams) (*model.Tenant, *model.User, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	FindOrCreateClient(ctx context.Context, p repository.CreateUserParams) (*model.User, error)
	EnsureAdmin(ctx context.Context, email, name, passwordHash string) (*model.User, bool, error)
}

type CatalogStore interface {
	GetService(ctx context.Context, tenantID, serviceID uuid.UUID) (*model.Service, error)
	GetActiveService(ctx context.Context, tenantID, serviceID uuid.UUID) (*model.Service, error)
	ListActiveServices(ctx context.Context, tenantID uuid.UUID) ([]model.Service, error)
	ListAllActiveServices(ctx context.Context) ([]model.Service, error)
	GetAvailableProfessional(ctx context.Context, tenantID, professionalID uuid.UUID) (*model.Professional, error)
	ListAvailableProfessionals(ctx context.Context, tenantID uuid.UUID) ([]model.Professional, error)
}

type AvailabilityStore interface {
	ListByService(ctx context.Context, serviceID uuid.UUID) ([]model.Availability, error)
	ListActiveByService(ctx context.Context, serviceID uuid.UUID) ([]model.Availability, error)
	ReplaceForService(ctx context.Context, serviceID uuid.UUID, windows []model.AvailabilityInput) ([]model.Availability, error)
	ResetAll(ctx context.Context, services []model.Service, windows []model.AvailabilityInput, onService func(model.Service)) (int64, error)
}

type BookingStore interface {
	CreateExclusive(ctx context.Context, p repository.CreateBookingParams, scope model.ConflictScope) (*model.BookingDetails, error)
	GetDetailsForTenant(ctx context.Context, tenantID, id uuid.UUID) (*model.BookingDetails, error)
	List(ctx context.Context, f model.BookingFilter) (*model.PaginatedResponse[model.BookingDetails], error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, from, to model.BookingStatus) (*model.BookingDetails, error)
	ListBusy(ctx context.Context, scope model.ConflictScope, from, to time.Time) ([]model.TimeRange, error)
	ClaimDueReminders(ctx context.Context, now time.Time, window time.Duration, limit int) ([]model.BookingDetails, error)
}

type NotificationStore interface {
	Create(ctx context.Context, p repository.CreateNotificationParams) (*model.Notification, error)
	List(ctx context.Context, f repository.NotificationFilter) (*model.PaginatedResponse[model.Notification], error)
	MarkRead(ctx context.Context, tenantID, id uuid.UUID) (*model.Notification, error)
	MarkAllRead(ctx context.Context, tenantID uuid.UUID) (int64, error)
}

// SessionStore tracks revoked token ids.
type SessionStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// EmailQueue hands booking emails to the background workers.
type EmailQueue interface {
	EnqueueBookingEmail(ctx context.Context, taskType, to string, data email.BookingEmail) error
}

var (
	_ TenantStore       = (*repository.TenantRepository)(nil)
	_ UserStore         = (*repository.UserRepository)(nil)
	_ CatalogStore      = (*repository.CatalogRepository)(nil)
	_ AvailabilityStore = (*repository.AvailabilityRepository)(nil)
	_ BookingStore      = (*repository.BookingRepository)(nil)
	_ NotificationStore = (*repository.NotificationRepository)(nil)
	_ SessionStore      = (*repository.SessionRepository)(nil)
)
