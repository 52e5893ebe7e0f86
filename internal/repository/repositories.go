package repository

import (
	"github.com/deppfellow/booking-now/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Tenant       *TenantRepository
	User         *UserRepository
	Catalog      *CatalogRepository
	Availability *AvailabilityRepository
	Booking      *BookingRepository
	Notification *NotificationRepository
	Session      *SessionRepository
}

// NewRepositories wires every repository to the shared pool and Redis client.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Tenant:       NewTenantRepository(s),
		User:         NewUserRepository(s),
		Catalog:      NewCatalogRepository(s),
		Availability: NewAvailabilityRepository(s),
		Booking:      NewBookingRepository(s),
		Notification: NewNotificationRepository(s),
		Session:      NewSessionRepository(s),
	}
}
