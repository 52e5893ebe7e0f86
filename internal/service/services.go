package service

import (
	"github.com/deppfellow/booking-now/internal/lib/job"
	"github.com/deppfellow/booking-now/internal/repository"
	"github.com/deppfellow/booking-now/internal/server"
)

type Services struct {
	Auth         *AuthService
	Booking      *BookingService
	Catalog      *CatalogService
	Availability *AvailabilityService
	Notification *NotificationService
	Tenant       *TenantService
	Seed         *SeedService
	Job          *job.JobService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	defaultLoc, err := defaultLocation(s.Config.Booking.DefaultTimezone)
	if err != nil {
		return nil, err
	}

	notificationService := NewNotificationService(s, repos.Notification, repos.Booking, s.Job)

	return &Services{
		Job:          s.Job,
		Auth:         NewAuthService(s, repos.User, repos.Session),
		Booking:      NewBookingService(s, repos, notificationService, defaultLoc),
		Catalog:      NewCatalogService(s, repos.Tenant, repos.Catalog),
		Availability: NewAvailabilityService(s, repos.Catalog, repos.Availability),
		Notification: notificationService,
		Tenant:       NewTenantService(s, repos.Tenant, defaultLoc),
		Seed:         NewSeedService(s, repos.User, repos.Catalog, repos.Availability),
	}, nil
}
