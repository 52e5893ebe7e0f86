package service

import (
	"context"
	"errors"
	"time"

	"github.com/deppfellow/booking-now/internal/config"
	"github.com/deppfellow/booking-now/internal/lib/auth"
	"github.com/deppfellow/booking-now/internal/model"
	"github.com/deppfellow/booking-now/internal/server"
	"github.com/rs/zerolog"
)

var ErrNoServices = errors.New("no services found, run the main seed first")

// SeedService populates a fresh database.
type SeedService struct {
	users        UserStore
	catalog      CatalogStore
	availability AvailabilityStore
	cfg          config.SeedConfig
	logger       *zerolog.Logger
}

func NewSeedService(s *server.Server, users UserStore, catalog CatalogStore, availability AvailabilityStore) *SeedService {
	return &SeedService{
		users:        users,
		catalog:      catalog,
		availability: availability,
		cfg:          s.Config.Seed,
		logger:       s.Logger,
	}
}

// DefaultWeeklyAvailability is Monday to Friday 09:00-12:00 and 14:00-18:00,
// plus Saturday 10:00-16:00.
func DefaultWeeklyAvailability() []model.AvailabilityInput {
	var windows []model.AvailabilityInput
	for day := time.Monday; day <= time.Friday; day++ {
		windows = append(windows,
			model.AvailabilityInput{DayOfWeek: int(day), StartTime: "09:00", EndTime: "12:00"},
			model.AvailabilityInput{DayOfWeek: int(day), StartTime: "14:00", EndTime: "18:00"},
		)
	}
	return append(windows, model.AvailabilityInput{DayOfWeek: int(time.Saturday), StartTime: "10:00", EndTime: "16:00"})
}

type SeedAvailabilityResult struct {
	Services int
	Windows  int64
}

// SeedServiceAvailability replaces every availability row with the default
// week for each active service.
func (s *SeedService) SeedServiceAvailability(ctx context.Context) (*SeedAvailabilityResult, error) {
	s.logger.Info().Msg("seeding service availability")

	services, err := s.catalog.ListAllActiveServices(ctx)
	if err != nil {
		return nil, err
	}
	if len(services) == 0 {
		return nil, ErrNoServices
	}

	windows := DefaultWeeklyAvailability()
	total, err := s.availability.ResetAll(ctx, services, windows, func(svc model.Service) {
		s.logger.Info().
			Str("service", svc.Name).
			Int("windows", len(windows)).
			Msg("availability created")
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("services", len(services)).
		Int64("windows", total).
		Msg("service availability seeded")

	return &SeedAvailabilityResult{Services: len(services), Windows: total}, nil
}

// MainSeed makes sure the super-admin exists. Running it twice is harmless.
func (s *SeedService) MainSeed(ctx context.Context) error {
	s.logger.Info().Msg("seeding database")

	hash, err := auth.HashPassword(s.cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin, created, err := s.users.EnsureAdmin(ctx, s.cfg.AdminEmail, s.cfg.AdminName, hash)
	if err != nil {
		return err
	}

	if created {
		s.logger.Info().Str("email", admin.Email).Msg("super-admin created")
	} else {
		s.logger.Info().Str("email", admin.Email).Msg("super-admin already exists")
	}

	s.logger.Info().Msg("database seed completed")
	return nil
}
