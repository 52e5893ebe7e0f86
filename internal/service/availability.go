package service

import (
	"context"
	"fmt"

	"github.com/deppfellow/booking-now/internal/errs"
	"github.com/deppfellow/booking-now/internal/lib/schedule"
	"github.com/deppfellow/booking-now/internal/model"
	"github.com/deppfellow/booking-now/internal/server"
	"github.com/deppfellow/booking-now/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AvailabilityService struct {
	catalog      CatalogStore
	availability AvailabilityStore
	logger       *zerolog.Logger
}

func NewAvailabilityService(s *server.Server, catalog CatalogStore, availability AvailabilityStore) *AvailabilityService {
	return &AvailabilityService{
		catalog:      catalog,
		availability: availability,
		logger:       s.Logger,
	}
}

// ownedService makes sure the service belongs to the caller's tenant.
func (s *AvailabilityService) ownedService(ctx context.Context, tenantID, serviceID uuid.UUID) (*model.Service, error) {
	svc, err := s.catalog.GetService(ctx, tenantID, serviceID)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, errs.NewNotFoundError("Service not found", true, nil)
		}
		return nil, err
	}
	return svc, nil
}

func (s *AvailabilityService) List(ctx context.Context, tenantID, serviceID uuid.UUID) ([]model.Availability, error) {
	if _, err := s.ownedService(ctx, tenantID, serviceID); err != nil {
		return nil, err
	}
	return s.availability.ListByService(ctx, serviceID)
}

// Replace swaps the weekly windows of a service for windows.
func (s *AvailabilityService) Replace(ctx context.Context, tenantID, serviceID uuid.UUID, windows []model.AvailabilityInput) ([]model.Availability, error) {
	svc, err := s.ownedService(ctx, tenantID, serviceID)
	if err != nil {
		return nil, err
	}

	if err := ValidateWeek(windows); err != nil {
		return nil, err
	}

	out, err := s.availability.ReplaceForService(ctx, svc.ID, windows)
	if err != nil {
		return nil, err
	}

	loggerFrom(ctx, s.logger).Info().
		Str("service_id", svc.ID.String()).
		Int("windows", len(out)).
		Msg("availability replaced")

	return out, nil
}

// ValidateWeek checks each window and that no two windows overlap on the same
// weekday.
func ValidateWeek(windows []model.AvailabilityInput) error {
	var (
		fieldErrs []errs.FieldError
		parsed    = make([]schedule.Window, 0, len(windows))
	)

	for i, in := range windows {
		w, err := schedule.ParseWindow(in.DayOfWeek, in.StartTime, in.EndTime)
		if err != nil {
			fieldErrs = append(fieldErrs, errs.FieldError{
				Field: fmt.Sprintf("windows[%d]", i),
				Error: err.Error(),
			})
			continue
		}
		parsed = append(parsed, w)
	}
	if len(fieldErrs) > 0 {
		return errs.NewBadRequestError("Invalid availability windows", true, errs.Ptr("INVALID_AVAILABILITY"), fieldErrs, nil)
	}

	if err := schedule.CheckWeek(parsed); err != nil {
		return errs.NewBadRequestError(err.Error(), true, errs.Ptr("OVERLAPPING_AVAILABILITY"), nil, nil)
	}

	return nil
}
