package service

import (
	"context"
	"strings"

	"github.com/deppfellow/booking-now/internal/errs"
	"github.com/deppfellow/booking-now/internal/model"
	"github.com/deppfellow/booking-now/internal/server"
	"github.com/deppfellow/booking-now/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NoPreference is the widget's "any professional" choice.
const NoPreference = "any"

// CatalogService serves the public widget's read side.
type CatalogService struct {
	tenants TenantStore
	catalog CatalogStore
	logger  *zerolog.Logger
}

func NewCatalogService(s *server.Server, tenants TenantStore, catalog CatalogStore) *CatalogService {
	return &CatalogService{
		tenants: tenants,
		catalog: catalog,
		logger:  s.Logger,
	}
}

// Profile returns the tenant with its active services and available
// professionals.
func (s *CatalogService) Profile(ctx context.Context, tenantID uuid.UUID) (*model.TenantProfile, error) {
	tenant, err := activeTenant(ctx, s.tenants, tenantID)
	if err != nil {
		return nil, err
	}

	services, err := s.catalog.ListActiveServices(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}

	professionals, err := s.catalog.ListAvailableProfessionals(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}

	return &model.TenantProfile{
		ID:            tenant.ID,
		Name:          tenant.Name,
		Slug:          tenant.Slug,
		Email:         tenant.Email,
		Phone:         tenant.Phone,
		Timezone:      tenant.Timezone,
		Services:      services,
		Professionals: professionals,
	}, nil
}

// activeTenant hides missing and deactivated tenants behind the same 404.
func activeTenant(ctx context.Context, tenants TenantStore, id uuid.UUID) (*model.Tenant, error) {
	tenant, err := tenants.GetByID(ctx, id)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, errs.NewNotFoundError("Tenant not found", true, nil)
		}
		return nil, err
	}
	if !tenant.IsActive {
		return nil, errs.NewNotFoundError("Tenant not found", true, nil)
	}
	return tenant, nil
}

func activeService(ctx context.Context, catalog CatalogStore, tenantID, serviceID uuid.UUID) (*model.Service, error) {
	svc, err := catalog.GetActiveService(ctx, tenantID, serviceID)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, errs.NewNotFoundError("Service not found", true, nil)
		}
		return nil, err
	}
	return svc, nil
}

// professionalFor resolves the widget's professional choice. nil means no
// preference.
func professionalFor(ctx context.Context, catalog CatalogStore, tenantID uuid.UUID, id *uuid.UUID) (*model.Professional, error) {
	if id == nil {
		return nil, nil
	}

	pro, err := catalog.GetAvailableProfessional(ctx, tenantID, *id)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, errs.NewNotFoundError("Professional not found", true, nil)
		}
		return nil, err
	}
	return pro, nil
}

// ParseProfessionalPreference reads the widget's professionalId field. Empty
// and "any" mean no preference.
func ParseProfessionalPreference(raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, NoPreference) {
		return nil, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errs.NewBadRequestError("Invalid professional", true, nil,
			[]errs.FieldError{{Field: "professionalId", Error: "must be a professional id or \"any\""}}, nil)
	}
	return &id, nil
}
