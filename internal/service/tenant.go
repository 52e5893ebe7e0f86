package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deppfellow/booking-now/internal/errs"
	"github.com/deppfellow/booking-now/internal/lib/auth"
	"github.com/deppfellow/booking-now/internal/model"
	"github.com/deppfellow/booking-now/internal/repository"
	"github.com/deppfellow/booking-now/internal/server"
	"github.com/rs/zerolog"
)

// TenantService is the super-admin's tenant management.
type TenantService struct {
	tenants    TenantStore
	defaultLoc *time.Location
	logger     *zerolog.Logger
}

func NewTenantService(s *server.Server, tenants TenantStore, defaultLoc *time.Location) *TenantService {
	return &TenantService{
		tenants:    tenants,
		defaultLoc: defaultLoc,
		logger:     s.Logger,
	}
}

func defaultLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading default timezone %q: %w", name, err)
	}
	return loc, nil
}

func (s *TenantService) List(ctx context.Context) ([]model.Tenant, error) {
	return s.tenants.List(ctx)
}

type CreateTenantInput struct {
	Name          string
	Slug          string
	Email         string
	Phone         string
	Timezone      string
	OwnerName     string
	OwnerEmail    string
	OwnerPassword string
}

type CreateTenantResult struct {
	Tenant *model.Tenant `json:"tenant"`
	Owner  *model.User   `json:"owner"`
}

// Create stores a tenant together with its TENANT_ADMIN owner.
func (s *TenantService) Create(ctx context.Context, in CreateTenantInput) (*CreateTenantResult, error) {
	timezone := strings.TrimSpace(in.Timezone)
	if timezone == "" {
		timezone = s.defaultLoc.String()
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, errs.NewBadRequestError("Unknown timezone", true, nil,
			[]errs.FieldError{{Field: "timezone", Error: "must be an IANA timezone such as Europe/Madrid"}}, nil)
	}

	hash, err := auth.HashPassword(in.OwnerPassword)
	if err != nil {
		return nil, err
	}

	tenant, owner, err := s.tenants.CreateWithOwner(ctx,
		repository.CreateTenantParams{
			Name:     strings.TrimSpace(in.Name),
			Slug:     strings.ToLower(strings.TrimSpace(in.Slug)),
			Email:    repository.NormalizeEmail(in.Email),
			Phone:    strings.TrimSpace(in.Phone),
			Timezone: timezone,
		},
		repository.CreateUserParams{
			Email:        in.OwnerEmail,
			Name:         strings.TrimSpace(in.OwnerName),
			PasswordHash: &hash,
		},
	)
	if err != nil {
		return nil, err
	}

	loggerFrom(ctx, s.logger).Info().
		Str("tenant_id", tenant.ID.String()).
		Str("owner_id", owner.ID.String()).
		Msg("tenant created")

	return &CreateTenantResult{Tenant: tenant, Owner: owner}, nil
}
