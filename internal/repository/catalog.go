package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/booking-now/internal/model"
	"github.com/deppfellow/booking-now/internal/server"
	"github.com/deppfellow/booking-now/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CatalogRepository reads services and professionals.
type CatalogRepository struct {
	server *server.Server
}

func NewCatalogRepository(s *server.Server) *CatalogRepository {
	return &CatalogRepository{server: s}
}

const serviceColumns = `id, tenant_id, name, description, duration, price, is_active, created_at, updated_at`

func scanService(row pgx.Row) (*model.Service, error) {
	var s model.Service
	err := row.Scan(&s.ID, &s.TenantID, &s.Name, &s.Description, &s.Duration, &s.Price, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectServices(rows pgx.Rows) ([]model.Service, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Service, error) {
		s, err := scanService(row)
		if err != nil {
			return model.Service{}, err
		}
		return *s, nil
	})
}

// GetService returns a tenant's service regardless of its active flag.
func (r *CatalogRepository) GetService(ctx context.Context, tenantID, serviceID uuid.UUID) (*model.Service, error) {
	s, err := scanService(r.server.DB.Pool.QueryRow(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = $1 AND tenant_id = $2`,
		serviceID, tenantID))
	if err != nil {
		return nil, sqlerr.WrapNotFound("services", err)
	}
	return s, nil
}

func (r *CatalogRepository) GetActiveService(ctx context.Context, tenantID, serviceID uuid.UUID) (*model.Service, error) {
	s, err := scanService(r.server.DB.Pool.QueryRow(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = $1 AND tenant_id = $2 AND is_active`,
		serviceID, tenantID))
	if err != nil {
		return nil, sqlerr.WrapNotFound("services", err)
	}
	return s, nil
}

func (r *CatalogRepository) ListActiveServices(ctx context.Context, tenantID uuid.UUID) ([]model.Service, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE tenant_id = $1 AND is_active ORDER BY name`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}
	return collectServices(rows)
}

// ListAllActiveServices spans every tenant. Used by seeding.
func (r *CatalogRepository) ListAllActiveServices(ctx context.Context) ([]model.Service, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE is_active ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}
	return collectServices(rows)
}

const professionalSelect = `
	SELECT p.id, p.tenant_id, p.user_id, p.specialty, p.is_available, p.created_at, p.updated_at,
	       u.name, u.email
	FROM professionals p
	JOIN users u ON u.id = p.user_id`

func scanProfessional(row pgx.Row) (*model.Professional, error) {
	var p model.Professional
	err := row.Scan(&p.ID, &p.TenantID, &p.UserID, &p.Specialty, &p.IsAvailable, &p.CreatedAt, &p.UpdatedAt, &p.Name, &p.Email)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepository) GetAvailableProfessional(ctx context.Context, tenantID, professionalID uuid.UUID) (*model.Professional, error) {
	p, err := scanProfessional(r.server.DB.Pool.QueryRow(ctx,
		professionalSelect+` WHERE p.id = $1 AND p.tenant_id = $2 AND p.is_available`,
		professionalID, tenantID))
	if err != nil {
		return nil, sqlerr.WrapNotFound("professionals", err)
	}
	return p, nil
}

func (r *CatalogRepository) ListAvailableProfessionals(ctx context.Context, tenantID uuid.UUID) ([]model.Professional, error) {
	rows, err := r.server.DB.Pool.Query(ctx,
		professionalSelect+` WHERE p.tenant_id = $1 AND p.is_available ORDER BY u.name`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing professionals: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Professional, error) {
		p, err := scanProfessional(row)
		if err != nil {
			return model.Professional{}, err
		}
		return *p, nil
	})
}
