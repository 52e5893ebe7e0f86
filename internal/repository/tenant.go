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

type TenantRepository struct {
	server *server.Server
}

func NewTenantRepository(s *server.Server) *TenantRepository {
	return &TenantRepository{server: s}
}

const tenantColumns = `id, name, slug, email, phone, timezone, is_active, created_at, updated_at`

func scanTenant(row pgx.Row) (*model.Tenant, error) {
	var t model.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Email, &t.Phone, &t.Timezone, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	row := r.server.DB.Pool.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)

	tenant, err := scanTenant(row)
	if err != nil {
		return nil, sqlerr.WrapNotFound("tenants", err)
	}
	return tenant, nil
}

func (r *TenantRepository) List(ctx context.Context) ([]model.Tenant, error) {
	rows, err := r.server.DB.Pool.Query(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Tenant, error) {
		t, err := scanTenant(row)
		if err != nil {
			return model.Tenant{}, err
		}
		return *t, nil
	})
}

type CreateTenantParams struct {
	Name     string
	Slug     string
	Email    string
	Phone    string
	Timezone string
}

type CreateUserParams struct {
	Email        string
	Name         string
	Phone        string
	PasswordHash *string
	Role         model.Role
	TenantID     *uuid.UUID
}

// CreateWithOwner inserts a tenant and its TENANT_ADMIN owner atomically.
func (r *TenantRepository) CreateWithOwner(ctx context.Context, tp CreateTenantParams, owner CreateUserParams) (*model.Tenant, *model.User, error) {
	var (
		tenant *model.Tenant
		user   *model.User
	)

	err := pgx.BeginFunc(ctx, r.server.DB.Pool, func(tx pgx.Tx) error {
		var err error
		tenant, err = scanTenant(tx.QueryRow(ctx, `
			INSERT INTO tenants (name, slug, email, phone, timezone)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+tenantColumns,
			tp.Name, tp.Slug, tp.Email, tp.Phone, tp.Timezone,
		))
		if err != nil {
			return err
		}

		owner.TenantID = &tenant.ID
		owner.Role = model.RoleTenantAdmin
		user, err = insertUser(ctx, tx, owner)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	return tenant, user, nil
}
