package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/deppfellow/booking-now/internal/model"
	"github.com/deppfellow/booking-now/internal/server"
	"github.com/deppfellow/booking-now/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	server *server.Server
}

func NewUserRepository(s *server.Server) *UserRepository {
	return &UserRepository{server: s}
}

const userColumns = `id, email, name, phone, password_hash, role, tenant_id, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.PasswordHash, &u.Role, &u.TenantID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// NormalizeEmail is how emails are stored and looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func insertUser(ctx context.Context, db DBTX, p CreateUserParams) (*model.User, error) {
	return scanUser(db.QueryRow(ctx, `
		INSERT INTO users (email, name, phone, password_hash, role, tenant_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		NormalizeEmail(p.Email), p.Name, p.Phone, p.PasswordHash, p.Role, p.TenantID,
	))
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := scanUser(r.server.DB.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, sqlerr.WrapNotFound("users", err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(r.server.DB.Pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, NormalizeEmail(email)))
	if err != nil {
		return nil, sqlerr.WrapNotFound("users", err)
	}
	return user, nil
}

// FindOrCreateClient returns the user with p.Email, creating a CLIENT when
// none exists. An existing user is returned unchanged. The no-op update makes
// RETURNING yield the existing row, so concurrent callers agree on one user.
func (r *UserRepository) FindOrCreateClient(ctx context.Context, p CreateUserParams) (*model.User, error) {
	return scanUser(r.server.DB.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, phone, role, tenant_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING `+userColumns,
		NormalizeEmail(p.Email), p.Name, p.Phone, model.RoleClient, p.TenantID,
	))
}

// EnsureAdmin creates the super-admin when the email is free. created is false
// when a user with that email already existed; that user is left untouched.
func (r *UserRepository) EnsureAdmin(ctx context.Context, email, name, passwordHash string) (*model.User, bool, error) {
	user, err := scanUser(r.server.DB.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING
		RETURNING `+userColumns,
		NormalizeEmail(email), name, passwordHash, model.RoleAdmin,
	))
	if err == nil {
		return user, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	existing, err := r.GetByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}
