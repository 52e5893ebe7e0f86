package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/deppfellow/booking-now/internal/errs"
	"github.com/deppfellow/booking-now/internal/lib/auth"
	"github.com/deppfellow/booking-now/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type authFixture struct {
	users    *fakeUsers
	sessions *fakeSessions
	service  *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	logger := zerolog.Nop()

	users := newFakeUsers()
	hash, err := auth.HashPassword("admin123")
	require.NoError(t, err)

	tenantID := uuid.New()
	users.add(&model.User{Base: model.Base{ID: uuid.New()}, Email: "admin@booking-now.com", Name: "Admin", PasswordHash: &hash, Role: model.RoleAdmin, IsActive: true})
	users.add(&model.User{Base: model.Base{ID: uuid.New()}, Email: "owner@studio.test", Name: "Owner", PasswordHash: &hash, Role: model.RoleTenantAdmin, TenantID: &tenantID, IsActive: true})
	users.add(&model.User{Base: model.Base{ID: uuid.New()}, Email: "gone@studio.test", PasswordHash: &hash, Role: model.RoleProfessional, TenantID: &tenantID})
	users.add(&model.User{Base: model.Base{ID: uuid.New()}, Email: "client@example.com", Role: model.RoleClient, IsActive: true})

	sessions := &fakeSessions{revoked: map[string]time.Duration{}}

	return &authFixture{
		users:    users,
		sessions: sessions,
		service: &AuthService{
			users:    users,
			sessions: sessions,
			tokens:   auth.NewTokenManager(testSecret, time.Hour),
			logger:   &logger,
		},
	}
}

func TestSignIn_RedirectsByRole(t *testing.T) {
	f := newAuthFixture(t)

	tests := []struct {
		email    string
		redirect string
	}{
		{"admin@booking-now.com", "/admin"},
		{"  Owner@Studio.test ", "/tenant"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			res, err := f.service.SignIn(context.Background(), tt.email, "admin123")
			require.NoError(t, err)

			assert.Equal(t, tt.redirect, res.RedirectTo)
			assert.NotEmpty(t, res.Token)
			assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, time.Minute)

			claims, err := f.service.Authenticate(context.Background(), res.Token)
			require.NoError(t, err)
			assert.Equal(t, res.User.ID.String(), claims.Subject)
		})
	}
}

func TestSignIn_FailuresLookTheSame(t *testing.T) {
	f := newAuthFixture(t)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", "admin123"},
		{"wrong password", "admin@booking-now.com", "admin1234"},
		{"inactive user", "gone@studio.test", "admin123"},
		{"no password", "client@example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.SignIn(context.Background(), tt.email, tt.password)

			httpErr := requireHTTPError(t, err, http.StatusUnauthorized)
			assert.Equal(t, "Invalid credentials", httpErr.Message)
		})
	}
}

func TestSignOut_RevokesToken(t *testing.T) {
	f := newAuthFixture(t)

	res, err := f.service.SignIn(context.Background(), "admin@booking-now.com", "admin123")
	require.NoError(t, err)
	claims, err := f.service.Authenticate(context.Background(), res.Token)
	require.NoError(t, err)

	require.NoError(t, f.service.SignOut(context.Background(), claims))
	assert.InDelta(t, time.Hour.Seconds(), f.sessions.revoked[claims.ID].Seconds(), 60)

	_, err = f.service.Authenticate(context.Background(), res.Token)
	httpErr := requireHTTPError(t, err, http.StatusUnauthorized)
	assert.Equal(t, "SESSION_EXPIRED", httpErr.Code)
	require.NotNil(t, httpErr.Action)
	assert.Equal(t, SignInPath, httpErr.Action.Value)
}

func TestAuthenticate_Rejects(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Authenticate(context.Background(), "not-a-token")
	httpErr := requireHTTPError(t, err, http.StatusUnauthorized)
	assert.Equal(t, "UNAUTHORIZED", httpErr.Code)

	expired := &AuthService{
		users:    f.users,
		sessions: f.sessions,
		tokens:   auth.NewTokenManager(testSecret, -time.Minute),
		logger:   f.service.logger,
	}
	user, err := f.users.GetByEmail(context.Background(), "admin@booking-now.com")
	require.NoError(t, err)
	token, _, err := expired.tokens.Issue(user)
	require.NoError(t, err)

	_, err = f.service.Authenticate(context.Background(), token)
	httpErr = requireHTTPError(t, err, http.StatusUnauthorized)
	assert.Equal(t, "SESSION_EXPIRED", httpErr.Code)
}

func TestAuthenticate_RevocationStoreDown(t *testing.T) {
	f := newAuthFixture(t)
	res, err := f.service.SignIn(context.Background(), "admin@booking-now.com", "admin123")
	require.NoError(t, err)

	f.sessions.err = errors.New("redis: connection refused")

	_, err = f.service.Authenticate(context.Background(), res.Token)
	requireHTTPError(t, err, http.StatusInternalServerError)
}

func TestSession(t *testing.T) {
	f := newAuthFixture(t)
	res, err := f.service.SignIn(context.Background(), "owner@studio.test", "admin123")
	require.NoError(t, err)
	claims, err := f.service.Authenticate(context.Background(), res.Token)
	require.NoError(t, err)

	session, err := f.service.Session(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, "/tenant", session.RedirectTo)
	assert.Equal(t, model.RoleTenantAdmin, session.User.Role)

	session.User.IsActive = false
	_, err = f.service.Session(context.Background(), claims)
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, "SESSION_EXPIRED", httpErr.Code)
}
