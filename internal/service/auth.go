package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/deppfellow/booking-now/internal/errs"
	"github.com/deppfellow/booking-now/internal/lib/auth"
	"github.com/deppfellow/booking-now/internal/model"
	"github.com/deppfellow/booking-now/internal/server"
	"github.com/deppfellow/booking-now/internal/sqlerr"
	"github.com/rs/zerolog"
)

// SignInPath is where an expired session sends the dashboard.
const SignInPath = "/"

type AuthService struct {
	users    UserStore
	sessions SessionStore
	tokens   *auth.TokenManager
	logger   *zerolog.Logger
}

func NewAuthService(s *server.Server, users UserStore, sessions SessionStore) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		tokens:   auth.NewTokenManager(s.Config.Auth.SecretKey, s.Config.Auth.TokenTTL),
		logger:   s.Logger,
	}
}

type SignInResult struct {
	Token      string      `json:"token"`
	ExpiresAt  time.Time   `json:"expiresAt"`
	User       *model.User `json:"user"`
	RedirectTo string      `json:"redirectTo"`
}

type SessionResult struct {
	User       *model.User `json:"user"`
	RedirectTo string      `json:"redirectTo"`
	ExpiresAt  time.Time   `json:"expiresAt"`
}

func invalidCredentials() *errs.HTTPError {
	return errs.NewUnauthorizedError("Invalid credentials", true)
}

// SignIn checks the password and issues a token. Every failure looks the same
// to the caller.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	logger := loggerFrom(ctx, s.logger)
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			logger.Info().Str("email", email).Msg("sign-in for unknown email")
			return nil, invalidCredentials()
		}
		return nil, err
	}

	if user.PasswordHash == nil || !user.IsActive || !auth.CheckPassword(*user.PasswordHash, password) {
		logger.Info().Str("user_id", user.ID.String()).Msg("sign-in rejected")
		return nil, invalidCredentials()
	}

	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("user_id", user.ID.String()).
		Str("role", string(user.Role)).
		Msg("user signed in")

	return &SignInResult{
		Token:      token,
		ExpiresAt:  claims.ExpiresAt.Time,
		User:       user,
		RedirectTo: user.Role.RedirectPath(),
	}, nil
}

// Authenticate verifies a bearer token and rejects revoked ones.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, errs.NewSessionExpiredError(SignInPath)
		}
		return nil, errs.NewUnauthorizedError("Unauthorized", false)
	}

	revoked, err := s.sessions.IsRevoked(ctx, claims.ID)
	if err != nil {
		loggerFrom(ctx, s.logger).Error().Err(err).Msg("failed to check token revocation")
		return nil, errs.NewInternalServerError()
	}
	if revoked {
		return nil, errs.NewSessionExpiredError(SignInPath)
	}

	return claims, nil
}

// Session reloads the signed-in user so role or status changes since sign-in
// take effect.
func (s *AuthService) Session(ctx context.Context, claims *auth.Claims) (*SessionResult, error) {
	userID, err := claims.UserID()
	if err != nil {
		return nil, errs.NewUnauthorizedError("Unauthorized", false)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if sqlerr.IsNotFound(err) {
			return nil, errs.NewSessionExpiredError(SignInPath)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, errs.NewSessionExpiredError(SignInPath)
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return &SessionResult{
		User:       user,
		RedirectTo: user.Role.RedirectPath(),
		ExpiresAt:  expiresAt,
	}, nil
}

// SignOut revokes the token until it would have expired anyway.
func (s *AuthService) SignOut(ctx context.Context, claims *auth.Claims) error {
	ttl := s.tokens.Remaining(claims)
	if ttl <= 0 {
		return nil
	}

	if err := s.sessions.Revoke(ctx, claims.ID, ttl); err != nil {
		return err
	}

	loggerFrom(ctx, s.logger).Info().Str("user_id", claims.Subject).Msg("user signed out")
	return nil
}
