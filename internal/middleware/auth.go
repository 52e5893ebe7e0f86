package middleware

import (
	"context"
	"slices"
	"strings"

	"github.com/deppfellow/booking-now/internal/errs"
	"github.com/deppfellow/booking-now/internal/lib/auth"
	"github.com/deppfellow/booking-now/internal/model"
	"github.com/deppfellow/booking-now/internal/server"
	"github.com/labstack/echo/v4"
)

// Authenticator verifies a bearer token, including revocation.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	server        *server.Server
	authenticator Authenticator
}

func NewAuthMiddleware(s *server.Server, authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{
		server:        s,
		authenticator: authenticator,
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuth rejects requests without a valid bearer token. On success the
// claims, user id, role and tenant id are stored on the Echo context and the
// request logger gains user fields.
func (a *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return errs.NewUnauthorizedError("Unauthorized", false)
		}

		claims, err := a.authenticator.Authenticate(c.Request().Context(), token)
		if err != nil {
			return err
		}

		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, claims.Subject)
		c.Set(UserRoleKey, string(claims.Role))

		fields := GetLogger(c).With().
			Str("user_id", claims.Subject).
			Str("user_role", string(claims.Role))
		if tenantID, ok := claims.Tenant(); ok {
			c.Set(TenantIDKey, tenantID)
			fields = fields.Str("tenant_id", tenantID.String())
		}
		setLogger(c, fields.Logger())

		return next(c)
	}
}

// RequireRole must run after RequireAuth.
func (a *AuthMiddleware) RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := GetClaims(c)
			if claims == nil {
				return errs.NewUnauthorizedError("Unauthorized", false)
			}
			if !slices.Contains(roles, claims.Role) {
				GetLogger(c).Warn().
					Str("function", "RequireRole").
					Str("role", string(claims.Role)).
					Msg("role not allowed")
				return errs.NewForbiddenError("You do not have access to this resource", true)
			}
			return next(c)
		}
	}
}

// RequireTenant admits tenant staff that carry a tenant id.
func (a *AuthMiddleware) RequireTenant(next echo.HandlerFunc) echo.HandlerFunc {
	return a.RequireRole(model.RoleTenantAdmin, model.RoleProfessional)(func(c echo.Context) error {
		if _, ok := GetTenantID(c); !ok {
			return errs.NewForbiddenError("Your account is not linked to a business", true)
		}
		return next(c)
	})
}

func GetClaims(c echo.Context) *auth.Claims {
	claims, _ := c.Get(ClaimsKey).(*auth.Claims)
	return claims
}
