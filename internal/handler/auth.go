package handler

import (
	"github.com/deppfellow/booking-now/internal/errs"
	"github.com/deppfellow/booking-now/internal/middleware"
	"github.com/deppfellow/booking-now/internal/server"
	"github.com/deppfellow/booking-now/internal/service"
	"github.com/deppfellow/booking-now/internal/validation"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	Handler
	authService *service.AuthService
}

func NewAuthHandler(s *server.Server, authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		Handler:     NewHandler(s),
		authService: authService,
	}
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

func (r *SignInRequest) Validate() error {
	return validation.Struct(r)
}

// NoParams is the request of endpoints that read nothing but the route and
// the session.
type NoParams struct{}

func (r *NoParams) Validate() error {
	return nil
}

func (h *AuthHandler) SignIn(c echo.Context, req *SignInRequest) (*service.SignInResult, error) {
	return h.authService.SignIn(c.Request().Context(), req.Email, req.Password)
}

func (h *AuthHandler) Session(c echo.Context, _ *NoParams) (*service.SessionResult, error) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return nil, errs.NewUnauthorizedError("Unauthorized", false)
	}
	return h.authService.Session(c.Request().Context(), claims)
}

func (h *AuthHandler) SignOut(c echo.Context, _ *NoParams) error {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return errs.NewUnauthorizedError("Unauthorized", false)
	}
	return h.authService.SignOut(c.Request().Context(), claims)
}
