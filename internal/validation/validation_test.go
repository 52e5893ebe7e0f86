package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/booking-now/internal/errs"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type window struct {
	DayOfWeek int    `json:"dayOfWeek" validate:"min=0,max=6"`
	StartTime string `json:"startTime" validate:"required,len=5"`
}

type testRequest struct {
	TenantID       string   `param:"tenantId" json:"-" validate:"required,uuid"`
	CustomerEmail  string   `json:"customerEmail" validate:"required,email"`
	ProfessionalID string   `json:"professionalId" validate:"omitempty,uuid|eq=any"`
	Date           string   `json:"date" validate:"required,datetime=2006-01-02"`
	Windows        []window `json:"windows" validate:"dive"`
}

func (r *testRequest) Validate() error {
	return Struct(r)
}

type customRequest struct {
	Slug string `json:"slug"`
}

func (r *customRequest) Validate() error {
	if strings.Contains(r.Slug, " ") {
		return CustomValidationErrors{{Field: "slug", Message: "must not contain spaces"}}
	}
	return nil
}

func newContext(body string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("tenantId")
	c.SetParamValues("8d1c3c59-0f6f-4a58-9d5a-3b3f0b1e2c11")
	return c
}

func asHTTPError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr), "got %v", err)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	return httpErr
}

func TestBindAndValidate_OK(t *testing.T) {
	req := &testRequest{}
	err := BindAndValidate(newContext(`{"customerEmail":"a@b.co","professionalId":"any","date":"2026-03-03"}`), req)

	require.NoError(t, err)
	assert.Equal(t, "8d1c3c59-0f6f-4a58-9d5a-3b3f0b1e2c11", req.TenantID)
	assert.Equal(t, "any", req.ProfessionalID)
}

func TestBindAndValidate_FieldErrors(t *testing.T) {
	err := BindAndValidate(newContext(
		`{"customerEmail":"nope","professionalId":"bob","date":"03/03/2026","windows":[{"dayOfWeek":9,"startTime":"9:00"}]}`,
	), &testRequest{})

	httpErr := asHTTPError(t, err)
	assert.Equal(t, "Validation failed", httpErr.Message)

	got := map[string]string{}
	for _, fe := range httpErr.Errors {
		got[fe.Field] = fe.Error
	}
	assert.Equal(t, map[string]string{
		"customerEmail":        "must be a valid email address",
		"professionalId":       `must be a valid UUID or "any"`,
		"date":                 "must match the format 2006-01-02",
		"windows[0].dayOfWeek": "must not exceed 6",
		"windows[0].startTime": "must be exactly 5 characters",
	}, got)
}

func TestBindAndValidate_MalformedBody(t *testing.T) {
	err := BindAndValidate(newContext(`{"customerEmail":`), &testRequest{})

	httpErr := asHTTPError(t, err)
	assert.Equal(t, "INVALID_REQUEST", httpErr.Code)
	assert.NotEmpty(t, httpErr.Message)
}

func TestBindAndValidate_CustomErrors(t *testing.T) {
	err := BindAndValidate(newContext(`{"slug":"my studio"}`), &customRequest{})

	httpErr := asHTTPError(t, err)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, errs.FieldError{Field: "slug", Error: "must not contain spaces"}, httpErr.Errors[0])
}

type nameRequest struct {
	CustomerName string `json:"customerName" validate:"required,notblank"`
}

func (r *nameRequest) Validate() error {
	return Struct(r)
}

func TestBindAndValidate_BlankName(t *testing.T) {
	err := BindAndValidate(newContext(`{"customerName":"   "}`), &nameRequest{})

	httpErr := asHTTPError(t, err)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, errs.FieldError{Field: "customerName", Error: "is required"}, httpErr.Errors[0])

	require.NoError(t, BindAndValidate(newContext(`{"customerName":" Maria "}`), &nameRequest{}))
}
