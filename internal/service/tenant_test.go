package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/deppfellow/booking-now/internal/lib/auth"
	"github.com/deppfellow/booking-now/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) tenantService() *TenantService {
	return &TenantService{tenants: f.tenants, defaultLoc: time.UTC, logger: &f.logger}
}

func TestTenantCreate(t *testing.T) {
	f := newFixture()

	res, err := f.tenantService().Create(context.Background(), CreateTenantInput{
		Name:          " Clinica Sur ",
		Slug:          "Clinica-Sur",
		Email:         "Info@Clinica.test",
		OwnerName:     "Laura",
		OwnerEmail:    "laura@clinica.test",
		OwnerPassword: "s3cret-pass",
	})
	require.NoError(t, err)

	require.Len(t, f.tenants.created, 1)
	created := f.tenants.created[0]
	assert.Equal(t, "Clinica Sur", created.Name)
	assert.Equal(t, "clinica-sur", created.Slug)
	assert.Equal(t, "info@clinica.test", created.Email)
	assert.Equal(t, "UTC", created.Timezone)

	assert.Equal(t, model.RoleTenantAdmin, res.Owner.Role)
	require.NotNil(t, res.Owner.PasswordHash)
	assert.True(t, auth.CheckPassword(*f.tenants.owners[0].PasswordHash, "s3cret-pass"))
}

func TestTenantCreate_UnknownTimezone(t *testing.T) {
	f := newFixture()

	_, err := f.tenantService().Create(context.Background(), CreateTenantInput{
		Name:          "Clinica",
		Slug:          "clinica",
		Timezone:      "Mars/Olympus",
		OwnerEmail:    "laura@clinica.test",
		OwnerPassword: "s3cret-pass",
	})

	httpErr := requireHTTPError(t, err, http.StatusBadRequest)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "timezone", httpErr.Errors[0].Field)
	assert.Empty(t, f.tenants.created)
}

func TestCatalogProfile(t *testing.T) {
	f := newFixture()
	svc := &CatalogService{tenants: f.tenants, catalog: f.catalog, logger: &f.logger}

	profile, err := svc.Profile(context.Background(), f.tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "studio-norte", profile.Slug)
	assert.Len(t, profile.Services, 1)
	assert.Len(t, profile.Professionals, 1)

	f.tenant.IsActive = false
	_, err = svc.Profile(context.Background(), f.tenant.ID)
	requireHTTPError(t, err, http.StatusNotFound)
}

func TestDefaultLocation(t *testing.T) {
	loc, err := defaultLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = defaultLocation("America/Bogota")
	require.NoError(t, err)
	assert.Equal(t, "America/Bogota", loc.String())

	_, err = defaultLocation("Nowhere/City")
	assert.Error(t, err)
}
