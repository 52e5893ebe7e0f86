package service

import (
	"context"
	"testing"
	"time"

	"github.com/deppfellow/booking-now/internal/config"
	"github.com/deppfellow/booking-now/internal/lib/auth"
	"github.com/deppfellow/booking-now/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) seedService() *SeedService {
	return &SeedService{
		users:        f.users,
		catalog:      f.catalog,
		availability: f.availability,
		cfg: config.SeedConfig{
			AdminEmail:    "admin@booking-now.com",
			AdminPassword: "admin123",
			AdminName:     "Super Admin",
		},
		logger: &f.logger,
	}
}

func TestDefaultWeeklyAvailability(t *testing.T) {
	windows := DefaultWeeklyAvailability()
	require.Len(t, windows, 11)
	require.NoError(t, ValidateWeek(windows))

	perDay := map[int]int{}
	for _, w := range windows {
		perDay[w.DayOfWeek]++
		assert.True(t, w.Active())
	}
	for day := time.Monday; day <= time.Friday; day++ {
		assert.Equal(t, 2, perDay[int(day)], day.String())
	}
	assert.Equal(t, 1, perDay[int(time.Saturday)])
	assert.Zero(t, perDay[int(time.Sunday)])
	assert.Equal(t, model.AvailabilityInput{DayOfWeek: 6, StartTime: "10:00", EndTime: "16:00"}, windows[10])
}

func TestSeedServiceAvailability(t *testing.T) {
	f := newFixture()
	second := &model.Service{Base: model.Base{ID: uuid.New()}, TenantID: f.tenant.ID, Name: "Beard trim", Duration: 15, IsActive: true}
	retired := &model.Service{Base: model.Base{ID: uuid.New()}, TenantID: f.tenant.ID, Name: "Perm", Duration: 90}
	f.catalog.services[second.ID] = second
	f.catalog.services[retired.ID] = retired

	stale := uuid.New()
	f.availability.rows[stale] = toRows(stale, DefaultWeeklyAvailability())

	res, err := f.seedService().SeedServiceAvailability(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.Services)
	assert.Equal(t, int64(22), res.Windows)
	assert.NotContains(t, f.availability.rows, stale)
	assert.NotContains(t, f.availability.rows, retired.ID)
	assert.Len(t, f.availability.rows[second.ID], 11)
}

func TestSeedServiceAvailability_NoServices(t *testing.T) {
	f := newFixture()
	f.service.IsActive = false

	_, err := f.seedService().SeedServiceAvailability(context.Background())
	assert.ErrorIs(t, err, ErrNoServices)
	assert.Equal(t, "no services found, run the main seed first", err.Error())
	assert.Zero(t, f.availability.resetCalls)
}

func TestMainSeed_Idempotent(t *testing.T) {
	f := newFixture()
	svc := f.seedService()

	require.NoError(t, svc.MainSeed(context.Background()))
	require.NoError(t, svc.MainSeed(context.Background()))

	require.Len(t, f.users.byEmail, 1)
	admin := f.users.byEmail["admin@booking-now.com"]
	assert.Equal(t, model.RoleAdmin, admin.Role)
	require.NotNil(t, admin.PasswordHash)
	assert.True(t, auth.CheckPassword(*admin.PasswordHash, "admin123"))
}
