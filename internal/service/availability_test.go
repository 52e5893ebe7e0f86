package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/deppfellow/booking-now/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) availabilityService() *AvailabilityService {
	return &AvailabilityService{catalog: f.catalog, availability: f.availability, logger: &f.logger}
}

func TestValidateWeek(t *testing.T) {
	tests := []struct {
		name    string
		windows []model.AvailabilityInput
		code    string
	}{
		{
			name: "valid with touching windows",
			windows: []model.AvailabilityInput{
				{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"},
				{DayOfWeek: 1, StartTime: "12:00", EndTime: "14:00"},
				{DayOfWeek: 2, StartTime: "09:00", EndTime: "12:00"},
			},
		},
		{name: "empty week", windows: nil},
		{
			name:    "start after end",
			windows: []model.AvailabilityInput{{DayOfWeek: 1, StartTime: "12:00", EndTime: "09:00"}},
			code:    "INVALID_AVAILABILITY",
		},
		{
			name:    "bad day",
			windows: []model.AvailabilityInput{{DayOfWeek: 7, StartTime: "09:00", EndTime: "10:00"}},
			code:    "INVALID_AVAILABILITY",
		},
		{
			name: "overlap on same day",
			windows: []model.AvailabilityInput{
				{DayOfWeek: 3, StartTime: "09:00", EndTime: "12:00"},
				{DayOfWeek: 3, StartTime: "11:00", EndTime: "13:00"},
			},
			code: "OVERLAPPING_AVAILABILITY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWeek(tt.windows)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			httpErr := requireHTTPError(t, err, http.StatusBadRequest)
			assert.Equal(t, tt.code, httpErr.Code)
		})
	}
}

func TestValidateWeek_ReportsEachBadWindow(t *testing.T) {
	err := ValidateWeek([]model.AvailabilityInput{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00"},
		{DayOfWeek: 1, StartTime: "9am", EndTime: "10:00"},
		{DayOfWeek: 1, StartTime: "11:00", EndTime: "11:00"},
	})

	httpErr := requireHTTPError(t, err, http.StatusBadRequest)
	require.Len(t, httpErr.Errors, 2)
	assert.Equal(t, "windows[1]", httpErr.Errors[0].Field)
	assert.Equal(t, "windows[2]", httpErr.Errors[1].Field)
}

func TestAvailabilityReplace(t *testing.T) {
	f := newFixture()
	svc := f.availabilityService()
	inactive := false

	out, err := svc.Replace(context.Background(), f.tenant.ID, f.service.ID, []model.AvailabilityInput{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"},
		{DayOfWeek: 6, StartTime: "10:00", EndTime: "16:00", IsActive: &inactive},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out[0].IsActive)
	assert.False(t, out[1].IsActive)

	listed, err := svc.List(context.Background(), f.tenant.ID, f.service.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestAvailability_OtherTenantsService(t *testing.T) {
	f := newFixture()
	svc := f.availabilityService()

	_, err := svc.List(context.Background(), uuid.New(), f.service.ID)
	requireHTTPError(t, err, http.StatusNotFound)

	_, err = svc.Replace(context.Background(), uuid.New(), f.service.ID, nil)
	requireHTTPError(t, err, http.StatusNotFound)
	assert.Empty(t, f.availability.rows)
}
