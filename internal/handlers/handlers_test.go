package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/booking-api/internal/httperr"
	"github.com/BruksfildServices01/booking-api/internal/models"
)

func TestParseDateTimeInTenant(t *testing.T) {
	tenant := &models.Tenant{Timezone: "Europe/Rome"}

	local, err := parseDateTimeInTenant(tenant, "2026-03-02 09:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC), local.UTC())

	withT, err := parseDateTimeInTenant(tenant, "2026-03-02T09:30")
	require.NoError(t, err)
	assert.True(t, local.Equal(withT))

	explicit, err := parseDateTimeInTenant(tenant, "2026-03-02T09:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC), explicit.UTC())

	_, err = parseDateTimeInTenant(tenant, "tomorrow")
	assert.True(t, httperr.IsBusiness(err, "invalid_datetime"))
}

func TestParseDateInTenant(t *testing.T) {
	tenant := &models.Tenant{Timezone: "America/Sao_Paulo"}

	d, err := parseDateInTenant(tenant, "2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", d.Location().String())
	assert.Equal(t, 0, d.Hour())

	_, err = parseDateInTenant(tenant, "02/03/2026")
	assert.True(t, httperr.IsBusiness(err, "invalid_date"))
}

func TestReplaceWindowsValidatesBeforeWriting(t *testing.T) {
	cases := []struct {
		name string
		in   WindowRequest
		code string
	}{
		{"day too large", WindowRequest{DayOfWeek: 7, StartTime: "09:00", EndTime: "10:00"}, "invalid_day_of_week"},
		{"negative day", WindowRequest{DayOfWeek: -1, StartTime: "09:00", EndTime: "10:00"}, "invalid_day_of_week"},
		{"end before start", WindowRequest{DayOfWeek: 1, StartTime: "10:00", EndTime: "09:00"}, "invalid_time_window"},
		{"empty window", WindowRequest{DayOfWeek: 1, StartTime: "09:00", EndTime: "09:00"}, "invalid_time_window"},
		{"bad clock", WindowRequest{DayOfWeek: 1, StartTime: "9am", EndTime: "10:00"}, "invalid_time_window"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// a nil db proves nothing is written when validation fails
			_, err := replaceWindows(nil, 1, nil, []WindowRequest{tc.in})
			assert.True(t, httperr.IsBusiness(err, tc.code), "got %v", err)
		})
	}
}

func TestToProviderViewFlattensServiceIDs(t *testing.T) {
	p := models.Provider{
		ID: 4,
		Services: []models.ProviderService{
			{ProviderID: 4, ServiceID: 10},
			{ProviderID: 4, ServiceID: 12},
		},
	}

	v := toProviderView(p)

	assert.Equal(t, []uint{10, 12}, v.ServiceIDs)
	assert.Nil(t, v.Services)
}
