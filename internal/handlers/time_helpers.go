package handlers

import (
	"strings"
	"time"

	"github.com/BruksfildServices01/booking-api/internal/httperr"
	"github.com/BruksfildServices01/booking-api/internal/models"
	"github.com/BruksfildServices01/booking-api/internal/timezone"
)

// locationFromTenant resolves the tenant's official timezone.
func locationFromTenant(t *models.Tenant) *time.Location {
	if t == nil {
		return timezone.Location("")
	}
	return timezone.Location(t.Timezone)
}

// parseDateTimeInTenant accepts RFC3339 (any offset) or a local
// "YYYY-MM-DD HH:MM" / "YYYY-MM-DDTHH:MM" read in the tenant timezone.
func parseDateTimeInTenant(t *models.Tenant, s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}

	loc := locationFromTenant(t)
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04"} {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, httperr.ErrBusiness("invalid_datetime")
}

func parseDateInTenant(t *models.Tenant, s string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), locationFromTenant(t))
	if err != nil {
		return time.Time{}, httperr.ErrBusiness("invalid_date")
	}
	return d, nil
}
