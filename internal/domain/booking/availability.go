package booking

import (
	"sort"

	"github.com/BruksfildServices01/booking-api/internal/models"
	"github.com/BruksfildServices01/booking-api/internal/validators"
)

// Window is an open period of one day in minutes since midnight, [Start, End).
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type AvailabilityInput struct {
	TenantID   uint
	ServiceID  uint
	ProviderID *uint
	Date       string // YYYY-MM-DD in the tenant timezone
}

// ResolveWindows applies the fallback policy: a provider's own active windows
// for the day win; without any, the tenant defaults apply. Rows that are
// inactive or malformed are ignored. Overlaps are kept as they are.
func ResolveWindows(providerRows, defaultRows []models.Availability) []Window {
	windows := toWindows(providerRows)
	if len(windows) == 0 {
		windows = toWindows(defaultRows)
	}

	sort.Slice(windows, func(i, j int) bool {
		if windows[i].Start != windows[j].Start {
			return windows[i].Start < windows[j].Start
		}
		return windows[i].End < windows[j].End
	})
	return windows
}

func toWindows(rows []models.Availability) []Window {
	out := make([]Window, 0, len(rows))
	for _, r := range rows {
		if !r.IsActive {
			continue
		}
		start, ok1 := validators.ParseClock(r.StartTime)
		end, ok2 := validators.ParseClock(r.EndTime)
		if !ok1 || !ok2 || start >= end {
			continue
		}
		out = append(out, Window{Start: start, End: end})
	}
	return out
}

// Contains reports whether [start, end) minutes fits inside one window.
func Contains(windows []Window, start, end int) bool {
	for _, w := range windows {
		if start >= w.Start && end <= w.End {
			return true
		}
	}
	return false
}
