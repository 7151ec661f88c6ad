package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/booking-api/internal/models"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps uses half-open semantics: touching intervals do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Occupied widens a booking of duration at start by the service buffers.
// Buffers only affect conflict tests, never the booking start itself.
func Occupied(start time.Time, durationMin, bufferBefore, bufferAfter int) Interval {
	return Interval{
		Start: start.Add(-time.Duration(bufferBefore) * time.Minute),
		End:   start.Add(time.Duration(durationMin+bufferAfter) * time.Minute),
	}
}

func BookingInterval(b models.Booking) Interval {
	return Interval{Start: b.BookingDatetime, End: b.EndsAt}
}

// ConflictsWith reports whether candidate overlaps any active booking other
// than excludeID.
func ConflictsWith(candidate Interval, existing []models.Booking, excludeID *uint) bool {
	for _, b := range existing {
		if excludeID != nil && b.ID == *excludeID {
			continue
		}
		if !Status(b.Status).IsActive() {
			continue
		}
		if candidate.Overlaps(BookingInterval(b)) {
			return true
		}
	}
	return false
}

// HasConflict is the authoritative overlap check for one provider. repo may
// be bound to a transaction so the read happens under the provider lock.
func HasConflict(
	ctx context.Context,
	repo Repository,
	tenantID uint,
	providerID uint,
	candidate Interval,
	excludeID *uint,
) (bool, error) {
	existing, err := repo.ListActiveBookings(
		ctx,
		tenantID,
		[]uint{providerID},
		candidate.Start,
		candidate.End,
	)
	if err != nil {
		return false, err
	}
	return ConflictsWith(candidate, existing, excludeID), nil
}
