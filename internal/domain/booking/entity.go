package booking

import (
	"time"

	"github.com/BruksfildServices01/booking-api/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Transition moves b to the target status and stamps the matching timestamp
// unless it is already set. It reports whether the status changed.
func Transition(b *models.Booking, to Status, now time.Time) (bool, error) {
	from := Status(b.Status)
	if err := CanTransition(from, to); err != nil {
		return false, err
	}
	if from == to {
		return false, nil
	}

	b.Status = string(to)

	switch to {
	case StatusConfirmed:
		if b.ConfirmedAt == nil {
			b.ConfirmedAt = &now
		}
	case StatusCancelled:
		if b.CancelledAt == nil {
			b.CancelledAt = &now
		}
	case StatusCompleted:
		if b.CompletedAt == nil {
			b.CompletedAt = &now
		}
	}
	return true, nil
}

// Cancel is idempotent: cancelling an already cancelled booking changes
// nothing, including the stored reason.
func Cancel(b *models.Booking, reason string, now time.Time) (bool, error) {
	changed, err := Transition(b, StatusCancelled, now)
	if err != nil || !changed {
		return false, err
	}
	b.CancellationReason = reason
	return true, nil
}

// Schedule sets the start instant and keeps EndsAt consistent with the
// snapshotted duration.
func Schedule(b *models.Booking, start time.Time) {
	b.BookingDatetime = start
	b.EndsAt = start.Add(time.Duration(b.DurationMinutes) * time.Minute)
}
