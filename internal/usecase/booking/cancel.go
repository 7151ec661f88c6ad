package booking

import (
	"context"

	"github.com/BruksfildServices01/booking-api/internal/audit"
	domain "github.com/BruksfildServices01/booking-api/internal/domain/booking"
	"github.com/BruksfildServices01/booking-api/internal/events"
	"github.com/BruksfildServices01/booking-api/internal/models"
	"github.com/BruksfildServices01/booking-api/internal/monitoring"
)

type CancelBookingInput struct {
	TenantID  uint
	UserID    uint
	RequestID string
	BookingID uint
	Reason    string
}

type CancelBooking struct {
	repo      domain.Repository
	audit     *audit.Dispatcher
	publisher events.Publisher
	now       domain.Clock
}

func NewCancelBooking(
	repo domain.Repository,
	audit *audit.Dispatcher,
	publisher events.Publisher,
	now domain.Clock,
) *CancelBooking {
	return &CancelBooking{
		repo:      repo,
		audit:     audit,
		publisher: publisher,
		now:       clockOrNow(now),
	}
}

// Execute returns the booking unchanged when it is already cancelled.
func (uc *CancelBooking) Execute(
	ctx context.Context,
	in CancelBookingInput,
) (*models.Booking, error) {

	now := uc.now()

	var (
		b       *models.Booking
		from    domain.Status
		changed bool
	)

	err := uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		var err error
		b, err = tx.GetBookingForUpdate(ctx, in.TenantID, in.BookingID)
		if err != nil {
			return err
		}
		from = domain.Status(b.Status)

		changed, err = domain.Cancel(b, in.Reason, now)
		if err != nil || !changed {
			return err
		}
		return tx.UpdateBooking(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	if !changed {
		return b, nil
	}

	monitoring.BookingTransitions.WithLabelValues(string(from), b.Status).Inc()

	uc.audit.Dispatch(audit.Event{
		TenantID:  in.TenantID,
		UserID:    &in.UserID,
		Action:    "booking_cancelled",
		Entity:    "booking",
		EntityID:  &b.ID,
		RequestID: in.RequestID,
		Metadata:  map[string]any{"reason": in.Reason},
	})

	publish(ctx, uc.publisher, events.BookingCancelled, b, now)

	return b, nil
}
