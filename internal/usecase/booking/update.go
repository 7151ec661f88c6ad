package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/booking-api/internal/audit"
	domain "github.com/BruksfildServices01/booking-api/internal/domain/booking"
	"github.com/BruksfildServices01/booking-api/internal/events"
	"github.com/BruksfildServices01/booking-api/internal/httperr"
	"github.com/BruksfildServices01/booking-api/internal/models"
	"github.com/BruksfildServices01/booking-api/internal/monitoring"
)

// Patch lists the only fields a booking update may touch. Nil means
// "leave unchanged".
type Patch struct {
	BookingDatetime *time.Time
	ProviderID      *uint
	Status          *string
	Notes           *string
	InternalNotes   *string
}

func (p Patch) IsEmpty() bool {
	return p.BookingDatetime == nil &&
		p.ProviderID == nil &&
		p.Status == nil &&
		p.Notes == nil &&
		p.InternalNotes == nil
}

type UpdateBookingInput struct {
	TenantID  uint
	UserID    uint
	RequestID string
	BookingID uint
	Patch     Patch
}

type UpdateBooking struct {
	repo      domain.Repository
	locker    domain.Locker
	audit     *audit.Dispatcher
	publisher events.Publisher
	now       domain.Clock
}

func NewUpdateBooking(
	repo domain.Repository,
	locker domain.Locker,
	audit *audit.Dispatcher,
	publisher events.Publisher,
	now domain.Clock,
) *UpdateBooking {
	return &UpdateBooking{
		repo:      repo,
		locker:    locker,
		audit:     audit,
		publisher: publisher,
		now:       clockOrNow(now),
	}
}

func (uc *UpdateBooking) Execute(
	ctx context.Context,
	in UpdateBookingInput,
) (*models.Booking, error) {

	p := in.Patch
	if p.IsEmpty() {
		return nil, httperr.ErrBusiness("no_fields_to_update")
	}

	var target *domain.Status
	if p.Status != nil {
		st, err := domain.ParseStatus(*p.Status)
		if err != nil {
			return nil, err
		}
		target = &st
	}

	tenant, err := uc.repo.GetTenant(ctx, in.TenantID)
	if err != nil {
		return nil, err
	}

	current, err := uc.repo.GetBooking(ctx, in.TenantID, in.BookingID)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Reschedule validation (outside the lock)
	// --------------------------------------------------
	newStart := current.BookingDatetime
	if p.BookingDatetime != nil {
		newStart = p.BookingDatetime.Truncate(time.Minute)
	}
	newProvider := current.ProviderID
	if p.ProviderID != nil {
		newProvider = *p.ProviderID
	}

	reschedule := !newStart.Equal(current.BookingDatetime) || newProvider != current.ProviderID
	now := uc.now()

	var svc *models.Service
	if reschedule {
		if !domain.Status(current.Status).IsActive() {
			return nil, httperr.ErrBusiness("booking_not_active")
		}
		if target != nil && !target.IsActive() {
			return nil, httperr.ErrBusiness("booking_not_active")
		}

		if newProvider != current.ProviderID {
			if _, err := uc.repo.GetProvider(ctx, in.TenantID, newProvider); err != nil {
				return nil, err
			}
			ok, err := uc.repo.ProviderOffersService(ctx, in.TenantID, newProvider, current.ServiceID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, httperr.ErrBusiness("service_not_offered")
			}
		}

		if !newStart.Equal(current.BookingDatetime) && newStart.Before(earliestStart(tenant, now)) {
			return nil, httperr.ErrBusiness("too_soon")
		}

		if err := assertFits(ctx, uc.repo, tenant, newProvider, newStart, current.DurationMinutes); err != nil {
			return nil, err
		}

		svc = current.Service
		if svc == nil {
			svc = &models.Service{}
		}

		release, err := uc.locker.Acquire(ctx, domain.LockKey(in.TenantID, newProvider))
		if err != nil {
			return nil, err
		}
		defer release()
	}

	// --------------------------------------------------
	// Apply under the transaction
	// --------------------------------------------------
	var (
		b       *models.Booking
		from    domain.Status
		changed bool
	)

	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		if reschedule {
			if err := tx.LockProvider(ctx, in.TenantID, newProvider); err != nil {
				return err
			}
		}

		var err error
		b, err = tx.GetBookingForUpdate(ctx, in.TenantID, in.BookingID)
		if err != nil {
			return err
		}
		from = domain.Status(b.Status)

		if target != nil {
			changed, err = domain.Transition(b, *target, now)
			if err != nil {
				return err
			}
		}

		if reschedule {
			if !domain.Status(b.Status).IsActive() {
				return httperr.ErrBusiness("booking_not_active")
			}

			b.ProviderID = newProvider
			b.Provider = nil
			domain.Schedule(b, newStart)

			candidate := domain.Occupied(newStart, b.DurationMinutes, svc.BufferBeforeMinutes, svc.BufferAfterMinutes)
			conflict, err := domain.HasConflict(ctx, tx, in.TenantID, newProvider, candidate, &b.ID)
			if err != nil {
				return err
			}
			if conflict {
				return httperr.ErrConflict("time_conflict")
			}
		}

		if p.Notes != nil {
			b.Notes = *p.Notes
		}
		if p.InternalNotes != nil {
			b.InternalNotes = *p.InternalNotes
		}

		return tx.UpdateBooking(ctx, b)
	})
	if err != nil {
		if httperr.IsBusiness(err, "time_conflict") {
			monitoring.BookingConflicts.Inc()
		}
		return nil, err
	}

	if changed {
		monitoring.BookingTransitions.WithLabelValues(string(from), b.Status).Inc()
	}

	uc.audit.Dispatch(audit.Event{
		TenantID:  in.TenantID,
		UserID:    &in.UserID,
		Action:    "booking_updated",
		Entity:    "booking",
		EntityID:  &b.ID,
		RequestID: in.RequestID,
		Metadata: map[string]any{
			"from_status": from,
			"to_status":   b.Status,
			"rescheduled": reschedule,
		},
	})

	key := events.BookingUpdated
	if changed && b.Status == string(domain.StatusCancelled) {
		key = events.BookingCancelled
	}
	publish(ctx, uc.publisher, key, b, now)

	return b, nil
}
