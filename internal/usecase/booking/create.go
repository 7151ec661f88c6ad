package booking

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/booking-api/internal/audit"
	domain "github.com/BruksfildServices01/booking-api/internal/domain/booking"
	"github.com/BruksfildServices01/booking-api/internal/events"
	"github.com/BruksfildServices01/booking-api/internal/httperr"
	"github.com/BruksfildServices01/booking-api/internal/models"
	"github.com/BruksfildServices01/booking-api/internal/monitoring"
)

// ======================================================
// INPUT
// ======================================================

type CreateBookingInput struct {
	TenantID  uint
	UserID    uint
	RequestID string

	ClientID   uint
	ServiceID  uint
	ProviderID uint
	Datetime   time.Time

	Notes       string
	ClientNotes string
	AddonIDs    []uint
}

// ======================================================
// USE CASE
// ======================================================

type CreateBooking struct {
	repo      domain.Repository
	locker    domain.Locker
	audit     *audit.Dispatcher
	publisher events.Publisher
	now       domain.Clock
}

func NewCreateBooking(
	repo domain.Repository,
	locker domain.Locker,
	audit *audit.Dispatcher,
	publisher events.Publisher,
	now domain.Clock,
) *CreateBooking {
	return &CreateBooking{
		repo:      repo,
		locker:    locker,
		audit:     audit,
		publisher: publisher,
		now:       clockOrNow(now),
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateBooking) Execute(
	ctx context.Context,
	in CreateBookingInput,
) (*models.Booking, error) {

	if in.ProviderID == 0 {
		return nil, httperr.ErrBusiness("provider_required")
	}

	// --------------------------------------------------
	// 1. Referenced rows, all scoped to the tenant
	// --------------------------------------------------
	tenant, err := uc.repo.GetTenant(ctx, in.TenantID)
	if err != nil {
		return nil, err
	}

	svc, err := uc.repo.GetService(ctx, in.TenantID, in.ServiceID)
	if err != nil {
		return nil, err
	}

	if _, err := uc.repo.GetProvider(ctx, in.TenantID, in.ProviderID); err != nil {
		return nil, err
	}

	if _, err := uc.repo.GetClient(ctx, in.TenantID, in.ClientID); err != nil {
		return nil, err
	}

	ok, err := uc.repo.ProviderOffersService(ctx, in.TenantID, in.ProviderID, svc.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, httperr.ErrBusiness("service_not_offered")
	}

	addonIDs := uniqueIDs(in.AddonIDs)
	addons, err := uc.repo.ListAddons(ctx, in.TenantID, svc.ID, addonIDs)
	if err != nil {
		return nil, err
	}
	if len(addons) != len(addonIDs) {
		return nil, httperr.ErrNotFound("addon_not_found")
	}

	// --------------------------------------------------
	// 2. Time rules
	// --------------------------------------------------
	now := uc.now()
	start := in.Datetime.Truncate(time.Minute)

	if start.Before(earliestStart(tenant, now)) {
		return nil, httperr.ErrBusiness("too_soon")
	}

	if err := assertFits(ctx, uc.repo, tenant, in.ProviderID, start, svc.DurationMinutes); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 3. Build the snapshot
	// --------------------------------------------------
	status := domain.InitialStatus(svc.RequiresApproval)

	b := &models.Booking{
		TenantID:        in.TenantID,
		ClientID:        in.ClientID,
		ServiceID:       svc.ID,
		ProviderID:      in.ProviderID,
		DurationMinutes: svc.DurationMinutes,
		Status:          string(status),
		Price:           svc.Price,
		TotalPrice:      svc.Price,
		Notes:           in.Notes,
		ClientNotes:     in.ClientNotes,
		CreatedBy:       in.UserID,
	}
	domain.Schedule(b, start)

	if status == domain.StatusConfirmed {
		b.ConfirmedAt = &now
	}

	for _, a := range addons {
		b.Addons = append(b.Addons, models.BookingAddon{
			AddonID: a.ID,
			Name:    a.Name,
			Price:   a.Price,
		})
	}
	b.TotalPrice = sumAddons(svc.Price, b.Addons)

	// --------------------------------------------------
	// 4. Serialized re-check + insert
	// --------------------------------------------------
	release, err := uc.locker.Acquire(ctx, domain.LockKey(in.TenantID, in.ProviderID))
	if err != nil {
		return nil, err
	}
	defer release()

	candidate := domain.Occupied(start, svc.DurationMinutes, svc.BufferBeforeMinutes, svc.BufferAfterMinutes)

	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		if err := tx.LockProvider(ctx, in.TenantID, in.ProviderID); err != nil {
			return err
		}

		conflict, err := domain.HasConflict(ctx, tx, in.TenantID, in.ProviderID, candidate, nil)
		if err != nil {
			return err
		}
		if conflict {
			return httperr.ErrConflict("time_conflict")
		}

		return tx.CreateBooking(ctx, b)
	})
	if err != nil {
		if httperr.IsBusiness(err, "time_conflict") {
			monitoring.BookingConflicts.Inc()
			uc.audit.Dispatch(audit.Event{
				TenantID:  in.TenantID,
				UserID:    &in.UserID,
				Action:    "booking_conflict",
				Entity:    "provider",
				EntityID:  &in.ProviderID,
				RequestID: in.RequestID,
				Metadata:  map[string]any{"start": start, "service_id": svc.ID},
			})
		}
		return nil, err
	}

	// --------------------------------------------------
	// 5. Side effects
	// --------------------------------------------------
	monitoring.BookingsCreated.WithLabelValues(b.Status).Inc()

	uc.audit.Dispatch(audit.Event{
		TenantID:  in.TenantID,
		UserID:    &in.UserID,
		Action:    "booking_created",
		Entity:    "booking",
		EntityID:  &b.ID,
		RequestID: in.RequestID,
	})

	publish(ctx, uc.publisher, events.BookingCreated, b, now)

	return b, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func sumAddons(base decimal.Decimal, addons []models.BookingAddon) decimal.Decimal {
	total := base
	for _, a := range addons {
		total = total.Add(a.Price)
	}
	return total.Round(2)
}
