package booking

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	domain "github.com/BruksfildServices01/booking-api/internal/domain/booking"
	"github.com/BruksfildServices01/booking-api/internal/events"
	"github.com/BruksfildServices01/booking-api/internal/httperr"
	"github.com/BruksfildServices01/booking-api/internal/models"
	"github.com/BruksfildServices01/booking-api/internal/timezone"
)

const dateLayout = "2006-01-02"

func clockOrNow(c domain.Clock) domain.Clock {
	if c == nil {
		return time.Now
	}
	return c
}

// parseDay reads YYYY-MM-DD as local midnight in loc.
func parseDay(date string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}, httperr.ErrBusiness("invalid_date")
	}
	return day, nil
}

// earliestStart is the first instant a new booking may start.
func earliestStart(tenant *models.Tenant, now time.Time) time.Time {
	return now.Add(time.Duration(tenant.MinAdvanceMinutes) * time.Minute)
}

// providerWindows resolves the provider's windows for the weekday of day,
// falling back to the tenant defaults.
func providerWindows(
	ctx context.Context,
	repo domain.Repository,
	tenantID uint,
	providerID uint,
	day time.Time,
) ([]domain.Window, error) {

	dow := int(day.Weekday())

	own, err := repo.ListAvailability(ctx, tenantID, &providerID, dow)
	if err != nil {
		return nil, err
	}

	var defaults []models.Availability
	if len(own) == 0 {
		defaults, err = repo.ListAvailability(ctx, tenantID, nil, dow)
		if err != nil {
			return nil, err
		}
	}

	return domain.ResolveWindows(own, defaults), nil
}

// assertFits checks that [start, start+duration) lies inside one of the
// provider's windows on a day that is not blacked out.
func assertFits(
	ctx context.Context,
	repo domain.Repository,
	tenant *models.Tenant,
	providerID uint,
	start time.Time,
	duration int,
) error {

	loc := timezone.Location(tenant.Timezone)
	local := start.In(loc)
	day := timezone.StartOfDay(local, loc)

	tenantWide, blocked, err := repo.ListBlackedOutProviders(
		ctx,
		tenant.ID,
		day.Format(dateLayout),
		[]uint{providerID},
	)
	if err != nil {
		return err
	}
	if tenantWide || blocked[providerID] {
		return httperr.ErrBusiness("outside_availability")
	}

	windows, err := providerWindows(ctx, repo, tenant.ID, providerID, day)
	if err != nil {
		return err
	}

	from := timezone.MinuteOfDay(local)
	if !domain.Contains(windows, from, from+duration) {
		return httperr.ErrBusiness("outside_availability")
	}
	return nil
}

func bookingEvent(b *models.Booking, now time.Time) events.BookingEvent {
	return events.BookingEvent{
		BookingID:       b.ID,
		TenantID:        b.TenantID,
		ProviderID:      b.ProviderID,
		ClientID:        b.ClientID,
		ServiceID:       b.ServiceID,
		Status:          b.Status,
		BookingDatetime: b.BookingDatetime,
		OccurredAt:      now,
	}
}

// publish is best effort: the booking is already committed.
func publish(ctx context.Context, pub events.Publisher, key string, b *models.Booking, now time.Time) {
	if pub == nil {
		return
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	if err := pub.Publish(pctx, key, bookingEvent(b, now)); err != nil {
		log.Warn().Err(err).Str("routing_key", key).Uint("booking_id", b.ID).Msg("publish booking event")
	}
}
