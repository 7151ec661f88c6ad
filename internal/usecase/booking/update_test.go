package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/booking-api/internal/domain/booking"
	"github.com/BruksfildServices01/booking-api/internal/events"
	"github.com/BruksfildServices01/booking-api/internal/httperr"
	"github.com/BruksfildServices01/booking-api/internal/infra/lock"
)

func newUpdate(repo *memRepo, pub events.Publisher) *UpdateBooking {
	return NewUpdateBooking(repo, lock.NewLocalLocker(), nil, pub, fixedClock)
}

func TestUpdateEmptyPatch(t *testing.T) {
	repo := seed()
	b := addBooking(repo, 100, monday.Add(9*time.Hour), 30, domain.StatusPending)

	_, err := newUpdate(repo, nil).Execute(context.Background(), UpdateBookingInput{TenantID: tenantA, BookingID: b.ID})
	assert.True(t, httperr.IsBusiness(err, "no_fields_to_update"))
	assert.Equal(t, 400, httperr.StatusFor(err))
}

func TestUpdateConfirmStampsOnce(t *testing.T) {
	repo := seed()
	b := addBooking(repo, 100, monday.Add(9*time.Hour), 30, domain.StatusPending)

	got, err := newUpdate(repo, nil).Execute(context.Background(), UpdateBookingInput{
		TenantID: tenantA, BookingID: b.ID, Patch: Patch{Status: ptr("confirmed")},
	})
	require.NoError(t, err)
	require.NotNil(t, got.ConfirmedAt)
	assert.Equal(t, fixedClock(), *got.ConfirmedAt)

	// Same state again is a no-op.
	again, err := newUpdate(repo, nil).Execute(context.Background(), UpdateBookingInput{
		TenantID: tenantA, BookingID: b.ID, Patch: Patch{Status: ptr("confirmed"), Notes: ptr("vip")},
	})
	require.NoError(t, err)
	assert.Equal(t, fixedClock(), *again.ConfirmedAt)
	assert.Equal(t, "vip", again.Notes)
}

func TestUpdateIllegalTransition(t *testing.T) {
	repo := seed()
	b := addBooking(repo, 100, monday.Add(9*time.Hour), 30, domain.StatusCompleted)

	_, err := newUpdate(repo, nil).Execute(context.Background(), UpdateBookingInput{
		TenantID: tenantA, BookingID: b.ID, Patch: Patch{Status: ptr("confirmed")},
	})
	require.Error(t, err)
	assert.Equal(t, 422, httperr.StatusFor(err))

	stored, _ := repo.GetBooking(context.Background(), tenantA, b.ID)
	assert.Equal(t, string(domain.StatusCompleted), stored.Status)
}

func TestUpdateUnknownStatus(t *testing.T) {
	repo := seed()
	b := addBooking(repo, 100, monday.Add(9*time.Hour), 30, domain.StatusPending)

	_, err := newUpdate(repo, nil).Execute(context.Background(), UpdateBookingInput{
		TenantID: tenantA, BookingID: b.ID, Patch: Patch{Status: ptr("archived")},
	})
	assert.True(t, httperr.IsBusiness(err, "invalid_status"))
}

func TestUpdateRescheduleExcludesItself(t *testing.T) {
	repo := seed()
	b := addBooking(repo, 100, monday.Add(9*time.Hour), 30, domain.StatusConfirmed)

	got, err := newUpdate(repo, nil).Execute(context.Background(), UpdateBookingInput{
		TenantID: tenantA, BookingID: b.ID,
		Patch: Patch{BookingDatetime: ptr(monday.Add(9*time.Hour + 15*time.Minute))},
	})
	require.NoError(t, err)
	assert.Equal(t, monday.Add(9*time.Hour+45*time.Minute), got.EndsAt)
}

func TestUpdateRescheduleConflict(t *testing.T) {
	repo := seed()
	addBooking(repo, 100, monday.Add(9*time.Hour), 30, domain.StatusConfirmed)
	b := addBooking(repo, 100, monday.Add(9*time.Hour+30*time.Minute), 30, domain.StatusConfirmed)

	_, err := newUpdate(repo, nil).Execute(context.Background(), UpdateBookingInput{
		TenantID: tenantA, BookingID: b.ID,
		Patch: Patch{BookingDatetime: ptr(monday.Add(9*time.Hour + 15*time.Minute))},
	})
	assert.True(t, httperr.IsKind(err, httperr.KindConflict))

	stored, _ := repo.GetBooking(context.Background(), tenantA, b.ID)
	assert.Equal(t, monday.Add(9*time.Hour+30*time.Minute), stored.BookingDatetime)
}

func TestUpdateRescheduleToOtherProvider(t *testing.T) {
	repo := seed()
	repo.offers[101] = nil
	b := addBooking(repo, 100, monday.Add(9*time.Hour), 30, domain.StatusConfirmed)
	pub := &recordingPublisher{}

	got, err := newUpdate(repo, pub).Execute(context.Background(), UpdateBookingInput{
		TenantID: tenantA, BookingID: b.ID, Patch: Patch{ProviderID: ptr(uint(101))},
	})
	require.NoError(t, err)
	assert.Equal(t, uint(101), got.ProviderID)
	assert.Equal(t, []string{events.BookingUpdated}, pub.keys)
}

func TestUpdateRescheduleInactiveBooking(t *testing.T) {
	repo := seed()
	b := addBooking(repo, 100, monday.Add(9*time.Hour), 30, domain.StatusCancelled)

	_, err := newUpdate(repo, nil).Execute(context.Background(), UpdateBookingInput{
		TenantID: tenantA, BookingID: b.ID,
		Patch: Patch{BookingDatetime: ptr(monday.Add(9*time.Hour + 30*time.Minute))},
	})
	assert.True(t, httperr.IsBusiness(err, "booking_not_active"))
}

func TestUpdateCancelViaPatchPublishesCancelled(t *testing.T) {
	repo := seed()
	b := addBooking(repo, 100, monday.Add(9*time.Hour), 30, domain.StatusConfirmed)
	pub := &recordingPublisher{}

	got, err := newUpdate(repo, pub).Execute(context.Background(), UpdateBookingInput{
		TenantID: tenantA, BookingID: b.ID, Patch: Patch{Status: ptr("cancelled")},
	})
	require.NoError(t, err)
	require.NotNil(t, got.CancelledAt)
	assert.Equal(t, []string{events.BookingCancelled}, pub.keys)
}

func TestUpdateOtherTenantBooking(t *testing.T) {
	repo := seed()
	b := addBooking(repo, 100, monday.Add(9*time.Hour), 30, domain.StatusConfirmed)

	_, err := newUpdate(repo, nil).Execute(context.Background(), UpdateBookingInput{
		TenantID: tenantB, BookingID: b.ID, Patch: Patch{Notes: ptr("x")},
	})
	assert.True(t, httperr.IsBusiness(err, "booking_not_found"))
}

func TestUpdateReadsBookingUnderRowLock(t *testing.T) {
	repo := seed()
	b := addBooking(repo, 100, monday.Add(9*time.Hour), 30, domain.StatusConfirmed)

	_, err := newUpdate(repo, nil).Execute(context.Background(), UpdateBookingInput{
		TenantID: tenantA, BookingID: b.ID, Patch: Patch{Status: ptr("completed")},
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{b.ID}, repo.lockedReads)

	// A cancel that lost the race sees the committed terminal state.
	_, err = NewCancelBooking(repo, nil, nil, fixedClock).Execute(context.Background(), CancelBookingInput{
		TenantID: tenantA, BookingID: b.ID,
	})
	assert.True(t, httperr.IsKind(err, httperr.KindInvalidTransition))
	assert.Nil(t, repo.bookings[b.ID].CancelledAt)
	assert.Equal(t, []uint{b.ID, b.ID}, repo.lockedReads)
}
