package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/booking-api/internal/domain/booking"
	"github.com/BruksfildServices01/booking-api/internal/httperr"
	"github.com/BruksfildServices01/booking-api/internal/models"
)

func slotTimes(res *SlotsResult) []string {
	out := make([]string, 0, len(res.Slots))
	for _, s := range res.Slots {
		out = append(out, s.Time)
	}
	return out
}

func TestListSlotsEmptyDay(t *testing.T) {
	uc := NewListSlots(seed(), 15, fixedClock)

	res, err := uc.Execute(context.Background(), ListSlotsInput{
		TenantID: tenantA, ServiceID: 10, ProviderID: ptr(uint(100)), Date: "2026-03-02",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:15", "09:30"}, slotTimes(res))
	assert.False(t, res.Provisional)
}

func TestListSlotsSkipsBookedTimes(t *testing.T) {
	repo := seed()
	addBooking(repo, 100, monday.Add(9*time.Hour), 30, domain.StatusConfirmed)

	res, err := NewListSlots(repo, 15, fixedClock).Execute(context.Background(), ListSlotsInput{
		TenantID: tenantA, ServiceID: 10, ProviderID: ptr(uint(100)), Date: "2026-03-02",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:30"}, slotTimes(res))
}

func TestListSlotsIgnoresCancelledBookings(t *testing.T) {
	repo := seed()
	addBooking(repo, 100, monday.Add(9*time.Hour), 30, domain.StatusCancelled)

	res, err := NewListSlots(repo, 15, fixedClock).Execute(context.Background(), ListSlotsInput{
		TenantID: tenantA, ServiceID: 10, ProviderID: ptr(uint(100)), Date: "2026-03-02",
	})
	require.NoError(t, err)
	assert.Len(t, res.Slots, 3)
}

func TestListSlotsProviderWindowsOverrideDefaults(t *testing.T) {
	repo := seed()
	repo.windows = append(repo.windows, models.Availability{
		TenantID: tenantA, ProviderID: ptr(uint(100)), DayOfWeek: 1, StartTime: "14:00", EndTime: "15:00", IsActive: true,
	})

	res, err := NewListSlots(repo, 30, fixedClock).Execute(context.Background(), ListSlotsInput{
		TenantID: tenantA, ServiceID: 10, ProviderID: ptr(uint(100)), Date: "2026-03-02",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"14:00", "14:30"}, slotTimes(res))
}

func TestListSlotsWithoutProviderIsProvisional(t *testing.T) {
	repo := seed()
	addBooking(repo, 100, monday.Add(9*time.Hour), 30, domain.StatusConfirmed)

	res, err := NewListSlots(repo, 15, fixedClock).Execute(context.Background(), ListSlotsInput{
		TenantID: tenantA, ServiceID: 11, Date: "2026-03-02",
	})
	require.NoError(t, err)
	require.True(t, res.Provisional)
	require.Len(t, res.Slots, 3)

	// Provider 100 is busy at 09:00 but 101 is free.
	assert.Equal(t, []uint{101}, res.Slots[0].ProviderIDs)
	assert.Equal(t, []uint{100, 101}, res.Slots[2].ProviderIDs)
	for _, s := range res.Slots {
		assert.True(t, s.Provisional)
	}
}

func TestListSlotsWithoutProviderUsesEachProvidersWindows(t *testing.T) {
	repo := seed()
	repo.windows = append(repo.windows, models.Availability{
		TenantID: tenantA, ProviderID: ptr(uint(101)), DayOfWeek: 1, StartTime: "14:00", EndTime: "15:00", IsActive: true,
	})

	res, err := NewListSlots(repo, 30, fixedClock).Execute(context.Background(), ListSlotsInput{
		TenantID: tenantA, ServiceID: 11, Date: "2026-03-02",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"09:00", "09:30", "14:00", "14:30"}, slotTimes(res))

	// 101 works afternoons only, 100 keeps the tenant defaults.
	assert.Equal(t, []uint{100}, res.Slots[0].ProviderIDs)
	assert.Equal(t, []uint{100}, res.Slots[1].ProviderIDs)
	assert.Equal(t, []uint{101}, res.Slots[2].ProviderIDs)
	assert.Equal(t, []uint{101}, res.Slots[3].ProviderIDs)
}

func TestListSlotsMinAdvance(t *testing.T) {
	repo := seed()
	repo.tenants[tenantA].MinAdvanceMinutes = 60

	clock := func() time.Time { return monday.Add(8*time.Hour + 10*time.Minute) }
	res, err := NewListSlots(repo, 15, clock).Execute(context.Background(), ListSlotsInput{
		TenantID: tenantA, ServiceID: 10, ProviderID: ptr(uint(100)), Date: "2026-03-02",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:15", "09:30"}, slotTimes(res))
}

func TestListSlotsBlackouts(t *testing.T) {
	repo := seed()
	repo.blackouts = append(repo.blackouts, blackout(monday, ptr(uint(100))))

	res, err := NewListSlots(repo, 15, fixedClock).Execute(context.Background(), ListSlotsInput{
		TenantID: tenantA, ServiceID: 10, ProviderID: ptr(uint(100)), Date: "2026-03-02",
	})
	require.NoError(t, err)
	assert.Empty(t, res.Slots)

	repo.blackouts = []models.Unavailability{blackout(monday, nil)}
	res, err = NewListSlots(repo, 15, fixedClock).Execute(context.Background(), ListSlotsInput{
		TenantID: tenantA, ServiceID: 11, Date: "2026-03-02",
	})
	require.NoError(t, err)
	assert.Empty(t, res.Slots)
}

func TestListSlotsClosedDay(t *testing.T) {
	res, err := NewListSlots(seed(), 15, fixedClock).Execute(context.Background(), ListSlotsInput{
		TenantID: tenantA, ServiceID: 10, ProviderID: ptr(uint(100)), Date: "2026-03-03",
	})
	require.NoError(t, err)
	assert.Empty(t, res.Slots)
}

func TestListSlotsErrors(t *testing.T) {
	uc := NewListSlots(seed(), 15, fixedClock)
	ctx := context.Background()

	_, err := uc.Execute(ctx, ListSlotsInput{TenantID: tenantA, ServiceID: 20, Date: "2026-03-02"})
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound), "cross-tenant service")

	_, err = uc.Execute(ctx, ListSlotsInput{TenantID: tenantA, ServiceID: 10, Date: "02/03/2026"})
	assert.True(t, httperr.IsBusiness(err, "invalid_date"))

	_, err = uc.Execute(ctx, ListSlotsInput{TenantID: tenantA, ServiceID: 10, ProviderID: ptr(uint(101)), Date: "2026-03-02"})
	assert.True(t, httperr.IsBusiness(err, "service_not_offered"))
}

func TestListSlotsDeterministic(t *testing.T) {
	repo := seed()
	addBooking(repo, 100, monday.Add(9*time.Hour+15*time.Minute), 15, domain.StatusPending)
	uc := NewListSlots(repo, 15, fixedClock)
	in := ListSlotsInput{TenantID: tenantA, ServiceID: 11, Date: "2026-03-02"}

	a, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)
	b, err := uc.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
