package booking

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/booking-api/internal/domain/booking"
	"github.com/BruksfildServices01/booking-api/internal/httperr"
	"github.com/BruksfildServices01/booking-api/internal/models"
	"github.com/BruksfildServices01/booking-api/internal/payments"
)

func TestCheckoutCreatesPreference(t *testing.T) {
	repo := seed()
	b := addBooking(repo, 100, monday.Add(9*time.Hour), 30, domain.StatusConfirmed)
	stored := repo.bookings[b.ID]
	stored.Price = decimal.NewFromInt(25)
	stored.TotalPrice = decimal.RequireFromString("32.50")
	stored.Addons = []models.BookingAddon{{AddonID: 500, Name: "Wash", Price: decimal.RequireFromString("7.50")}}

	gw := &fakeGateway{}
	out, err := NewCheckout(repo, gw, nil).Execute(context.Background(), CheckoutInput{TenantID: tenantA, BookingID: b.ID})
	require.NoError(t, err)

	assert.Equal(t, "pref-1", out.PreferenceID)
	assert.Len(t, gw.last.Items, 2)
	assert.Equal(t, "EUR", gw.last.Currency)
	assert.Equal(t, PaymentPending, repo.bookings[b.ID].PaymentStatus)
	assert.Equal(t, "pref-1", repo.bookings[b.ID].PaymentPreferenceID)
}

func TestCheckoutRules(t *testing.T) {
	repo := seed()
	free := addBooking(repo, 100, monday.Add(9*time.Hour), 30, domain.StatusConfirmed)

	_, err := NewCheckout(repo, &fakeGateway{}, nil).Execute(context.Background(), CheckoutInput{TenantID: tenantA, BookingID: free.ID})
	assert.True(t, httperr.IsBusiness(err, "nothing_to_pay"))

	_, err = NewCheckout(repo, nil, nil).Execute(context.Background(), CheckoutInput{TenantID: tenantA, BookingID: free.ID})
	assert.True(t, httperr.IsBusiness(err, "payments_disabled"))
}

func TestListBookingsPage(t *testing.T) {
	repo := seed()
	addBooking(repo, 100, monday.Add(9*time.Hour+30*time.Minute), 30, domain.StatusConfirmed)
	addBooking(repo, 100, monday.Add(9*time.Hour), 30, domain.StatusPending)

	page, err := NewListBookings(repo).Execute(context.Background(), domain.ListFilter{TenantID: tenantA})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, "pending", page.Items[0].Status)
}

// cancellingGateway cancels the booking while the preference is being
// created, the way a concurrent request would.
type cancellingGateway struct {
	repo      *memRepo
	bookingID uint
}

func (g *cancellingGateway) CreateCheckout(ctx context.Context, _ payments.CheckoutRequest) (*payments.Checkout, error) {
	_, err := NewCancelBooking(g.repo, nil, nil, fixedClock).Execute(ctx, CancelBookingInput{
		TenantID: tenantA, BookingID: g.bookingID, Reason: "client called",
	})
	if err != nil {
		return nil, err
	}
	return &payments.Checkout{PreferenceID: "pref-late"}, nil
}

func TestCheckoutDoesNotReviveCancelledBooking(t *testing.T) {
	repo := seed()
	b := addBooking(repo, 100, monday.Add(9*time.Hour), 30, domain.StatusConfirmed)
	repo.bookings[b.ID].Price = decimal.NewFromInt(25)
	repo.bookings[b.ID].TotalPrice = decimal.NewFromInt(25)

	gw := &cancellingGateway{repo: repo, bookingID: b.ID}
	_, err := NewCheckout(repo, gw, nil).Execute(context.Background(), CheckoutInput{TenantID: tenantA, BookingID: b.ID})
	assert.True(t, httperr.IsBusiness(err, "booking_not_active"))

	final := repo.bookings[b.ID]
	assert.Equal(t, string(domain.StatusCancelled), final.Status)
	require.NotNil(t, final.CancelledAt)
	assert.Equal(t, "client called", final.CancellationReason)
	assert.Empty(t, final.PaymentPreferenceID)
	assert.Contains(t, repo.lockedReads, b.ID)
}

// notingGateway edits the booking notes during the gateway call.
type notingGateway struct {
	repo      *memRepo
	bookingID uint
}

func (g *notingGateway) CreateCheckout(ctx context.Context, _ payments.CheckoutRequest) (*payments.Checkout, error) {
	_, err := NewUpdateBooking(g.repo, nil, nil, nil, fixedClock).Execute(ctx, UpdateBookingInput{
		TenantID: tenantA, BookingID: g.bookingID, Patch: Patch{Notes: ptr("bring ID")},
	})
	if err != nil {
		return nil, err
	}
	return &payments.Checkout{PreferenceID: "pref-2"}, nil
}

func TestCheckoutWritesOnlyPaymentFields(t *testing.T) {
	repo := seed()
	b := addBooking(repo, 100, monday.Add(9*time.Hour), 30, domain.StatusConfirmed)
	repo.bookings[b.ID].TotalPrice = decimal.NewFromInt(25)

	gw := &notingGateway{repo: repo, bookingID: b.ID}
	_, err := NewCheckout(repo, gw, nil).Execute(context.Background(), CheckoutInput{TenantID: tenantA, BookingID: b.ID})
	require.NoError(t, err)

	final := repo.bookings[b.ID]
	assert.Equal(t, "bring ID", final.Notes)
	assert.Equal(t, "pref-2", final.PaymentPreferenceID)
	assert.Equal(t, PaymentPending, final.PaymentStatus)
}
