package booking

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/BruksfildServices01/booking-api/internal/audit"
	domain "github.com/BruksfildServices01/booking-api/internal/domain/booking"
	"github.com/BruksfildServices01/booking-api/internal/httperr"
	"github.com/BruksfildServices01/booking-api/internal/payments"
)

const (
	PaymentUnpaid  = "unpaid"
	PaymentPending = "pending"
)

type CheckoutInput struct {
	TenantID  uint
	UserID    uint
	RequestID string
	BookingID uint
}

// Checkout opens a payment preference for the booking total. A nil gateway
// means payments are not configured.
type Checkout struct {
	repo    domain.Repository
	gateway payments.Gateway
	audit   *audit.Dispatcher
}

func NewCheckout(
	repo domain.Repository,
	gateway payments.Gateway,
	audit *audit.Dispatcher,
) *Checkout {
	return &Checkout{repo: repo, gateway: gateway, audit: audit}
}

func (uc *Checkout) Execute(
	ctx context.Context,
	in CheckoutInput,
) (*payments.Checkout, error) {

	if uc.gateway == nil {
		return nil, httperr.ErrBusiness("payments_disabled")
	}

	tenant, err := uc.repo.GetTenant(ctx, in.TenantID)
	if err != nil {
		return nil, err
	}

	b, err := uc.repo.GetBooking(ctx, in.TenantID, in.BookingID)
	if err != nil {
		return nil, err
	}

	if !domain.Status(b.Status).IsActive() {
		return nil, httperr.ErrBusiness("booking_not_active")
	}
	if !b.TotalPrice.IsPositive() {
		return nil, httperr.ErrBusiness("nothing_to_pay")
	}

	title := "Booking"
	if b.Service != nil {
		title = b.Service.Name
	}

	items := []payments.CheckoutItem{{Title: title, Quantity: 1, Price: b.Price}}
	for _, a := range b.Addons {
		items = append(items, payments.CheckoutItem{Title: a.Name, Quantity: 1, Price: a.Price})
	}

	out, err := uc.gateway.CreateCheckout(ctx, payments.CheckoutRequest{
		ExternalReference: fmt.Sprintf("booking-%d-%d", in.TenantID, b.ID),
		Currency:          tenant.Currency,
		Items:             items,
	})
	if err != nil {
		return nil, err
	}

	// The gateway call ran without locks; a cancel may have landed meanwhile.
	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		locked, err := tx.GetBookingForUpdate(ctx, in.TenantID, b.ID)
		if err != nil {
			return err
		}
		if !domain.Status(locked.Status).IsActive() {
			return httperr.ErrBusiness("booking_not_active")
		}
		return tx.SetPayment(ctx, in.TenantID, b.ID, out.PreferenceID, PaymentPending)
	})
	if err != nil {
		log.Warn().
			Err(err).
			Uint("booking_id", b.ID).
			Str("preference_id", out.PreferenceID).
			Msg("checkout preference created but not attached to booking")
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		TenantID:  in.TenantID,
		UserID:    &in.UserID,
		Action:    "booking_checkout",
		Entity:    "booking",
		EntityID:  &b.ID,
		RequestID: in.RequestID,
		Metadata:  map[string]any{"preference_id": out.PreferenceID, "total": b.TotalPrice},
	})

	return out, nil
}
