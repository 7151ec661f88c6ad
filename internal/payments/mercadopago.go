// Package payments creates checkout preferences for bookings.
package payments

import (
	"context"
	"fmt"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/shopspring/decimal"
)

type CheckoutItem struct {
	Title    string
	Quantity int
	Price    decimal.Decimal
}

type CheckoutRequest struct {
	ExternalReference string
	Currency          string
	Items             []CheckoutItem
}

type Checkout struct {
	PreferenceID string `json:"preference_id"`
	InitPoint    string `json:"init_point"`
}

type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error)
}

type MercadoPago struct {
	client preference.Client
}

// NewMercadoPago returns nil, nil when token is empty so callers can treat
// payments as disabled.
func NewMercadoPago(token string) (*MercadoPago, error) {
	if token == "" {
		return nil, nil
	}

	cfg, err := config.New(token)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &MercadoPago{client: preference.NewClient(cfg)}, nil
}

func (m *MercadoPago) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	items := make([]preference.ItemRequest, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, preference.ItemRequest{
			Title:      it.Title,
			Quantity:   it.Quantity,
			UnitPrice:  it.Price.InexactFloat64(),
			CurrencyID: req.Currency,
		})
	}

	resp, err := m.client.Create(ctx, preference.Request{
		Items:             items,
		ExternalReference: req.ExternalReference,
	})
	if err != nil {
		return nil, fmt.Errorf("create preference: %w", err)
	}

	return &Checkout{
		PreferenceID: resp.ID,
		InitPoint:    resp.InitPoint,
	}, nil
}

var _ Gateway = (*MercadoPago)(nil)
