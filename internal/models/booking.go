package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Booking struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	TenantID uint `gorm:"index;not null" json:"tenant_id"`

	ClientID uint    `gorm:"not null" json:"client_id"`
	Client   *Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"client,omitempty"`

	ServiceID uint     `gorm:"not null" json:"service_id"`
	Service   *Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"service,omitempty"`

	ProviderID uint      `gorm:"index:idx_booking_provider_time;not null" json:"provider_id"`
	Provider   *Provider `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"provider,omitempty"`

	// EndsAt is BookingDatetime + DurationMinutes, stored for range queries.
	BookingDatetime time.Time `gorm:"index:idx_booking_provider_time;not null" json:"booking_datetime"`
	EndsAt          time.Time `gorm:"not null" json:"ends_at"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`

	Status     string          `gorm:"size:20;not null;default:'pending'" json:"status"`
	Price      decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"price"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"total_price"`

	Notes              string `gorm:"type:text" json:"notes"`
	ClientNotes        string `gorm:"type:text" json:"client_notes"`
	InternalNotes      string `gorm:"type:text" json:"internal_notes"`
	CancellationReason string `gorm:"size:255" json:"cancellation_reason"`

	PaymentStatus       string `gorm:"size:20;default:'unpaid'" json:"payment_status"`
	PaymentPreferenceID string `gorm:"size:100" json:"payment_preference_id,omitempty"`

	CreatedBy uint `json:"created_by"`

	ConfirmedAt *time.Time `json:"confirmed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	Addons []BookingAddon `gorm:"constraint:OnDelete:CASCADE;" json:"addons,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingAddon snapshots an add-on price at booking time.
type BookingAddon struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	BookingID uint            `gorm:"index;not null" json:"booking_id"`
	AddonID   uint            `gorm:"not null" json:"addon_id"`
	Name      string          `gorm:"size:100" json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"price"`

	CreatedAt time.Time `json:"created_at"`
}
