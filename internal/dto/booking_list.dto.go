package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/booking-api/internal/models"
)

type BookingListDTO struct {
	ID              uint            `json:"id"`
	BookingDatetime time.Time       `json:"booking_datetime"`
	EndsAt          time.Time       `json:"ends_at"`
	DurationMinutes int             `json:"duration_minutes"`
	Status          string          `json:"status"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	PaymentStatus   string          `json:"payment_status"`

	ClientID     uint   `json:"client_id"`
	ClientName   string `json:"client_name"`
	ServiceID    uint   `json:"service_id"`
	ServiceName  string `json:"service_name"`
	ServiceColor string `json:"service_color"`
	ProviderID   uint   `json:"provider_id"`
	ProviderName string `json:"provider_name"`
}

type BookingPage struct {
	Items []BookingListDTO `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
}

func FromBooking(b models.Booking) BookingListDTO {
	out := BookingListDTO{
		ID:              b.ID,
		BookingDatetime: b.BookingDatetime,
		EndsAt:          b.EndsAt,
		DurationMinutes: b.DurationMinutes,
		Status:          b.Status,
		TotalPrice:      b.TotalPrice,
		PaymentStatus:   b.PaymentStatus,
		ClientID:        b.ClientID,
		ServiceID:       b.ServiceID,
		ProviderID:      b.ProviderID,
	}

	if b.Client != nil {
		out.ClientName = fullName(b.Client.FirstName, b.Client.LastName)
	}
	if b.Service != nil {
		out.ServiceName = b.Service.Name
		out.ServiceColor = b.Service.Color
	}
	if b.Provider != nil {
		out.ProviderName = fullName(b.Provider.FirstName, b.Provider.LastName)
	}
	return out
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
