package booking

import (
	"context"

	domain "github.com/BruksfildServices01/booking-api/internal/domain/booking"
	"github.com/BruksfildServices01/booking-api/internal/dto"
	"github.com/BruksfildServices01/booking-api/internal/models"
)

type GetBooking struct {
	repo domain.Repository
}

func NewGetBooking(repo domain.Repository) *GetBooking {
	return &GetBooking{repo: repo}
}

func (uc *GetBooking) Execute(
	ctx context.Context,
	tenantID uint,
	bookingID uint,
) (*models.Booking, error) {
	return uc.repo.GetBooking(ctx, tenantID, bookingID)
}

type ListBookings struct {
	repo domain.Repository
}

func NewListBookings(repo domain.Repository) *ListBookings {
	return &ListBookings{repo: repo}
}

func (uc *ListBookings) Execute(
	ctx context.Context,
	f domain.ListFilter,
) (*dto.BookingPage, error) {

	bookings, total, err := uc.repo.ListBookings(ctx, f)
	if err != nil {
		return nil, err
	}

	items := make([]dto.BookingListDTO, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, dto.FromBooking(b))
	}

	page := f.Page
	if page < 1 {
		page = 1
	}

	return &dto.BookingPage{
		Items: items,
		Total: total,
		Page:  page,
	}, nil
}
