package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/BruksfildServices01/booking-api/internal/models"
)

type ListFilter struct {
	TenantID   uint
	Status     string
	ProviderID *uint
	ClientID   *uint
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int
}

type Repository interface {
	// -------- Tenant --------
	GetTenant(
		ctx context.Context,
		tenantID uint,
	) (*models.Tenant, error)

	// -------- Catalog --------
	GetService(
		ctx context.Context,
		tenantID uint,
		serviceID uint,
	) (*models.Service, error)

	GetProvider(
		ctx context.Context,
		tenantID uint,
		providerID uint,
	) (*models.Provider, error)

	// ProviderOffersService is true when the provider has no service
	// associations at all or is associated with serviceID.
	ProviderOffersService(
		ctx context.Context,
		tenantID uint,
		providerID uint,
		serviceID uint,
	) (bool, error)

	ListEligibleProviders(
		ctx context.Context,
		tenantID uint,
		serviceID uint,
	) ([]models.Provider, error)

	GetClient(
		ctx context.Context,
		tenantID uint,
		clientID uint,
	) (*models.Client, error)

	ListAddons(
		ctx context.Context,
		tenantID uint,
		serviceID uint,
		addonIDs []uint,
	) ([]models.ServiceAddon, error)

	// -------- Availability --------

	// ListAvailability returns the rows for one weekday. A nil providerID
	// selects the tenant defaults.
	ListAvailability(
		ctx context.Context,
		tenantID uint,
		providerID *uint,
		dayOfWeek int,
	) ([]models.Availability, error)

	// ListBlackedOutProviders reports which of providerIDs cannot work on
	// date (YYYY-MM-DD). tenantWide is true when the whole tenant is closed.
	ListBlackedOutProviders(
		ctx context.Context,
		tenantID uint,
		date string,
		providerIDs []uint,
	) (tenantWide bool, blocked map[uint]bool, err error)

	// -------- Booking --------
	ListActiveBookings(
		ctx context.Context,
		tenantID uint,
		providerIDs []uint,
		from time.Time,
		to time.Time,
	) ([]models.Booking, error)

	GetBooking(
		ctx context.Context,
		tenantID uint,
		bookingID uint,
	) (*models.Booking, error)

	// GetBookingForUpdate reads the booking under a row lock held until the
	// surrounding transaction ends. Status changes must read through it.
	GetBookingForUpdate(
		ctx context.Context,
		tenantID uint,
		bookingID uint,
	) (*models.Booking, error)

	ListBookings(
		ctx context.Context,
		f ListFilter,
	) ([]models.Booking, int64, error)

	// CreateBooking inserts the booking together with b.Addons.
	CreateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	UpdateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	// SetPayment writes only the payment columns.
	SetPayment(
		ctx context.Context,
		tenantID uint,
		bookingID uint,
		preferenceID string,
		status string,
	) error

	// -------- Concurrency --------

	// LockProvider takes a row lock on the provider until the surrounding
	// transaction ends. Outside a transaction it only checks existence.
	LockProvider(
		ctx context.Context,
		tenantID uint,
		providerID uint,
	) error

	Transaction(
		ctx context.Context,
		fn func(tx Repository) error,
	) error
}

// Locker serializes booking writes for one key across processes.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Clock is injected so slot filtering and timestamps are deterministic.
type Clock func() time.Time

// LockKey names the write lock of one provider's calendar.
func LockKey(tenantID, providerID uint) string {
	return fmt.Sprintf("booking:lock:%d:%d", tenantID, providerID)
}
