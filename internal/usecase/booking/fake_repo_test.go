package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	domain "github.com/BruksfildServices01/booking-api/internal/domain/booking"
	"github.com/BruksfildServices01/booking-api/internal/events"
	"github.com/BruksfildServices01/booking-api/internal/httperr"
	"github.com/BruksfildServices01/booking-api/internal/models"
	"github.com/BruksfildServices01/booking-api/internal/payments"
)

// memRepo is an in-memory domain.Repository. Transaction restores the
// booking table when fn fails.
type memRepo struct {
	mu sync.Mutex

	tenants    map[uint]*models.Tenant
	services   map[uint]*models.Service
	providers  map[uint]*models.Provider
	clients    map[uint]*models.Client
	addons     map[uint]*models.ServiceAddon
	offers     map[uint][]uint
	windows    []models.Availability
	blackouts  []models.Unavailability
	bookings   map[uint]*models.Booking
	nextID     uint
	failCreate error

	// lockedReads records bookings read through GetBookingForUpdate.
	lockedReads []uint
}

func newMemRepo() *memRepo {
	return &memRepo{
		tenants:   map[uint]*models.Tenant{},
		services:  map[uint]*models.Service{},
		providers: map[uint]*models.Provider{},
		clients:   map[uint]*models.Client{},
		addons:    map[uint]*models.ServiceAddon{},
		offers:    map[uint][]uint{},
		bookings:  map[uint]*models.Booking{},
		nextID:    1,
	}
}

func cloneBooking(b *models.Booking) *models.Booking {
	c := *b
	c.Addons = append([]models.BookingAddon(nil), b.Addons...)
	return &c
}

func (r *memRepo) GetTenant(_ context.Context, id uint) (*models.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tenants[id]
	if !ok {
		return nil, httperr.ErrNotFound("tenant_not_found")
	}
	c := *t
	return &c, nil
}

func (r *memRepo) GetService(_ context.Context, tenantID, id uint) (*models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[id]
	if !ok || s.TenantID != tenantID || !s.IsActive {
		return nil, httperr.ErrNotFound("service_not_found")
	}
	c := *s
	return &c, nil
}

func (r *memRepo) GetProvider(_ context.Context, tenantID, id uint) (*models.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.providers[id]
	if !ok || p.TenantID != tenantID || !p.IsActive {
		return nil, httperr.ErrNotFound("provider_not_found")
	}
	c := *p
	return &c, nil
}

func (r *memRepo) offersLocked(providerID, serviceID uint) bool {
	list := r.offers[providerID]
	if len(list) == 0 {
		return true
	}
	for _, id := range list {
		if id == serviceID {
			return true
		}
	}
	return false
}

func (r *memRepo) ProviderOffersService(_ context.Context, _ uint, providerID, serviceID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.offersLocked(providerID, serviceID), nil
}

func (r *memRepo) ListEligibleProviders(_ context.Context, tenantID, serviceID uint) ([]models.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Provider
	for _, p := range r.providers {
		if p.TenantID == tenantID && p.IsActive && r.offersLocked(p.ID, serviceID) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepo) GetClient(_ context.Context, tenantID, id uint) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok || c.TenantID != tenantID {
		return nil, httperr.ErrNotFound("client_not_found")
	}
	cc := *c
	return &cc, nil
}

func (r *memRepo) ListAddons(_ context.Context, tenantID, serviceID uint, ids []uint) ([]models.ServiceAddon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.ServiceAddon{}
	for _, id := range ids {
		a, ok := r.addons[id]
		if ok && a.TenantID == tenantID && a.ServiceID == serviceID && a.IsActive {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memRepo) ListAvailability(_ context.Context, tenantID uint, providerID *uint, dow int) ([]models.Availability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Availability
	for _, w := range r.windows {
		if w.TenantID != tenantID || w.DayOfWeek != dow || !w.IsActive {
			continue
		}
		if (providerID == nil) != (w.ProviderID == nil) {
			continue
		}
		if providerID != nil && *providerID != *w.ProviderID {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

func (r *memRepo) ListBlackedOutProviders(_ context.Context, tenantID uint, date string, _ []uint) (bool, map[uint]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	blocked := map[uint]bool{}
	tenantWide := false
	for _, u := range r.blackouts {
		if u.TenantID != tenantID || time.Time(u.Date).Format("2006-01-02") != date {
			continue
		}
		if u.ProviderID == nil {
			tenantWide = true
		} else {
			blocked[*u.ProviderID] = true
		}
	}
	return tenantWide, blocked, nil
}

func (r *memRepo) ListActiveBookings(_ context.Context, tenantID uint, providerIDs []uint, from, to time.Time) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := map[uint]bool{}
	for _, id := range providerIDs {
		want[id] = true
	}
	var out []models.Booking
	for _, b := range r.bookings {
		if b.TenantID == tenantID && want[b.ProviderID] &&
			domain.Status(b.Status).IsActive() &&
			b.BookingDatetime.Before(to) && b.EndsAt.After(from) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memRepo) GetBooking(_ context.Context, tenantID, id uint) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.TenantID != tenantID {
		return nil, httperr.ErrNotFound("booking_not_found")
	}
	c := cloneBooking(b)
	if s, ok := r.services[c.ServiceID]; ok {
		sc := *s
		c.Service = &sc
	}
	return c, nil
}

func (r *memRepo) GetBookingForUpdate(ctx context.Context, tenantID, id uint) (*models.Booking, error) {
	b, err := r.GetBooking(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.lockedReads = append(r.lockedReads, id)
	r.mu.Unlock()
	return b, nil
}

func (r *memRepo) ListBookings(_ context.Context, f domain.ListFilter) ([]models.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.TenantID != f.TenantID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingDatetime.Before(out[j].BookingDatetime) })
	return out, int64(len(out)), nil
}

func (r *memRepo) CreateBooking(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	b.ID = r.nextID
	r.nextID++
	for i := range b.Addons {
		b.Addons[i].BookingID = b.ID
	}
	r.bookings[b.ID] = cloneBooking(b)
	return nil
}

func (r *memRepo) UpdateBooking(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[b.ID]; !ok {
		return httperr.ErrNotFound("booking_not_found")
	}
	r.bookings[b.ID] = cloneBooking(b)
	return nil
}

func (r *memRepo) SetPayment(_ context.Context, tenantID, id uint, preferenceID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.TenantID != tenantID {
		return httperr.ErrNotFound("booking_not_found")
	}
	b.PaymentPreferenceID = preferenceID
	b.PaymentStatus = status
	return nil
}

func (r *memRepo) LockProvider(_ context.Context, tenantID, providerID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.providers[providerID]
	if !ok || p.TenantID != tenantID {
		return httperr.ErrNotFound("provider_not_found")
	}
	return nil
}

func (r *memRepo) Transaction(_ context.Context, fn func(tx domain.Repository) error) error {
	r.mu.Lock()
	snapshot := make(map[uint]*models.Booking, len(r.bookings))
	for id, b := range r.bookings {
		snapshot[id] = cloneBooking(b)
	}
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.bookings = snapshot
		r.mu.Unlock()
		return err
	}
	return nil
}

var _ domain.Repository = (*memRepo)(nil)

// ======================================================
// Fixtures
// ======================================================

const (
	tenantA = uint(1)
	tenantB = uint(2)
)

// monday is 2026-03-02, a Monday.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func seed() *memRepo {
	r := newMemRepo()

	r.tenants[tenantA] = &models.Tenant{ID: tenantA, Timezone: "UTC", Currency: "EUR"}
	r.tenants[tenantB] = &models.Tenant{ID: tenantB, Timezone: "UTC", Currency: "EUR"}

	r.services[10] = &models.Service{ID: 10, TenantID: tenantA, Name: "Cut", DurationMinutes: 30, Price: decimal.NewFromInt(25), IsActive: true}
	r.services[11] = &models.Service{ID: 11, TenantID: tenantA, Name: "Consult", DurationMinutes: 30, RequiresApproval: true, IsActive: true}
	r.services[20] = &models.Service{ID: 20, TenantID: tenantB, Name: "Other", DurationMinutes: 30, IsActive: true}

	r.providers[100] = &models.Provider{ID: 100, TenantID: tenantA, FirstName: "Ana", IsActive: true}
	r.providers[101] = &models.Provider{ID: 101, TenantID: tenantA, FirstName: "Bea", IsActive: true}
	r.offers[101] = []uint{11}

	r.clients[1000] = &models.Client{ID: 1000, TenantID: tenantA, FirstName: "Carla", IsActive: true}

	r.addons[500] = &models.ServiceAddon{ID: 500, TenantID: tenantA, ServiceID: 10, Name: "Wash", Price: decimal.RequireFromString("7.50"), IsActive: true}
	r.addons[501] = &models.ServiceAddon{ID: 501, TenantID: tenantA, ServiceID: 11, Name: "Other service addon", Price: decimal.NewFromInt(3), IsActive: true}

	// Tenant default Monday 09:00-10:00.
	r.windows = append(r.windows, models.Availability{TenantID: tenantA, DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", IsActive: true})
	return r
}

func addBooking(r *memRepo, providerID uint, start time.Time, minutes int, status domain.Status) *models.Booking {
	b := &models.Booking{
		TenantID:        tenantA,
		ClientID:        1000,
		ServiceID:       10,
		ProviderID:      providerID,
		DurationMinutes: minutes,
		Status:          string(status),
	}
	domain.Schedule(b, start)
	_ = r.CreateBooking(context.Background(), b)
	return b
}

func blackout(day time.Time, providerID *uint) models.Unavailability {
	return models.Unavailability{TenantID: tenantA, ProviderID: providerID, Date: datatypes.Date(day)}
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

func (p *recordingPublisher) Close() {}

var _ events.Publisher = (*recordingPublisher)(nil)

type fakeGateway struct {
	last payments.CheckoutRequest
}

func (g *fakeGateway) CreateCheckout(_ context.Context, req payments.CheckoutRequest) (*payments.Checkout, error) {
	g.last = req
	return &payments.Checkout{PreferenceID: "pref-1", InitPoint: "https://pay.example/pref-1"}, nil
}
