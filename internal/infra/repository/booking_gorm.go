package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/booking-api/internal/domain/booking"
	"github.com/BruksfildServices01/booking-api/internal/httperr"
	"github.com/BruksfildServices01/booking-api/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// notFound maps gorm's sentinel to a tenant-scoped business error so a row of
// another tenant is indistinguishable from a missing one.
func notFound(err error, code string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.ErrNotFound(code)
	}
	return err
}

// --------------------------------------------------
// Tenant
// --------------------------------------------------

func (r *BookingGormRepository) GetTenant(
	ctx context.Context,
	tenantID uint,
) (*models.Tenant, error) {

	var tenant models.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, tenantID).Error; err != nil {
		return nil, notFound(err, "tenant_not_found")
	}
	return &tenant, nil
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *BookingGormRepository) GetService(
	ctx context.Context,
	tenantID uint,
	serviceID uint,
) (*models.Service, error) {

	var svc models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ? AND is_active = true", serviceID, tenantID).
		First(&svc).Error; err != nil {
		return nil, notFound(err, "service_not_found")
	}
	return &svc, nil
}

func (r *BookingGormRepository) GetProvider(
	ctx context.Context,
	tenantID uint,
	providerID uint,
) (*models.Provider, error) {

	var p models.Provider
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ? AND is_active = true", providerID, tenantID).
		First(&p).Error; err != nil {
		return nil, notFound(err, "provider_not_found")
	}
	return &p, nil
}

func (r *BookingGormRepository) ProviderOffersService(
	ctx context.Context,
	tenantID uint,
	providerID uint,
	serviceID uint,
) (bool, error) {

	var total, matching int64

	base := r.db.WithContext(ctx).
		Model(&models.ProviderService{}).
		Where("tenant_id = ? AND provider_id = ?", tenantID, providerID)

	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return false, err
	}
	if total == 0 {
		return true, nil
	}

	if err := base.Session(&gorm.Session{}).
		Where("service_id = ?", serviceID).
		Count(&matching).Error; err != nil {
		return false, err
	}
	return matching > 0, nil
}

func (r *BookingGormRepository) ListEligibleProviders(
	ctx context.Context,
	tenantID uint,
	serviceID uint,
) ([]models.Provider, error) {

	var providers []models.Provider
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = true", tenantID).
		Where(`
			NOT EXISTS (SELECT 1 FROM provider_services ps WHERE ps.provider_id = providers.id)
			OR EXISTS (SELECT 1 FROM provider_services ps WHERE ps.provider_id = providers.id AND ps.service_id = ?)
		`, serviceID).
		Order("display_order ASC, id ASC").
		Find(&providers).Error
	if err != nil {
		return nil, err
	}
	return providers, nil
}

func (r *BookingGormRepository) GetClient(
	ctx context.Context,
	tenantID uint,
	clientID uint,
) (*models.Client, error) {

	var c models.Client
	if err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ? AND is_active = true", clientID, tenantID).
		First(&c).Error; err != nil {
		return nil, notFound(err, "client_not_found")
	}
	return &c, nil
}

func (r *BookingGormRepository) ListAddons(
	ctx context.Context,
	tenantID uint,
	serviceID uint,
	addonIDs []uint,
) ([]models.ServiceAddon, error) {

	if len(addonIDs) == 0 {
		return []models.ServiceAddon{}, nil
	}

	var addons []models.ServiceAddon
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND service_id = ? AND is_active = true AND id IN ?", tenantID, serviceID, addonIDs).
		Order("id ASC").
		Find(&addons).Error; err != nil {
		return nil, err
	}
	return addons, nil
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *BookingGormRepository) ListAvailability(
	ctx context.Context,
	tenantID uint,
	providerID *uint,
	dayOfWeek int,
) ([]models.Availability, error) {

	q := r.db.WithContext(ctx).
		Where("tenant_id = ? AND day_of_week = ? AND is_active = true", tenantID, dayOfWeek)

	if providerID == nil {
		q = q.Where("provider_id IS NULL")
	} else {
		q = q.Where("provider_id = ?", *providerID)
	}

	var rows []models.Availability
	if err := q.Order("start_time ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingGormRepository) ListBlackedOutProviders(
	ctx context.Context,
	tenantID uint,
	date string,
	providerIDs []uint,
) (bool, map[uint]bool, error) {

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false, nil, httperr.ErrBusiness("invalid_date")
	}

	var rows []models.Unavailability
	q := r.db.WithContext(ctx).
		Where("tenant_id = ? AND date = ?", tenantID, datatypes.Date(day))

	if len(providerIDs) > 0 {
		q = q.Where("provider_id IS NULL OR provider_id IN ?", providerIDs)
	} else {
		q = q.Where("provider_id IS NULL")
	}

	if err := q.Find(&rows).Error; err != nil {
		return false, nil, err
	}

	blocked := make(map[uint]bool)
	tenantWide := false
	for _, u := range rows {
		if u.ProviderID == nil {
			tenantWide = true
			continue
		}
		blocked[*u.ProviderID] = true
	}
	return tenantWide, blocked, nil
}

// --------------------------------------------------
// Booking
// --------------------------------------------------

func (r *BookingGormRepository) ListActiveBookings(
	ctx context.Context,
	tenantID uint,
	providerIDs []uint,
	from time.Time,
	to time.Time,
) ([]models.Booking, error) {

	if len(providerIDs) == 0 {
		return []models.Booking{}, nil
	}

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Select("id", "provider_id", "status", "booking_datetime", "ends_at").
		Where(
			"tenant_id = ? AND provider_id IN ? AND status IN ? AND booking_datetime < ? AND ends_at > ?",
			tenantID, providerIDs, domain.ActiveStatuses, to, from,
		).
		Order("booking_datetime ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingGormRepository) GetBooking(
	ctx context.Context,
	tenantID uint,
	bookingID uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		Preload("Provider").
		Preload("Addons").
		Where("id = ? AND tenant_id = ?", bookingID, tenantID).
		First(&b).Error; err != nil {
		return nil, notFound(err, "booking_not_found")
	}
	return &b, nil
}

func (r *BookingGormRepository) GetBookingForUpdate(
	ctx context.Context,
	tenantID uint,
	bookingID uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Service").
		Preload("Addons").
		Where("id = ? AND tenant_id = ?", bookingID, tenantID).
		First(&b).Error; err != nil {
		return nil, notFound(err, "booking_not_found")
	}
	return &b, nil
}

func (r *BookingGormRepository) ListBookings(
	ctx context.Context,
	f domain.ListFilter,
) ([]models.Booking, int64, error) {

	q := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("tenant_id = ?", f.TenantID)

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ProviderID != nil {
		q = q.Where("provider_id = ?", *f.ProviderID)
	}
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if f.From != nil {
		q = q.Where("booking_datetime >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("booking_datetime < ?", *f.To)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var bookings []models.Booking
	if err := q.
		Preload("Client").
		Preload("Service").
		Preload("Provider").
		Order("booking_datetime ASC, id ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&bookings).Error; err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *BookingGormRepository) CreateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	err := r.db.WithContext(ctx).Create(b).Error
	if httperr.IsExclusionConflict(err) {
		return httperr.ErrConflict("time_conflict")
	}
	return err
}

func (r *BookingGormRepository) UpdateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Save(b).Error
	if httperr.IsExclusionConflict(err) {
		return httperr.ErrConflict("time_conflict")
	}
	return err
}

func (r *BookingGormRepository) SetPayment(
	ctx context.Context,
	tenantID uint,
	bookingID uint,
	preferenceID string,
	status string,
) error {
	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND tenant_id = ?", bookingID, tenantID).
		Updates(map[string]any{
			"payment_preference_id": preferenceID,
			"payment_status":        status,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return httperr.ErrNotFound("booking_not_found")
	}
	return nil
}

// --------------------------------------------------
// Concurrency
// --------------------------------------------------

func (r *BookingGormRepository) LockProvider(
	ctx context.Context,
	tenantID uint,
	providerID uint,
) error {

	var p models.Provider
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ? AND tenant_id = ?", providerID, tenantID).
		First(&p).Error; err != nil {
		return notFound(err, "provider_not_found")
	}
	return nil
}

func (r *BookingGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&BookingGormRepository{db: tx})
	})
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
