package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BruksfildServices01/booking-api/internal/httperr"
	"github.com/BruksfildServices01/booking-api/internal/models"
)

func newMockRepo(t *testing.T) (*BookingGormRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	return NewBookingGormRepository(db), mock
}

func TestListActiveBookingsUsesHalfOpenOverlap(t *testing.T) {
	repo, mock := newMockRepo(t)

	from := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	to := from.Add(30 * time.Minute)

	// A booking ending exactly at from, or starting exactly at to, must
	// not match.
	mock.ExpectQuery(`FROM "bookings" WHERE .*provider_id IN \(\$2,\$3\) AND status IN \(\$4,\$5\) AND booking_datetime < \$6 AND ends_at > \$7`).
		WithArgs(1, 100, 101, "pending", "confirmed", to, from).
		WillReturnRows(sqlmock.NewRows([]string{"id", "provider_id", "status", "booking_datetime", "ends_at"}).
			AddRow(7, 100, "confirmed", from.Add(-15*time.Minute), from.Add(15*time.Minute)))

	got, err := repo.ListActiveBookings(context.Background(), 1, []uint{100, 101}, from, to)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint(7), got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveBookingsWithoutProvidersSkipsQuery(t *testing.T) {
	repo, mock := newMockRepo(t)

	got, err := repo.ListActiveBookings(context.Background(), 1, nil, time.Now(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingMapsExclusionViolationToTimeConflict(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO "bookings"`).
		WillReturnError(&pgconn.PgError{Code: "23P01", ConstraintName: "bookings_no_overlap"})

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	err := repo.CreateBooking(context.Background(), &models.Booking{
		TenantID:        1,
		ClientID:        1000,
		ServiceID:       10,
		ProviderID:      100,
		BookingDatetime: start,
		EndsAt:          start.Add(30 * time.Minute),
		DurationMinutes: 30,
		Status:          "confirmed",
	})

	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "time_conflict"))
	assert.True(t, httperr.IsKind(err, httperr.KindConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetPaymentReportsMissingBooking(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE "bookings" SET .*"payment_preference_id"=.*"payment_status"=`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetPayment(context.Background(), 1, 42, "pref-1", "pending")
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
