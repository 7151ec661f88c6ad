package db

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BruksfildServices01/booking-api/internal/config"
	"github.com/BruksfildServices01/booking-api/internal/models"
)

func NewDB(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.IsProduction() {
		logLevel = logger.Error
	}

	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
		Logger:      logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Client{},
		&models.ServiceCategory{},
		&models.Service{},
		&models.ServiceAddon{},
		&models.Provider{},
		&models.ProviderService{},
		&models.Availability{},
		&models.Unavailability{},
		&models.Booking{},
		&models.BookingAddon{},
		&models.AuditLog{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	for _, stmt := range constraints {
		if err := db.Exec(stmt).Error; err != nil {
			return nil, fmt.Errorf("apply constraint: %w", err)
		}
	}

	log.Info().Msg("database ready")
	return db, nil
}

// Close releases the pool owned by main.
func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn().Err(err).Msg("close database")
	}
}

// constraints the ORM cannot express. The exclusion constraint is the last
// line of defence against overlapping active bookings of one provider.
var constraints = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_no_overlap') THEN
			ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
			EXCLUDE USING gist (
				tenant_id WITH =,
				provider_id WITH =,
				tstzrange(booking_datetime, ends_at, '[)') WITH &&
			) WHERE (status IN ('pending', 'confirmed'));
		END IF;
	END $$`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'availabilities_window_order') THEN
			ALTER TABLE availabilities ADD CONSTRAINT availabilities_window_order
			CHECK (start_time < end_time);
		END IF;
	END $$`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_unavailability_day
		ON unavailabilities (tenant_id, COALESCE(provider_id, 0), date)`,
}
