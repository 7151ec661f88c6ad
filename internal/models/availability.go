package models

import (
	"time"

	"gorm.io/datatypes"
)

// Availability is a recurring weekly window. ProviderID nil means the
// tenant-wide default used when a provider has no window of its own that day.
type Availability struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	TenantID   uint  `gorm:"index:idx_avail_lookup;not null" json:"tenant_id"`
	ProviderID *uint `gorm:"index:idx_avail_lookup" json:"provider_id"`

	DayOfWeek int    `gorm:"index:idx_avail_lookup;not null" json:"day_of_week"`
	StartTime string `gorm:"size:5;not null" json:"start_time"`
	EndTime   string `gorm:"size:5;not null" json:"end_time"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Unavailability blacks out a whole day, for one provider or (ProviderID nil)
// for the whole tenant.
type Unavailability struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	TenantID   uint           `gorm:"index:idx_unavail_lookup;not null" json:"tenant_id"`
	ProviderID *uint          `gorm:"index:idx_unavail_lookup" json:"provider_id"`
	Date       datatypes.Date `gorm:"index:idx_unavail_lookup;not null" json:"date"`
	Reason     string         `gorm:"size:255" json:"reason"`

	CreatedAt time.Time `json:"created_at"`
}
