package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Service struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	TenantID uint `gorm:"index;not null" json:"tenant_id"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	Color       string `gorm:"size:7;default:'#3B82F6'" json:"color"`

	CategoryID *uint            `gorm:"index" json:"category_id"`
	Category   *ServiceCategory `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`

	DurationMinutes     int             `gorm:"not null" json:"duration_minutes"`
	BufferBeforeMinutes int             `gorm:"default:0" json:"buffer_before_minutes"`
	BufferAfterMinutes  int             `gorm:"default:0" json:"buffer_after_minutes"`
	Price               decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"price"`

	RequiresApproval bool `gorm:"default:false" json:"requires_approval"`
	IsActive         bool `gorm:"default:true" json:"is_active"`
	DisplayOrder     int  `gorm:"default:0" json:"display_order"`

	Addons []ServiceAddon `gorm:"constraint:OnDelete:CASCADE;" json:"addons,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ServiceAddon is an optional extra sold together with a service.
type ServiceAddon struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	TenantID  uint `gorm:"index;not null" json:"tenant_id"`
	ServiceID uint `gorm:"index;not null" json:"service_id"`

	Name     string          `gorm:"size:100;not null" json:"name"`
	Price    decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"price"`
	IsActive bool            `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ServiceCategory groups services on the booking page.
type ServiceCategory struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	TenantID uint `gorm:"index;not null" json:"tenant_id"`

	Name         string `gorm:"size:100;not null" json:"name"`
	Description  string `gorm:"size:255" json:"description"`
	DisplayOrder int    `gorm:"default:0" json:"display_order"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
