package models

import "time"

// Tenant is the isolation boundary: every other row carries its id.
type Tenant struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Slug         string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	BusinessName string `gorm:"size:150;not null" json:"business_name"`
	BusinessType string `gorm:"size:20;not null;default:'appointments'" json:"business_type"`
	Email        string `gorm:"size:100" json:"email"`
	Phone        string `gorm:"size:20" json:"phone"`

	Timezone          string `gorm:"size:64;not null;default:'Europe/Rome'" json:"timezone"`
	Currency          string `gorm:"size:3;not null;default:'EUR'" json:"currency"`
	MinAdvanceMinutes int    `gorm:"default:0" json:"min_advance_minutes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
