package models

import "time"

// Provider is a bookable staff member.
type Provider struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	TenantID uint  `gorm:"index;not null" json:"tenant_id"`
	UserID   *uint `json:"user_id"`

	FirstName string `gorm:"size:100;not null" json:"first_name"`
	LastName  string `gorm:"size:100" json:"last_name"`
	Email     string `gorm:"size:100" json:"email"`
	Phone     string `gorm:"size:20" json:"phone"`
	Color     string `gorm:"size:7;default:'#10B981'" json:"color"`
	AvatarURL string `gorm:"size:255" json:"avatar_url"`
	Bio       string `gorm:"type:text" json:"bio"`

	IsActive     bool `gorm:"default:true" json:"is_active"`
	DisplayOrder int  `gorm:"default:0" json:"display_order"`

	Services []ProviderService `json:"services,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProviderService links a provider to a service it can perform.
type ProviderService struct {
	TenantID   uint `gorm:"index;not null" json:"tenant_id"`
	ProviderID uint `gorm:"primaryKey" json:"provider_id"`
	ServiceID  uint `gorm:"primaryKey" json:"service_id"`

	Service *Service `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}
