package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Business is the tenant profile shown on a storefront: one row per store
// sharing the deployment.
type Business struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	LogoURL     string    `gorm:"column:logo_url" json:"logo_url"`
	BannerURL   string    `gorm:"column:banner_url" json:"banner_url"`
	Address     *string   `json:"address,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Subdomain   *string   `gorm:"uniqueIndex" json:"subdomain,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName pins the table name shared with the hosted backend.
func (Business) TableName() string {
	return "businesses"
}

// BeforeCreate assigns a UUID when the caller did not provide one.
func (b *Business) BeforeCreate(*gorm.DB) error {
	if strings.TrimSpace(b.ID) == "" {
		b.ID = uuid.NewString()
	}
	if b.Subdomain != nil {
		normalized := strings.ToLower(strings.TrimSpace(*b.Subdomain))
		b.Subdomain = &normalized
	}
	return nil
}
