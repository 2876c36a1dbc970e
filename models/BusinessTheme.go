package models

import "time"

// BusinessTheme stores the free-form JSON design-token document of a business.
type BusinessTheme struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	BusinessID string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"business_id"`
	Config     string    `gorm:"type:text;not null" json:"config"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName pins the table name shared with the hosted backend.
func (BusinessTheme) TableName() string {
	return "business_themes"
}
