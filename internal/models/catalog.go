package models

import (
	"time"

	"taskhive/internal/softdelete"
)

// ServiceCategory groups services in the public catalog. Categories with
// services cannot be hard-deleted (protect edge).
type ServiceCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:80;not null;uniqueIndex" json:"name"`
	Slug      string    `gorm:"size:80;not null;uniqueIndex" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	softdelete.Tombstone

	Services []Service `gorm:"foreignKey:CategoryID" json:"services,omitempty"`
}

// TableName specifies the table name for GORM.
func (ServiceCategory) TableName() string {
	return "service_categories"
}

// Service is a catalog entry a client can order against.
type Service struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	CategoryID  uint             `gorm:"not null;index" json:"category_id"`
	Category    *ServiceCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Name        string           `gorm:"size:120;not null" json:"name"`
	Description string           `gorm:"type:text" json:"description"`
	BasePrice   int64            `gorm:"not null" json:"base_price"` // minor currency units
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	softdelete.Tombstone
}
