package models

import (
	"time"

	"taskhive/internal/softdelete"
)

// DeviceToken is a push-notification registration for a user's device.
type DeviceToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Token     string    `gorm:"size:255;not null;uniqueIndex" json:"token"`
	Platform  string    `gorm:"size:16;not null" json:"platform"` // ios, android, web
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	softdelete.Tombstone
}
