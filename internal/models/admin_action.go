package models

import (
	"time"

	"gorm.io/datatypes"
)

// AdminAction is an append-only audit row for moderation operations
// (restore, hard delete, suspension). It never participates in soft delete:
// audit history outlives the records it describes.
type AdminAction struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	AdminID    uint           `gorm:"not null;index" json:"admin_id"`
	Admin      *User          `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
	Action     string         `gorm:"size:40;not null;index" json:"action"`
	TargetType string         `gorm:"size:40;not null" json:"target_type"`
	TargetID   uint           `gorm:"not null" json:"target_id"`
	Details    datatypes.JSON `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
