package models

import (
	"time"

	"taskhive/internal/softdelete"
)

// UserRole distinguishes the three marketplace actors.
type UserRole string

const (
	// RoleClient posts orders and pays for completed work.
	RoleClient UserRole = "client"
	// RoleProvider submits proposals and performs the work.
	RoleProvider UserRole = "provider"
	// RoleAdmin operates the moderation surface.
	RoleAdmin UserRole = "admin"
)

// User represents a marketplace account.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:30;unique;not null" json:"username"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      UserRole  `gorm:"type:varchar(20);not null;default:'client'" json:"role"`
	Bio       string    `gorm:"size:500" json:"bio"`
	Avatar    string    `json:"avatar"`
	Rating    float64   `gorm:"default:0" json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	softdelete.Tombstone

	Orders    []Order    `gorm:"foreignKey:ClientID" json:"orders,omitempty"`
	Proposals []Proposal `gorm:"foreignKey:ProviderID" json:"proposals,omitempty"`
}

// IsAdmin reports whether the account may use the admin surface.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsProvider reports whether the account may submit proposals.
func (u *User) IsProvider() bool {
	return u.Role == RoleProvider || u.Role == RoleAdmin
}
