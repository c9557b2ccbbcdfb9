package models

import (
	"time"

	"taskhive/internal/softdelete"
)

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	// PaymentStatusPending means the charge was initiated but not settled.
	PaymentStatusPending PaymentStatus = "pending"
	// PaymentStatusSucceeded means the charge settled.
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	// PaymentStatusFailed means the charge was rejected by the processor.
	PaymentStatusFailed PaymentStatus = "failed"
	// PaymentStatusRefunded means a settled charge was returned.
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Payment records a charge against a completed or in-progress order.
// ProviderRef is the external processor's reference.
type Payment struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	OrderID     uint          `gorm:"not null;index" json:"order_id"`
	Order       *Order        `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	PayerID     uint          `gorm:"not null;index" json:"payer_id"`
	Payer       *User         `gorm:"foreignKey:PayerID" json:"payer,omitempty"`
	Amount      int64         `gorm:"not null" json:"amount"` // minor currency units
	Currency    string        `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Status      PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ProviderRef string        `gorm:"size:64;uniqueIndex" json:"provider_ref"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	softdelete.Tombstone
}
