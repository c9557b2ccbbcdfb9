package models

import (
	"fmt"
	"time"

	"taskhive/internal/softdelete"
)

// SubscriptionStatus is the workflow state of a provider subscription.
type SubscriptionStatus string

const (
	// SubscriptionStatusActive means the subscription is billed and usable.
	SubscriptionStatusActive SubscriptionStatus = "active"
	// SubscriptionStatusCancelled means the holder ended the subscription.
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	// SubscriptionStatusSuspended means billing failed or an admin paused it.
	SubscriptionStatusSuspended SubscriptionStatus = "suspended"
	// SubscriptionStatusExpired means the paid period ran out.
	SubscriptionStatusExpired SubscriptionStatus = "expired"
)

var subscriptionTransitions = map[SubscriptionStatus][]SubscriptionStatus{
	SubscriptionStatusActive:    {SubscriptionStatusCancelled, SubscriptionStatusSuspended, SubscriptionStatusExpired},
	SubscriptionStatusSuspended: {SubscriptionStatusActive, SubscriptionStatusCancelled},
}

var subscriptionStatusLabels = map[SubscriptionStatus]string{
	SubscriptionStatusActive:    "Active",
	SubscriptionStatusCancelled: "Cancelled",
	SubscriptionStatusSuspended: "Suspended",
	SubscriptionStatusExpired:   "Expired",
}

// CanTransition reports whether the guard table allows the move.
func (s SubscriptionStatus) CanTransition(to SubscriptionStatus) bool {
	for _, next := range subscriptionTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Label returns the human-readable form of the status.
func (s SubscriptionStatus) Label() string {
	return subscriptionStatusLabels[s]
}

// SubscriptionStatusChoices lists every subscription status with its label.
func SubscriptionStatusChoices() []Choice {
	return []Choice{
		{Value: string(SubscriptionStatusActive), Label: SubscriptionStatusActive.Label()},
		{Value: string(SubscriptionStatusCancelled), Label: SubscriptionStatusCancelled.Label()},
		{Value: string(SubscriptionStatusSuspended), Label: SubscriptionStatusSuspended.Label()},
		{Value: string(SubscriptionStatusExpired), Label: SubscriptionStatusExpired.Label()},
	}
}

// SubscriptionPlan is a purchasable tier for providers. Plans with live
// subscriptions cannot be hard-deleted (protect edge).
type SubscriptionPlan struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:80;not null;uniqueIndex" json:"name"`
	PricePerMo   int64     `gorm:"not null" json:"price_per_mo"` // minor currency units
	MaxProposals int       `gorm:"not null;default:10" json:"max_proposals"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	softdelete.Tombstone

	Subscriptions []UserSubscription `gorm:"foreignKey:PlanID" json:"subscriptions,omitempty"`
}

// UserSubscription binds a user to a plan for a paid period.
type UserSubscription struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	UserID    uint               `gorm:"not null;index" json:"user_id"`
	User      *User              `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PlanID    uint               `gorm:"not null;index" json:"plan_id"`
	Plan      *SubscriptionPlan  `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Status    SubscriptionStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	ExpiresAt time.Time          `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	softdelete.Tombstone
}

// Transition moves the subscription to the target status if the guard table
// allows it. On rejection the subscription is left unchanged.
func (s *UserSubscription) Transition(to SubscriptionStatus) error {
	if !s.Status.CanTransition(to) {
		return NewConflictError(
			fmt.Sprintf("subscription cannot move from %s to %s", s.Status, to), nil)
	}
	s.Status = to
	return nil
}
