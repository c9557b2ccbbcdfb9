package models

import (
	"fmt"
	"time"

	"taskhive/internal/softdelete"
)

// OrderStatus is the workflow state of an order.
type OrderStatus string

const (
	// OrderStatusPending means the order is open for proposals.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusAccepted means a proposal has been accepted.
	OrderStatusAccepted OrderStatus = "accepted"
	// OrderStatusInProgress means the provider started the work.
	OrderStatusInProgress OrderStatus = "in_progress"
	// OrderStatusCompleted means the work is done and payable.
	OrderStatusCompleted OrderStatus = "completed"
	// OrderStatusCancelled means the order was withdrawn before completion.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// orderTransitions is the guard table for the order state machine. Every
// transition is a single explicit step; nothing moves an order between
// states in the background.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusAccepted, OrderStatusCancelled},
	OrderStatusAccepted:   {OrderStatusInProgress, OrderStatusCancelled},
	OrderStatusInProgress: {OrderStatusCompleted},
}

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPending:    "Pending",
	OrderStatusAccepted:   "Accepted",
	OrderStatusInProgress: "In progress",
	OrderStatusCompleted:  "Completed",
	OrderStatusCancelled:  "Cancelled",
}

// CanTransition reports whether the guard table allows moving to the target
// status from the current one.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Label returns the human-readable form of the status.
func (s OrderStatus) Label() string {
	return orderStatusLabels[s]
}

// OrderStatusChoices lists every order status with its label.
func OrderStatusChoices() []Choice {
	return []Choice{
		{Value: string(OrderStatusPending), Label: OrderStatusPending.Label()},
		{Value: string(OrderStatusAccepted), Label: OrderStatusAccepted.Label()},
		{Value: string(OrderStatusInProgress), Label: OrderStatusInProgress.Label()},
		{Value: string(OrderStatusCompleted), Label: OrderStatusCompleted.Label()},
		{Value: string(OrderStatusCancelled), Label: OrderStatusCancelled.Label()},
	}
}

// Order is a client's request for work. It owns proposals, payments,
// reviews and chat rooms: hard-deleting an order removes them with it.
type Order struct {
	ID                 uint        `gorm:"primaryKey" json:"id"`
	ClientID           uint        `gorm:"not null;index" json:"client_id"`
	Client             *User       `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	ServiceID          uint        `gorm:"not null;index" json:"service_id"`
	Service            *Service    `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Title              string      `gorm:"size:140;not null" json:"title"`
	Description        string      `gorm:"type:text" json:"description"`
	Budget             int64       `gorm:"not null" json:"budget"` // minor currency units
	Status             OrderStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	AcceptedProposalID *uint       `json:"accepted_proposal_id,omitempty"`
	CompletedAt        *time.Time  `json:"completed_at,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
	softdelete.Tombstone

	Proposals []Proposal `gorm:"foreignKey:OrderID" json:"proposals,omitempty"`
	Payments  []Payment  `gorm:"foreignKey:OrderID" json:"payments,omitempty"`
	Reviews   []Review   `gorm:"foreignKey:OrderID" json:"reviews,omitempty"`
	ChatRooms []ChatRoom `gorm:"foreignKey:OrderID" json:"chat_rooms,omitempty"`
}

// Transition moves the order to the target status if the guard table allows
// it. On rejection the order is left unchanged.
func (o *Order) Transition(to OrderStatus) error {
	if !o.Status.CanTransition(to) {
		return NewConflictError(
			fmt.Sprintf("order cannot move from %s to %s", o.Status, to), nil)
	}
	o.Status = to
	if to == OrderStatusCompleted {
		now := time.Now().UTC()
		o.CompletedAt = &now
	}
	return nil
}
