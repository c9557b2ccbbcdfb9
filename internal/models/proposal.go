package models

import (
	"fmt"
	"time"

	"taskhive/internal/softdelete"
)

// ProposalStatus is the workflow state of a provider's proposal.
type ProposalStatus string

const (
	// ProposalStatusPending means the proposal awaits the client's decision.
	ProposalStatusPending ProposalStatus = "pending"
	// ProposalStatusAccepted means the client chose this proposal.
	ProposalStatusAccepted ProposalStatus = "accepted"
	// ProposalStatusDeclined means the client rejected this proposal.
	ProposalStatusDeclined ProposalStatus = "declined"
	// ProposalStatusExpired means the proposal's expiry passed before a decision.
	ProposalStatusExpired ProposalStatus = "expired"
)

var proposalStatusLabels = map[ProposalStatus]string{
	ProposalStatusPending:  "Pending",
	ProposalStatusAccepted: "Accepted",
	ProposalStatusDeclined: "Declined",
	ProposalStatusExpired:  "Expired",
}

// Label returns the human-readable form of the status.
func (s ProposalStatus) Label() string {
	return proposalStatusLabels[s]
}

// ProposalStatusChoices lists every proposal status with its label.
func ProposalStatusChoices() []Choice {
	return []Choice{
		{Value: string(ProposalStatusPending), Label: ProposalStatusPending.Label()},
		{Value: string(ProposalStatusAccepted), Label: ProposalStatusAccepted.Label()},
		{Value: string(ProposalStatusDeclined), Label: ProposalStatusDeclined.Label()},
		{Value: string(ProposalStatusExpired), Label: ProposalStatusExpired.Label()},
	}
}

// Proposal is a provider's offer against a pending order.
type Proposal struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	OrderID    uint           `gorm:"not null;index" json:"order_id"`
	Order      *Order         `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	ProviderID uint           `gorm:"not null;index" json:"provider_id"`
	Provider   *User          `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	Message    string         `gorm:"type:text" json:"message"`
	Price      int64          `gorm:"not null" json:"price"` // minor currency units
	Status     ProposalStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ExpiresAt  *time.Time     `json:"expires_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	softdelete.Tombstone
}

// IsExpired reports whether the proposal's expiry has passed. Expiry is a
// derived state: a stored status of "pending" with a past ExpiresAt already
// counts as expired, whether or not Expire has been persisted yet.
func (p *Proposal) IsExpired(now time.Time) bool {
	if p.Status == ProposalStatusExpired {
		return true
	}
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}

// Accept moves the proposal to accepted. Only a pending, unexpired proposal
// can be accepted; anything else is rejected without mutating state.
func (p *Proposal) Accept(now time.Time) error {
	if p.Status != ProposalStatusPending {
		return NewConflictError(
			fmt.Sprintf("proposal cannot be accepted from %s", p.Status), nil)
	}
	if p.IsExpired(now) {
		return NewConflictError("proposal has expired", nil)
	}
	p.Status = ProposalStatusAccepted
	return nil
}

// Decline moves the proposal to declined. Only pending proposals decline.
func (p *Proposal) Decline() error {
	if p.Status != ProposalStatusPending {
		return NewConflictError(
			fmt.Sprintf("proposal cannot be declined from %s", p.Status), nil)
	}
	p.Status = ProposalStatusDeclined
	return nil
}

// Expire persists the derived expired state. It only applies to pending
// proposals whose expiry actually passed.
func (p *Proposal) Expire(now time.Time) error {
	if p.Status != ProposalStatusPending {
		return NewConflictError(
			fmt.Sprintf("proposal cannot expire from %s", p.Status), nil)
	}
	if !p.IsExpired(now) {
		return NewConflictError("proposal has not expired yet", nil)
	}
	p.Status = ProposalStatusExpired
	return nil
}
