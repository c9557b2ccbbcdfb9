package service

import (
	"context"
	"time"

	"taskhive/internal/models"
	"taskhive/internal/repository"
)

// FreeTierMaxProposals is the pending-proposal quota for providers without
// an active subscription.
const FreeTierMaxProposals = 5

// ProposalService provides proposal workflow business logic.
type ProposalService struct {
	proposalRepo repository.ProposalRepository
	orderRepo    repository.OrderRepository
	subRepo      repository.SubscriptionRepository
}

// SubmitProposalInput is the input for bidding on an order.
type SubmitProposalInput struct {
	ProviderID uint
	OrderID    uint
	Message    string
	Price      int64
	ExpiresAt  *time.Time
}

// NewProposalService returns a new ProposalService.
func NewProposalService(
	proposalRepo repository.ProposalRepository,
	orderRepo repository.OrderRepository,
	subRepo repository.SubscriptionRepository,
) *ProposalService {
	return &ProposalService{
		proposalRepo: proposalRepo,
		orderRepo:    orderRepo,
		subRepo:      subRepo,
	}
}

// maxPendingFor resolves the provider's proposal quota from their active
// subscription plan, falling back to the free tier.
func (s *ProposalService) maxPendingFor(ctx context.Context, providerID uint) (int, error) {
	sub, err := s.subRepo.GetActiveByUser(ctx, providerID)
	if err != nil {
		return 0, err
	}
	if sub == nil || sub.Plan == nil {
		return FreeTierMaxProposals, nil
	}
	return sub.Plan.MaxProposals, nil
}

// SubmitProposal bids on a pending order. Providers cannot bid on their own
// orders, and pending bids are capped by the subscription plan.
func (s *ProposalService) SubmitProposal(ctx context.Context, in SubmitProposalInput) (*models.Proposal, error) {
	if in.Price <= 0 {
		return nil, models.NewValidationError("Price must be positive")
	}
	if in.ExpiresAt != nil && in.ExpiresAt.Before(time.Now().UTC()) {
		return nil, models.NewValidationError("Expiry must be in the future")
	}

	order, err := s.orderRepo.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, models.NewConflictError("order is no longer open for proposals", nil)
	}
	if order.ClientID == in.ProviderID {
		return nil, models.NewValidationError("Cannot bid on your own order")
	}

	quota, err := s.maxPendingFor(ctx, in.ProviderID)
	if err != nil {
		return nil, err
	}
	pending, err := s.proposalRepo.CountPendingByProvider(ctx, in.ProviderID)
	if err != nil {
		return nil, err
	}
	if pending >= int64(quota) {
		return nil, models.NewConflictError("pending proposal quota reached for current plan", nil)
	}

	proposal := &models.Proposal{
		OrderID:    in.OrderID,
		ProviderID: in.ProviderID,
		Message:    in.Message,
		Price:      in.Price,
		Status:     models.ProposalStatusPending,
		ExpiresAt:  in.ExpiresAt,
	}
	if err := s.proposalRepo.Create(ctx, proposal); err != nil {
		return nil, err
	}
	return proposal, nil
}

// DeclineProposal lets the order's client reject a single pending proposal.
func (s *ProposalService) DeclineProposal(ctx context.Context, clientID, proposalID uint) (*models.Proposal, error) {
	proposal, err := s.proposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetByID(ctx, proposal.OrderID)
	if err != nil {
		return nil, err
	}
	if order.ClientID != clientID {
		return nil, models.NewForbiddenError("Not your order")
	}
	if err := proposal.Decline(); err != nil {
		trackTransition("proposal", string(models.ProposalStatusDeclined), err)
		return nil, err
	}
	trackTransition("proposal", string(models.ProposalStatusDeclined), nil)
	if err := s.proposalRepo.Update(ctx, proposal); err != nil {
		return nil, err
	}
	return proposal, nil
}

// WithdrawProposal tombstones the provider's own proposal. Accepted
// proposals cannot be withdrawn.
func (s *ProposalService) WithdrawProposal(ctx context.Context, providerID, proposalID uint) error {
	proposal, err := s.proposalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return err
	}
	if proposal.ProviderID != providerID {
		return models.NewForbiddenError("Not your proposal")
	}
	if proposal.Status == models.ProposalStatusAccepted {
		return models.NewConflictError("accepted proposals cannot be withdrawn", nil)
	}
	return s.proposalRepo.Delete(ctx, proposal)
}

// ListByOrder returns the alive proposals on an order for its client.
func (s *ProposalService) ListByOrder(ctx context.Context, clientID, orderID uint) ([]models.Proposal, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ClientID != clientID {
		return nil, models.NewForbiddenError("Not your order")
	}
	return s.proposalRepo.ListByOrder(ctx, orderID)
}

// ListMine returns the provider's own proposals.
func (s *ProposalService) ListMine(ctx context.Context, providerID uint, limit, offset int) ([]models.Proposal, error) {
	return s.proposalRepo.ListByProvider(ctx, providerID, limit, offset)
}

// ExpireSweep persists the expired status for every overdue pending
// proposal. Invoked explicitly from the admin surface.
func (s *ProposalService) ExpireSweep(ctx context.Context, now time.Time) (int64, error) {
	return s.proposalRepo.ExpirePending(ctx, now)
}
