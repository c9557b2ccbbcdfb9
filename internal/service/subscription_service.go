package service

import (
	"context"
	"time"

	"taskhive/internal/models"
	"taskhive/internal/repository"
)

// SubscriptionService provides plan and subscription business logic.
type SubscriptionService struct {
	subRepo  repository.SubscriptionRepository
	userRepo repository.UserRepository
}

// SubscribeInput is the input for starting a subscription.
type SubscribeInput struct {
	UserID uint
	PlanID uint
	Months int
}

// NewSubscriptionService returns a new SubscriptionService.
func NewSubscriptionService(subRepo repository.SubscriptionRepository, userRepo repository.UserRepository) *SubscriptionService {
	return &SubscriptionService{subRepo: subRepo, userRepo: userRepo}
}

// ListPlans returns the alive storefront plans.
func (s *SubscriptionService) ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	return s.subRepo.ListPlans(ctx)
}

// Subscribe starts an active subscription for a provider. One active
// subscription per user.
func (s *SubscriptionService) Subscribe(ctx context.Context, in SubscribeInput) (*models.UserSubscription, error) {
	if in.Months <= 0 {
		in.Months = 1
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsProvider() {
		return nil, models.NewForbiddenError("Only providers can subscribe")
	}

	existing, err := s.subRepo.GetActiveByUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("an active subscription already exists", nil)
	}

	plan, err := s.subRepo.GetPlan(ctx, in.PlanID)
	if err != nil {
		return nil, err
	}

	sub := &models.UserSubscription{
		UserID:    in.UserID,
		PlanID:    plan.ID,
		Status:    models.SubscriptionStatusActive,
		ExpiresAt: time.Now().UTC().AddDate(0, in.Months, 0),
	}
	if err := s.subRepo.CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}
	trackTransition("subscription", string(models.SubscriptionStatusActive), nil)
	return sub, nil
}

// Current returns the caller's active subscription, or nil on the free tier.
func (s *SubscriptionService) Current(ctx context.Context, userID uint) (*models.UserSubscription, error) {
	return s.subRepo.GetActiveByUser(ctx, userID)
}

// transition applies a guarded status change to the user's own subscription.
func (s *SubscriptionService) transition(ctx context.Context, sub *models.UserSubscription, to models.SubscriptionStatus) (*models.UserSubscription, error) {
	if err := sub.Transition(to); err != nil {
		trackTransition("subscription", string(to), err)
		return nil, err
	}
	trackTransition("subscription", string(to), nil)
	if err := s.subRepo.UpdateSubscription(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Cancel ends the caller's active subscription.
func (s *SubscriptionService) Cancel(ctx context.Context, userID uint) (*models.UserSubscription, error) {
	sub, err := s.subRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, models.NewNotFoundError("Subscription", userID)
	}
	return s.transition(ctx, sub, models.SubscriptionStatusCancelled)
}

// Suspend pauses a subscription, e.g. after a failed charge. Admin surface.
func (s *SubscriptionService) Suspend(ctx context.Context, subscriptionID uint) (*models.UserSubscription, error) {
	sub, err := s.subRepo.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, sub, models.SubscriptionStatusSuspended)
}

// Resume reactivates a suspended subscription. Admin surface.
func (s *SubscriptionService) Resume(ctx context.Context, subscriptionID uint) (*models.UserSubscription, error) {
	sub, err := s.subRepo.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, sub, models.SubscriptionStatusActive)
}

// ExpireSweep moves every overdue active subscription to expired. Invoked
// explicitly from the admin surface.
func (s *SubscriptionService) ExpireSweep(ctx context.Context, now time.Time) (int64, error) {
	return s.subRepo.ExpireDue(ctx, now)
}
