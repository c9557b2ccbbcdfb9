package repository

import (
	"context"
	"errors"
	"time"

	"taskhive/internal/models"
	"taskhive/internal/observability"
	"taskhive/internal/softdelete"

	"gorm.io/gorm"
)

// SubscriptionRepository defines persistence operations for plans and
// provider subscriptions.
type SubscriptionRepository interface {
	ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error)
	GetPlan(ctx context.Context, id uint) (*models.SubscriptionPlan, error)
	CreatePlan(ctx context.Context, plan *models.SubscriptionPlan) error
	DeletePlan(ctx context.Context, plan *models.SubscriptionPlan) error
	CreateSubscription(ctx context.Context, sub *models.UserSubscription) error
	GetSubscription(ctx context.Context, id uint) (*models.UserSubscription, error)
	GetActiveByUser(ctx context.Context, userID uint) (*models.UserSubscription, error)
	UpdateSubscription(ctx context.Context, sub *models.UserSubscription) error
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository returns a new SubscriptionRepository implementation.
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).
		Order("price_per_mo").Find(&plans).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return plans, nil
}

func (r *subscriptionRepository) GetPlan(ctx context.Context, id uint) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).First(&plan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("SubscriptionPlan", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &plan, nil
}

func (r *subscriptionRepository) CreatePlan(ctx context.Context, plan *models.SubscriptionPlan) error {
	if err := r.db.WithContext(ctx).Create(plan).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("Plan already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// DeletePlan tombstones the plan so it disappears from the storefront.
// Existing subscriptions keep it alive against hard deletion (protect edge).
func (r *subscriptionRepository) DeletePlan(ctx context.Context, plan *models.SubscriptionPlan) error {
	if err := softdelete.Delete(ctx, r.db, plan); err != nil {
		observability.LifecycleOps.WithLabelValues("plan", "delete", "error").Inc()
		return models.NewInternalError(err)
	}
	observability.LifecycleOps.WithLabelValues("plan", "delete", "ok").Inc()
	return nil
}

func (r *subscriptionRepository) CreateSubscription(ctx context.Context, sub *models.UserSubscription) error {
	if err := r.db.WithContext(ctx).Create(sub).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *subscriptionRepository) GetSubscription(ctx context.Context, id uint) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).
		Preload("Plan").First(&sub, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Subscription", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &sub, nil
}

// GetActiveByUser returns the user's current active subscription, or
// nil, nil when the user is on the free tier.
func (r *subscriptionRepository) GetActiveByUser(ctx context.Context, userID uint) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).
		Preload("Plan").
		Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		Order("expires_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &sub, nil
}

func (r *subscriptionRepository) UpdateSubscription(ctx context.Context, sub *models.UserSubscription) error {
	if err := r.db.WithContext(ctx).Save(sub).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ExpireDue moves every active subscription whose paid period ran out to
// expired. Invoked from the admin sweep endpoint.
func (r *subscriptionRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.UserSubscription{}).
		Scopes(softdelete.Alive).
		Where("status = ? AND expires_at < ?", models.SubscriptionStatusActive, now).
		Update("status", models.SubscriptionStatusExpired)
	if res.Error != nil {
		observability.StatusTransitions.WithLabelValues("subscription", string(models.SubscriptionStatusExpired), "error").Inc()
		return 0, models.NewInternalError(res.Error)
	}
	observability.StatusTransitions.WithLabelValues("subscription", string(models.SubscriptionStatusExpired), "ok").Add(float64(res.RowsAffected))
	return res.RowsAffected, nil
}
