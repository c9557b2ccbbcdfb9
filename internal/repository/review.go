package repository

import (
	"context"
	"errors"

	"taskhive/internal/models"
	"taskhive/internal/observability"
	"taskhive/internal/softdelete"

	"gorm.io/gorm"
)

// ReviewRepository defines persistence operations for reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id uint) (*models.Review, error)
	ListByOrder(ctx context.Context, orderID uint) ([]models.Review, error)
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]models.Review, error)
	Delete(ctx context.Context, review *models.Review) error
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository returns a new ReviewRepository implementation.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("order already reviewed by this author", err)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id uint) (*models.Review, error) {
	var review models.Review
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).First(&review, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Review", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &review, nil
}

func (r *reviewRepository) ListByOrder(ctx context.Context, orderID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return reviews, nil
}

func (r *reviewRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]models.Review, error) {
	var reviews []models.Review
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(clampLimit(limit)).Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return reviews, nil
}

func (r *reviewRepository) Delete(ctx context.Context, review *models.Review) error {
	if err := softdelete.Delete(ctx, r.db, review); err != nil {
		observability.LifecycleOps.WithLabelValues("review", "delete", "error").Inc()
		return models.NewInternalError(err)
	}
	observability.LifecycleOps.WithLabelValues("review", "delete", "ok").Inc()
	return nil
}
