package service

import (
	"context"

	"taskhive/internal/models"
	"taskhive/internal/repository"
)

// ReviewService provides review business logic.
type ReviewService struct {
	reviewRepo repository.ReviewRepository
	orderRepo  repository.OrderRepository
	userRepo   repository.UserRepository
}

// SubmitReviewInput is the input for reviewing a completed order.
type SubmitReviewInput struct {
	AuthorID uint
	OrderID  uint
	Rating   int
	Comment  string
}

// NewReviewService returns a new ReviewService.
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		orderRepo:  orderRepo,
		userRepo:   userRepo,
	}
}

// SubmitReview records the client's rating of a completed order. The
// composite unique index enforces one review per order per author.
func (s *ReviewService) SubmitReview(ctx context.Context, in SubmitReviewInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, models.NewValidationError("Rating must be between 1 and 5")
	}

	order, err := s.orderRepo.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if order.ClientID != in.AuthorID {
		return nil, models.NewForbiddenError("Only the order's client may review it")
	}
	if order.Status != models.OrderStatusCompleted {
		return nil, models.NewConflictError("only completed orders can be reviewed", nil)
	}

	review := &models.Review{
		OrderID:  in.OrderID,
		AuthorID: in.AuthorID,
		Rating:   in.Rating,
		Comment:  in.Comment,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteReview tombstones a review. Authors remove their own; admins remove
// anyone's.
func (s *ReviewService) DeleteReview(ctx context.Context, userID, reviewID uint) error {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.AuthorID != userID {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if !user.IsAdmin() {
			return models.NewForbiddenError("Not your review")
		}
	}
	return s.reviewRepo.Delete(ctx, review)
}

// ListByOrder returns the alive reviews on an order.
func (s *ReviewService) ListByOrder(ctx context.Context, orderID uint) ([]models.Review, error) {
	return s.reviewRepo.ListByOrder(ctx, orderID)
}
