package service

import (
	"context"
	"testing"

	"taskhive/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewService_SubmitReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, _, client, provider := env.createAcceptedOrder(t)

	t.Run("Only completed orders", func(t *testing.T) {
		_, err := env.reviewSvc.SubmitReview(ctx, SubmitReviewInput{
			AuthorID: client.ID, OrderID: order.ID, Rating: 5,
		})
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "CONFLICT", appErr.Code)
	})

	env.completeOrder(t, order, provider.ID)

	t.Run("Rating bounds", func(t *testing.T) {
		for _, rating := range []int{0, 6, -1} {
			_, err := env.reviewSvc.SubmitReview(ctx, SubmitReviewInput{
				AuthorID: client.ID, OrderID: order.ID, Rating: rating,
			})
			assert.Error(t, err, "rating %d must be rejected", rating)
		}
	})

	t.Run("Only the client reviews", func(t *testing.T) {
		_, err := env.reviewSvc.SubmitReview(ctx, SubmitReviewInput{
			AuthorID: provider.ID, OrderID: order.ID, Rating: 5,
		})
		assert.Error(t, err)
	})

	t.Run("Happy path then duplicate", func(t *testing.T) {
		review, err := env.reviewSvc.SubmitReview(ctx, SubmitReviewInput{
			AuthorID: client.ID, OrderID: order.ID, Rating: 4, Comment: "solid work",
		})
		require.NoError(t, err)
		assert.Equal(t, 4, review.Rating)

		_, err = env.reviewSvc.SubmitReview(ctx, SubmitReviewInput{
			AuthorID: client.ID, OrderID: order.ID, Rating: 5,
		})
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "CONFLICT", appErr.Code)
	})
}

func TestReviewService_DeleteReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, _, client, provider := env.createAcceptedOrder(t)
	env.completeOrder(t, order, provider.ID)

	review, err := env.reviewSvc.SubmitReview(ctx, SubmitReviewInput{
		AuthorID: client.ID, OrderID: order.ID, Rating: 3,
	})
	require.NoError(t, err)

	// The provider is neither author nor admin.
	err = env.reviewSvc.DeleteReview(ctx, provider.ID, review.ID)
	assert.Error(t, err)

	// An admin may remove any review.
	admin := env.createUser(t, "admin", models.RoleAdmin)
	require.NoError(t, env.reviewSvc.DeleteReview(ctx, admin.ID, review.ID))

	reviews, err := env.reviewSvc.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}
