package service

import (
	"context"
	"testing"
	"time"

	"taskhive/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) createPlan(t *testing.T) *models.SubscriptionPlan {
	t.Helper()
	plan := &models.SubscriptionPlan{Name: "Pro " + t.Name(), PricePerMo: 2900, MaxProposals: 50}
	require.NoError(t, e.subscriptions.CreatePlan(context.Background(), plan))
	return plan
}

func TestSubscriptionService_Subscribe(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	plan := env.createPlan(t)

	t.Run("Clients cannot subscribe", func(t *testing.T) {
		client := env.createUser(t, "client", models.RoleClient)
		_, err := env.subscriptionSvc.Subscribe(ctx, SubscribeInput{UserID: client.ID, PlanID: plan.ID})
		assert.Error(t, err)
	})

	t.Run("Provider subscribes once", func(t *testing.T) {
		provider := env.createUser(t, "provider", models.RoleProvider)

		sub, err := env.subscriptionSvc.Subscribe(ctx, SubscribeInput{UserID: provider.ID, PlanID: plan.ID, Months: 3})
		require.NoError(t, err)
		assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
		assert.True(t, sub.ExpiresAt.After(time.Now().UTC().AddDate(0, 2, 0)))

		_, err = env.subscriptionSvc.Subscribe(ctx, SubscribeInput{UserID: provider.ID, PlanID: plan.ID})
		assert.Error(t, err, "second active subscription must be refused")
	})

	t.Run("Unknown plan", func(t *testing.T) {
		provider := env.createUser(t, "provider2", models.RoleProvider)
		_, err := env.subscriptionSvc.Subscribe(ctx, SubscribeInput{UserID: provider.ID, PlanID: 9999})
		assert.Error(t, err)
	})
}

func TestSubscriptionService_CancelSuspendResume(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	plan := env.createPlan(t)
	provider := env.createUser(t, "provider", models.RoleProvider)

	sub, err := env.subscriptionSvc.Subscribe(ctx, SubscribeInput{UserID: provider.ID, PlanID: plan.ID})
	require.NoError(t, err)

	suspended, err := env.subscriptionSvc.Suspend(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusSuspended, suspended.Status)

	// Suspended subscriptions are not "active" for quota purposes.
	current, err := env.subscriptionSvc.Current(ctx, provider.ID)
	require.NoError(t, err)
	assert.Nil(t, current)

	resumed, err := env.subscriptionSvc.Resume(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, resumed.Status)

	cancelled, err := env.subscriptionSvc.Cancel(ctx, provider.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusCancelled, cancelled.Status)

	// Cancelled is terminal.
	_, err = env.subscriptionSvc.Resume(ctx, sub.ID)
	assert.Error(t, err)

	// No active subscription left to cancel.
	_, err = env.subscriptionSvc.Cancel(ctx, provider.ID)
	assert.Error(t, err)
}

func TestSubscriptionService_ExpireSweep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	plan := env.createPlan(t)
	provider := env.createUser(t, "provider", models.RoleProvider)

	sub, err := env.subscriptionSvc.Subscribe(ctx, SubscribeInput{UserID: provider.ID, PlanID: plan.ID})
	require.NoError(t, err)

	// Sweep with a future "now" so the subscription is overdue.
	count, err := env.subscriptionSvc.ExpireSweep(ctx, sub.ExpiresAt.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := env.subscriptions.GetSubscription(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusExpired, got.Status)
}
