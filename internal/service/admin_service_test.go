package service

import (
	"context"
	"testing"
	"time"

	"taskhive/internal/models"
	"taskhive/internal/softdelete"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminService_RestoreAudits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.createUser(t, "admin", models.RoleAdmin)
	order, _, client, _ := env.createAcceptedOrder(t)
	require.NoError(t, env.orderSvc.DeleteOrder(ctx, client.ID, order.ID))

	restored, err := env.adminSvc.Restore(ctx, admin.ID, "orders", order.ID)
	require.NoError(t, err)
	assert.True(t, restored)

	// The no-op repeat is still audited, flagged as such.
	restored, err = env.adminSvc.Restore(ctx, admin.ID, "orders", order.ID)
	require.NoError(t, err)
	assert.False(t, restored)

	actions, err := env.adminSvc.Actions(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, "restore", actions[0].Action)
	assert.Equal(t, order.ID, actions[0].TargetID)
}

func TestAdminService_HardDeleteProtectIsNotAudited(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.createUser(t, "admin", models.RoleAdmin)
	svc := env.createService(t)

	err := env.adminSvc.HardDelete(ctx, admin.ID, "categories", svc.CategoryID)
	require.Error(t, err)
	assert.ErrorIs(t, err, softdelete.ErrProtected)

	actions, err := env.adminSvc.Actions(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestAdminService_HardDeleteCascadesAndAudits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.createUser(t, "admin", models.RoleAdmin)
	order, proposal, _, _ := env.createAcceptedOrder(t)

	require.NoError(t, env.adminSvc.HardDelete(ctx, admin.ID, "orders", order.ID))

	// The proposal and chat room went with the order.
	var count int64
	require.NoError(t, env.db.Model(&models.Proposal{}).Scopes(softdelete.All).
		Where("id = ?", proposal.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, env.db.Model(&models.ChatRoom{}).Scopes(softdelete.All).
		Where("order_id = ?", order.ID).Count(&count).Error)
	assert.Zero(t, count)

	actions, err := env.adminSvc.Actions(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "hard_delete", actions[0].Action)
}

func TestAdminService_SweepExpirations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.createUser(t, "admin", models.RoleAdmin)
	client := env.createUser(t, "client", models.RoleClient)
	provider := env.createUser(t, "provider", models.RoleProvider)
	svc := env.createService(t)

	order, err := env.orderSvc.CreateOrder(ctx, CreateOrderInput{
		ClientID: client.ID, ServiceID: svc.ID, Title: "Job", Budget: 1000,
	})
	require.NoError(t, err)

	// A proposal that lapses immediately.
	exp := time.Now().UTC().Add(25 * time.Millisecond)
	proposal, err := env.proposalSvc.SubmitProposal(ctx, SubmitProposalInput{
		ProviderID: provider.ID, OrderID: order.ID, Price: 900, ExpiresAt: &exp,
	})
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	result, err := env.adminSvc.SweepExpirations(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.ProposalsExpired)
	assert.Zero(t, result.SubscriptionsExpired)

	got, err := env.proposals.GetByID(ctx, proposal.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusExpired, got.Status)

	actions, err := env.adminSvc.Actions(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "expire_sweep", actions[0].Action)
}

func TestAdminService_PurgeAudits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.createUser(t, "admin", models.RoleAdmin)
	order, _, client, _ := env.createAcceptedOrder(t)
	require.NoError(t, env.orderSvc.DeleteOrder(ctx, client.ID, order.ID))

	count, err := env.adminSvc.Purge(ctx, admin.ID, "orders", time.Now().UTC().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	actions, err := env.adminSvc.Actions(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "purge", actions[0].Action)
}

func TestAdminService_StatusChoices(t *testing.T) {
	env := newTestEnv(t)
	choices := env.adminSvc.StatusChoices()

	require.Contains(t, choices, "order")
	require.Contains(t, choices, "proposal")
	require.Contains(t, choices, "subscription")
	assert.Len(t, choices["order"], 5)
	assert.Len(t, choices["proposal"], 4)
	assert.Len(t, choices["subscription"], 4)
}
