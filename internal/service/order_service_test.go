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

func TestOrderService_CreateOrder_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := env.createUser(t, "client", models.RoleClient)

	t.Run("Rejects non-positive budget", func(t *testing.T) {
		_, err := env.orderSvc.CreateOrder(ctx, CreateOrderInput{
			ClientID: client.ID, ServiceID: 1, Title: "x", Budget: 0,
		})
		assert.Error(t, err)
	})

	t.Run("Rejects unknown service", func(t *testing.T) {
		_, err := env.orderSvc.CreateOrder(ctx, CreateOrderInput{
			ClientID: client.ID, ServiceID: 9999, Title: "x", Budget: 100,
		})
		assert.Error(t, err)
	})
}

func TestOrderService_AcceptProposal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	client := env.createUser(t, "client", models.RoleClient)
	winner := env.createUser(t, "winner", models.RoleProvider)
	loser := env.createUser(t, "loser", models.RoleProvider)
	svc := env.createService(t)

	order, err := env.orderSvc.CreateOrder(ctx, CreateOrderInput{
		ClientID: client.ID, ServiceID: svc.ID, Title: "Job", Budget: 10000,
	})
	require.NoError(t, err)

	winning, err := env.proposalSvc.SubmitProposal(ctx, SubmitProposalInput{
		ProviderID: winner.ID, OrderID: order.ID, Price: 9000,
	})
	require.NoError(t, err)
	losing, err := env.proposalSvc.SubmitProposal(ctx, SubmitProposalInput{
		ProviderID: loser.ID, OrderID: order.ID, Price: 8000,
	})
	require.NoError(t, err)

	accepted, err := env.orderSvc.AcceptProposal(ctx, AcceptProposalInput{
		ClientID: client.ID, OrderID: order.ID, ProposalID: winning.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.AcceptedProposalID)
	assert.Equal(t, winning.ID, *accepted.AcceptedProposalID)

	// The winning proposal is accepted, the sibling declined.
	got, err := env.proposals.GetByID(ctx, winning.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusAccepted, got.Status)
	got, err = env.proposals.GetByID(ctx, losing.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusDeclined, got.Status)

	// A chat room opens between client and winner.
	room, err := env.chats.GetRoomByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, winner.ID, room.ProviderID)

	// A second accept hits the guard table.
	_, err = env.orderSvc.AcceptProposal(ctx, AcceptProposalInput{
		ClientID: client.ID, OrderID: order.ID, ProposalID: losing.ID,
	})
	assert.Error(t, err)
}

func TestOrderService_AcceptProposal_ExpiredRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	client := env.createUser(t, "client", models.RoleClient)
	provider := env.createUser(t, "provider", models.RoleProvider)
	svc := env.createService(t)

	order, err := env.orderSvc.CreateOrder(ctx, CreateOrderInput{
		ClientID: client.ID, ServiceID: svc.ID, Title: "Job", Budget: 10000,
	})
	require.NoError(t, err)

	exp := time.Now().UTC().Add(50 * time.Millisecond)
	proposal, err := env.proposalSvc.SubmitProposal(ctx, SubmitProposalInput{
		ProviderID: provider.ID, OrderID: order.ID, Price: 9000,
		ExpiresAt: &exp,
	})
	require.NoError(t, err)

	// Let the proposal lapse, then try to accept it.
	time.Sleep(75 * time.Millisecond)

	_, err = env.orderSvc.AcceptProposal(ctx, AcceptProposalInput{
		ClientID: client.ID, OrderID: order.ID, ProposalID: proposal.ID,
	})
	require.Error(t, err)

	// Nothing moved: order still pending, no chat room.
	got, err := env.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, got.Status)
	room, err := env.chats.GetRoomByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, room)
}

func TestOrderService_StartAndComplete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, _, _, provider := env.createAcceptedOrder(t)
	stranger := env.createUser(t, "stranger", models.RoleProvider)

	// Only the winning provider may start.
	_, err := env.orderSvc.StartOrder(ctx, stranger.ID, order.ID)
	assert.Error(t, err)

	started, err := env.orderSvc.StartOrder(ctx, provider.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusInProgress, started.Status)

	done, err := env.orderSvc.CompleteOrder(ctx, provider.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)

	// Completed is terminal.
	_, err = env.orderSvc.CancelOrder(ctx, order.ClientID, order.ID)
	assert.Error(t, err)
}

func TestOrderService_CancelGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, _, client, provider := env.createAcceptedOrder(t)

	// Accepted orders can still be cancelled.
	cancelled, err := env.orderSvc.CancelOrder(ctx, client.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	// Cancelled is terminal: the provider can no longer start.
	_, err = env.orderSvc.StartOrder(ctx, provider.ID, order.ID)
	assert.Error(t, err)
}

func TestOrderService_DeleteLeavesDependentsAlive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, proposal, client, _ := env.createAcceptedOrder(t)

	require.NoError(t, env.orderSvc.DeleteOrder(ctx, client.ID, order.ID))

	// The order is hidden but its proposal row keeps no tombstone.
	_, err := env.orders.GetByID(ctx, order.ID)
	assert.Error(t, err)

	var p models.Proposal
	require.NoError(t, env.db.Scopes(softdelete.All).First(&p, proposal.ID).Error)
	assert.True(t, p.IsAlive())
}

func TestOrderService_OwnershipChecks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, _, _, _ := env.createAcceptedOrder(t)
	other := env.createUser(t, "other-client", models.RoleClient)

	_, err := env.orderSvc.CancelOrder(ctx, other.ID, order.ID)
	assert.Error(t, err)
	err = env.orderSvc.DeleteOrder(ctx, other.ID, order.ID)
	assert.Error(t, err)
}
