package repository

import (
	"context"
	"testing"
	"time"

	"taskhive/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createProposalFixtures(t *testing.T) (OrderRepository, ProposalRepository, *models.Order, *models.User) {
	t.Helper()
	gdb := setupRepoDB(t)
	orderRepo := NewOrderRepository(gdb)
	userRepo := NewUserRepository(gdb)
	catalogRepo := NewCatalogRepository(gdb)
	proposalRepo := NewProposalRepository(gdb)
	ctx := context.Background()

	order := createOrderFixture(t, orderRepo, userRepo, catalogRepo)

	provider := newUser("provider", "provider@example.com")
	provider.Role = models.RoleProvider
	require.NoError(t, userRepo.Create(ctx, provider))

	return orderRepo, proposalRepo, order, provider
}

func TestProposalRepository_CountPendingByProvider(t *testing.T) {
	_, repo, order, provider := createProposalFixtures(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.Proposal{
			OrderID:    order.ID,
			ProviderID: provider.ID,
			Price:      int64(1000 * (i + 1)),
			Status:     models.ProposalStatusPending,
		}))
	}

	count, err := repo.CountPendingByProvider(ctx, provider.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// Declined proposals stop counting against the quota.
	proposals, err := repo.ListByOrder(ctx, order.ID)
	require.NoError(t, err)
	p := proposals[0]
	require.NoError(t, p.Decline())
	require.NoError(t, repo.Update(ctx, &p))

	count, err = repo.CountPendingByProvider(ctx, provider.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestProposalRepository_DeclineSiblings(t *testing.T) {
	_, repo, order, provider := createProposalFixtures(t)
	ctx := context.Background()

	var ids []uint
	for i := 0; i < 3; i++ {
		p := &models.Proposal{
			OrderID:    order.ID,
			ProviderID: provider.ID,
			Price:      int64(1000 * (i + 1)),
			Status:     models.ProposalStatusPending,
		}
		require.NoError(t, repo.Create(ctx, p))
		ids = append(ids, p.ID)
	}

	declined, err := repo.DeclineSiblings(ctx, order.ID, ids[0])
	require.NoError(t, err)
	assert.Equal(t, int64(2), declined)

	winner, err := repo.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusPending, winner.Status)

	for _, id := range ids[1:] {
		sibling, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.ProposalStatusDeclined, sibling.Status)
	}
}

func TestProposalRepository_ExpirePending(t *testing.T) {
	_, repo, order, provider := createProposalFixtures(t)
	ctx := context.Background()
	now := time.Now().UTC()

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	expired := &models.Proposal{
		OrderID: order.ID, ProviderID: provider.ID, Price: 1000,
		Status: models.ProposalStatusPending, ExpiresAt: &past,
	}
	live := &models.Proposal{
		OrderID: order.ID, ProviderID: provider.ID, Price: 2000,
		Status: models.ProposalStatusPending, ExpiresAt: &future,
	}
	open := &models.Proposal{
		OrderID: order.ID, ProviderID: provider.ID, Price: 3000,
		Status: models.ProposalStatusPending,
	}
	for _, p := range []*models.Proposal{expired, live, open} {
		require.NoError(t, repo.Create(ctx, p))
	}

	count, err := repo.ExpirePending(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := repo.GetByID(ctx, expired.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusExpired, got.Status)

	got, err = repo.GetByID(ctx, live.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusPending, got.Status)

	// Proposals without an expiry never expire.
	got, err = repo.GetByID(ctx, open.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStatusPending, got.Status)
}
