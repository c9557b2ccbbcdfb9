package repository

import (
	"context"
	"testing"

	"taskhive/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createOrderFixture inserts a client, category, service and one pending order.
func createOrderFixture(t *testing.T, repo OrderRepository, userRepo UserRepository, catalogRepo CatalogRepository) *models.Order {
	t.Helper()
	ctx := context.Background()

	client := newUser("order-client", "order-client@example.com")
	require.NoError(t, userRepo.Create(ctx, client))

	category := &models.ServiceCategory{Name: "Design", Slug: "design"}
	require.NoError(t, catalogRepo.CreateCategory(ctx, category))

	service := &models.Service{CategoryID: category.ID, Name: "Logo design", BasePrice: 5000}
	require.NoError(t, catalogRepo.CreateService(ctx, service))

	order := &models.Order{
		ClientID:  client.ID,
		ServiceID: service.ID,
		Title:     "New logo",
		Budget:    10000,
		Status:    models.OrderStatusPending,
	}
	require.NoError(t, repo.Create(ctx, order))
	return order
}

func TestOrderRepository_Lifecycle(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewOrderRepository(db)
	userRepo := NewUserRepository(db)
	catalogRepo := NewCatalogRepository(db)
	ctx := context.Background()

	order := createOrderFixture(t, repo, userRepo, catalogRepo)

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, got.Status)

	open, err := repo.ListOpen(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, open, 1)

	byClient, err := repo.ListByClient(ctx, order.ClientID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, byClient, 1)

	// Soft delete hides the order from every ordinary read.
	require.NoError(t, repo.Delete(ctx, order))
	_, err = repo.GetByID(ctx, order.ID)
	assert.Error(t, err)
	open, err = repo.ListOpen(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, open)

	// Restore brings it back; a second restore is a no-op.
	restored, err := repo.Restore(ctx, order)
	require.NoError(t, err)
	assert.True(t, restored)

	restored, err = repo.Restore(ctx, order)
	require.NoError(t, err)
	assert.False(t, restored)

	got, err = repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestOrderRepository_StatusPersistsThroughTransition(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewOrderRepository(db)
	userRepo := NewUserRepository(db)
	catalogRepo := NewCatalogRepository(db)
	ctx := context.Background()

	order := createOrderFixture(t, repo, userRepo, catalogRepo)

	require.NoError(t, order.Transition(models.OrderStatusAccepted))
	require.NoError(t, repo.Update(ctx, order))

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusAccepted, got.Status)

	// Accepted orders no longer show in the open listing.
	open, err := repo.ListOpen(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, open)
}
