package service

import (
	"context"
	"os"
	"testing"

	"taskhive/internal/database"
	"taskhive/internal/models"
	"taskhive/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

// testEnv wires every repository and service over one in-memory database.
type testEnv struct {
	db            *gorm.DB
	users         repository.UserRepository
	catalog       repository.CatalogRepository
	orders        repository.OrderRepository
	proposals     repository.ProposalRepository
	payments      repository.PaymentRepository
	reviews       repository.ReviewRepository
	chats         repository.ChatRepository
	subscriptions repository.SubscriptionRepository
	admin         repository.AdminRepository

	orderSvc        *OrderService
	proposalSvc     *ProposalService
	reviewSvc       *ReviewService
	paymentSvc      *PaymentService
	chatSvc         *ChatService
	subscriptionSvc *SubscriptionService
	adminSvc        *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	env := &testEnv{
		db:            db,
		users:         repository.NewUserRepository(db),
		catalog:       repository.NewCatalogRepository(db),
		orders:        repository.NewOrderRepository(db),
		proposals:     repository.NewProposalRepository(db),
		payments:      repository.NewPaymentRepository(db),
		reviews:       repository.NewReviewRepository(db),
		chats:         repository.NewChatRepository(db),
		subscriptions: repository.NewSubscriptionRepository(db),
		admin:         repository.NewAdminRepository(db),
	}
	env.orderSvc = NewOrderService(env.orders, env.catalog, db)
	env.proposalSvc = NewProposalService(env.proposals, env.orders, env.subscriptions)
	env.reviewSvc = NewReviewService(env.reviews, env.orders, env.users)
	env.paymentSvc = NewPaymentService(env.payments, env.orders)
	env.chatSvc = NewChatService(env.chats, env.users, nil)
	env.subscriptionSvc = NewSubscriptionService(env.subscriptions, env.users)
	env.adminSvc = NewAdminService(env.admin, env.proposalSvc, env.subscriptionSvc)
	return env
}

func (e *testEnv) createUser(t *testing.T, username string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, e.users.Create(context.Background(), user))
	return user
}

func (e *testEnv) createService(t *testing.T) *models.Service {
	t.Helper()
	ctx := context.Background()
	category := &models.ServiceCategory{Name: "Dev " + t.Name(), Slug: "dev-" + t.Name()}
	require.NoError(t, e.catalog.CreateCategory(ctx, category))
	svc := &models.Service{CategoryID: category.ID, Name: "Backend work", BasePrice: 10000}
	require.NoError(t, e.catalog.CreateService(ctx, svc))
	return svc
}

// createAcceptedOrder builds the standard fixture: client posts an order,
// provider bids, client accepts.
func (e *testEnv) createAcceptedOrder(t *testing.T) (*models.Order, *models.Proposal, *models.User, *models.User) {
	t.Helper()
	ctx := context.Background()

	client := e.createUser(t, "client-"+t.Name(), models.RoleClient)
	provider := e.createUser(t, "provider-"+t.Name(), models.RoleProvider)
	svc := e.createService(t)

	order, err := e.orderSvc.CreateOrder(ctx, CreateOrderInput{
		ClientID:  client.ID,
		ServiceID: svc.ID,
		Title:     "Build the thing",
		Budget:    50000,
	})
	require.NoError(t, err)

	proposal, err := e.proposalSvc.SubmitProposal(ctx, SubmitProposalInput{
		ProviderID: provider.ID,
		OrderID:    order.ID,
		Price:      45000,
	})
	require.NoError(t, err)

	order, err = e.orderSvc.AcceptProposal(ctx, AcceptProposalInput{
		ClientID:   client.ID,
		OrderID:    order.ID,
		ProposalID: proposal.ID,
	})
	require.NoError(t, err)

	return order, proposal, client, provider
}

// completeOrder walks the accepted order through start and complete.
func (e *testEnv) completeOrder(t *testing.T, order *models.Order, providerID uint) *models.Order {
	t.Helper()
	ctx := context.Background()
	_, err := e.orderSvc.StartOrder(ctx, providerID, order.ID)
	require.NoError(t, err)
	done, err := e.orderSvc.CompleteOrder(ctx, providerID, order.ID)
	require.NoError(t, err)
	return done
}
