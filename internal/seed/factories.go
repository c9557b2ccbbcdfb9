// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"taskhive/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Factory{db: db, r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(role models.UserRole, overrides ...func(*models.User)) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Password123!@#"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Password: string(hash),
		Role:     role,
		Bio:      gofakeit.Sentence(10),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateOrder constructs and persists an order for the given client and
// service, with a realistic created_at spread over the last 90 days.
func (f *Factory) CreateOrder(client *models.User, svc *models.Service, overrides ...func(*models.Order)) (*models.Order, error) {
	order := &models.Order{
		ClientID:    client.ID,
		ServiceID:   svc.ID,
		Title:       gofakeit.Sentence(4),
		Description: gofakeit.Paragraph(1, 3, 8, "\n"),
		Budget:      int64(gofakeit.Number(50, 5000)) * 100,
		Status:      models.OrderStatusPending,
	}

	daysBack := f.r.Intn(90)
	hoursBack := f.r.Intn(24)
	order.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(order)
	}
	if err := f.db.Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// CreateProposal persists a proposal from the provider on the order.
func (f *Factory) CreateProposal(order *models.Order, provider *models.User, overrides ...func(*models.Proposal)) (*models.Proposal, error) {
	expires := time.Now().Add(time.Duration(f.r.Intn(14)+1) * 24 * time.Hour)
	proposal := &models.Proposal{
		OrderID:    order.ID,
		ProviderID: provider.ID,
		Message:    gofakeit.Paragraph(1, 2, 6, "\n"),
		Price:      order.Budget - int64(f.r.Intn(int(order.Budget/4)+1)),
		Status:     models.ProposalStatusPending,
		ExpiresAt:  &expires,
	}
	for _, override := range overrides {
		override(proposal)
	}
	if err := f.db.Create(proposal).Error; err != nil {
		return nil, err
	}
	return proposal, nil
}

// AcceptProposal marks the proposal accepted, moves the order to accepted,
// and opens the chat room, mirroring what the order workflow does.
func (f *Factory) AcceptProposal(order *models.Order, proposal *models.Proposal) (*models.ChatRoom, error) {
	proposal.Status = models.ProposalStatusAccepted
	if err := f.db.Save(proposal).Error; err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusAccepted
	order.AcceptedProposalID = &proposal.ID
	if err := f.db.Save(order).Error; err != nil {
		return nil, err
	}

	room := &models.ChatRoom{
		OrderID:    order.ID,
		ClientID:   order.ClientID,
		ProviderID: proposal.ProviderID,
	}
	if err := f.db.Create(room).Error; err != nil {
		return nil, err
	}
	return room, nil
}

// CreateMessage persists a chat message from the sender into the room.
func (f *Factory) CreateMessage(room *models.ChatRoom, senderID uint) (*models.Message, error) {
	msg := &models.Message{
		RoomID:   room.ID,
		SenderID: senderID,
		Content:  gofakeit.Sentence(f.r.Intn(12) + 3),
	}
	if err := f.db.Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

// CreateReview persists a review by the client on a completed order.
func (f *Factory) CreateReview(order *models.Order, authorID uint) (*models.Review, error) {
	review := &models.Review{
		OrderID:  order.ID,
		AuthorID: authorID,
		Rating:   f.r.Intn(3) + 3, // seeded marketplaces skew positive
		Comment:  gofakeit.Sentence(8),
	}
	if err := f.db.Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}
