// Package service provides the marketplace business logic.
package service

import (
	"context"
	"time"

	"taskhive/internal/models"
	"taskhive/internal/observability"
	"taskhive/internal/repository"

	"gorm.io/gorm"
)

// OrderService provides order workflow business logic.
type OrderService struct {
	orderRepo   repository.OrderRepository
	catalogRepo repository.CatalogRepository
	db          *gorm.DB
}

// CreateOrderInput is the input for posting a new order.
type CreateOrderInput struct {
	ClientID    uint
	ServiceID   uint
	Title       string
	Description string
	Budget      int64
}

// AcceptProposalInput is the input for accepting a proposal on an order.
type AcceptProposalInput struct {
	ClientID   uint
	OrderID    uint
	ProposalID uint
}

// NewOrderService returns a new OrderService.
func NewOrderService(orderRepo repository.OrderRepository, catalogRepo repository.CatalogRepository, db *gorm.DB) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
		db:          db,
	}
}

func trackTransition(entity string, to string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	observability.StatusTransitions.WithLabelValues(entity, to, outcome).Inc()
}

// CreateOrder posts a new pending order against an alive catalog service.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if in.Budget <= 0 {
		return nil, models.NewValidationError("Budget must be positive")
	}
	if _, err := s.catalogRepo.GetService(ctx, in.ServiceID); err != nil {
		return nil, err
	}

	order := &models.Order{
		ClientID:    in.ClientID,
		ServiceID:   in.ServiceID,
		Title:       in.Title,
		Description: in.Description,
		Budget:      in.Budget,
		Status:      models.OrderStatusPending,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder returns an order the caller is allowed to see. Clients see their
// own orders; any provider can inspect a pending order to bid on it.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDWithProposals(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ClientID != userID && order.Status != models.OrderStatusPending {
		return nil, models.NewForbiddenError("Not your order")
	}
	return order, nil
}

// AcceptProposal accepts one proposal, declines its pending siblings, moves
// the order to accepted and opens the chat room, all in one transaction.
func (s *OrderService) AcceptProposal(ctx context.Context, in AcceptProposalInput) (*models.Order, error) {
	var accepted *models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := repository.NewOrderRepository(tx)
		proposals := repository.NewProposalRepository(tx)
		chats := repository.NewChatRepository(tx)

		order, err := orders.GetByID(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if order.ClientID != in.ClientID {
			return models.NewForbiddenError("Not your order")
		}

		proposal, err := proposals.GetByID(ctx, in.ProposalID)
		if err != nil {
			return err
		}
		if proposal.OrderID != order.ID {
			return models.NewValidationError("Proposal does not belong to this order")
		}

		now := time.Now().UTC()
		if err := proposal.Accept(now); err != nil {
			trackTransition("proposal", string(models.ProposalStatusAccepted), err)
			return err
		}
		if err := order.Transition(models.OrderStatusAccepted); err != nil {
			trackTransition("order", string(models.OrderStatusAccepted), err)
			return err
		}
		trackTransition("proposal", string(models.ProposalStatusAccepted), nil)
		trackTransition("order", string(models.OrderStatusAccepted), nil)

		order.AcceptedProposalID = &proposal.ID
		if err := proposals.Update(ctx, proposal); err != nil {
			return err
		}
		if err := orders.Update(ctx, order); err != nil {
			return err
		}
		if _, err := proposals.DeclineSiblings(ctx, order.ID, proposal.ID); err != nil {
			return err
		}

		room := &models.ChatRoom{
			OrderID:    order.ID,
			ClientID:   order.ClientID,
			ProviderID: proposal.ProviderID,
		}
		if err := chats.CreateRoom(ctx, room); err != nil {
			return err
		}

		accepted = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

// acceptedProviderID resolves the provider of the order's accepted proposal.
func (s *OrderService) acceptedProviderID(ctx context.Context, order *models.Order) (uint, error) {
	if order.AcceptedProposalID == nil {
		return 0, models.NewConflictError("order has no accepted proposal", nil)
	}
	proposals := repository.NewProposalRepository(s.db)
	proposal, err := proposals.GetByID(ctx, *order.AcceptedProposalID)
	if err != nil {
		return 0, err
	}
	return proposal.ProviderID, nil
}

// StartOrder moves an accepted order to in progress. Only the winning
// provider starts work.
func (s *OrderService) StartOrder(ctx context.Context, providerID, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	winner, err := s.acceptedProviderID(ctx, order)
	if err != nil {
		return nil, err
	}
	if winner != providerID {
		return nil, models.NewForbiddenError("Not your engagement")
	}
	if err := order.Transition(models.OrderStatusInProgress); err != nil {
		trackTransition("order", string(models.OrderStatusInProgress), err)
		return nil, err
	}
	trackTransition("order", string(models.OrderStatusInProgress), nil)
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// CompleteOrder moves an in-progress order to completed, stamping
// CompletedAt. Only the winning provider completes work.
func (s *OrderService) CompleteOrder(ctx context.Context, providerID, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	winner, err := s.acceptedProviderID(ctx, order)
	if err != nil {
		return nil, err
	}
	if winner != providerID {
		return nil, models.NewForbiddenError("Not your engagement")
	}
	if err := order.Transition(models.OrderStatusCompleted); err != nil {
		trackTransition("order", string(models.OrderStatusCompleted), err)
		return nil, err
	}
	trackTransition("order", string(models.OrderStatusCompleted), nil)
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrder withdraws a pending or accepted order. Completed and
// in-progress orders cannot be cancelled; the guard table rejects them.
func (s *OrderService) CancelOrder(ctx context.Context, clientID, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ClientID != clientID {
		return nil, models.NewForbiddenError("Not your order")
	}
	if err := order.Transition(models.OrderStatusCancelled); err != nil {
		trackTransition("order", string(models.OrderStatusCancelled), err)
		return nil, err
	}
	trackTransition("order", string(models.OrderStatusCancelled), nil)
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// DeleteOrder tombstones the client's order. Proposals, payments, reviews
// and chat history stay alive underneath the tombstone.
func (s *OrderService) DeleteOrder(ctx context.Context, clientID, orderID uint) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.ClientID != clientID {
		return models.NewForbiddenError("Not your order")
	}
	return s.orderRepo.Delete(ctx, order)
}

// ListOpenOrders returns pending orders providers can bid on.
func (s *OrderService) ListOpenOrders(ctx context.Context, limit, offset int) ([]models.Order, error) {
	return s.orderRepo.ListOpen(ctx, limit, offset)
}

// ListMyOrders returns the client's own orders.
func (s *OrderService) ListMyOrders(ctx context.Context, clientID uint, limit, offset int) ([]models.Order, error) {
	return s.orderRepo.ListByClient(ctx, clientID, limit, offset)
}
