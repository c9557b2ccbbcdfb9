package service

import (
	"context"

	"taskhive/internal/models"
	"taskhive/internal/repository"
)

// PaymentService provides payment recording and settlement logic.
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
}

// RecordPaymentInput is the input for recording a charge against an order.
type RecordPaymentInput struct {
	PayerID     uint
	OrderID     uint
	Amount      int64
	Currency    string
	ProviderRef string
}

// NewPaymentService returns a new PaymentService.
func NewPaymentService(paymentRepo repository.PaymentRepository, orderRepo repository.OrderRepository) *PaymentService {
	return &PaymentService{paymentRepo: paymentRepo, orderRepo: orderRepo}
}

// RecordPayment records a pending charge. Idempotent on ProviderRef: a
// replayed processor webhook returns the already-recorded payment.
func (s *PaymentService) RecordPayment(ctx context.Context, in RecordPaymentInput) (*models.Payment, error) {
	if in.Amount <= 0 {
		return nil, models.NewValidationError("Amount must be positive")
	}
	if in.ProviderRef == "" {
		return nil, models.NewValidationError("Provider reference is required")
	}

	if existing, err := s.paymentRepo.GetByProviderRef(ctx, in.ProviderRef); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	order, err := s.orderRepo.GetByID(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if order.ClientID != in.PayerID {
		return nil, models.NewForbiddenError("Only the order's client pays for it")
	}
	if order.Status != models.OrderStatusCompleted {
		return nil, models.NewConflictError("only completed orders are payable", nil)
	}

	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}
	payment := &models.Payment{
		OrderID:     in.OrderID,
		PayerID:     in.PayerID,
		Amount:      in.Amount,
		Currency:    currency,
		Status:      models.PaymentStatusPending,
		ProviderRef: in.ProviderRef,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// Settle marks a pending payment succeeded or failed from the processor
// callback.
func (s *PaymentService) Settle(ctx context.Context, providerRef string, succeeded bool) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByProviderRef(ctx, providerRef)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, models.NewNotFoundError("Payment", providerRef)
	}
	if payment.Status != models.PaymentStatusPending {
		return nil, models.NewConflictError("payment already settled", nil)
	}

	if succeeded {
		payment.Status = models.PaymentStatusSucceeded
	} else {
		payment.Status = models.PaymentStatusFailed
	}
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// Refund returns a settled charge.
func (s *PaymentService) Refund(ctx context.Context, paymentID uint) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentStatusSucceeded {
		return nil, models.NewConflictError("only succeeded payments can be refunded", nil)
	}
	payment.Status = models.PaymentStatusRefunded
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// ListByOrder returns the payments recorded against an order for its client.
func (s *PaymentService) ListByOrder(ctx context.Context, clientID, orderID uint) ([]models.Payment, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ClientID != clientID {
		return nil, models.NewForbiddenError("Not your order")
	}
	return s.paymentRepo.ListByOrder(ctx, orderID)
}
