package server

import (
	"taskhive/internal/models"
	"taskhive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// RecordPayment handles POST /api/orders/:id/payments
// @Summary Record a payment intent for a completed order
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Payment
// @Failure 409 {object} models.ErrorResponse
// @Router /orders/{id}/payments [post]
func (s *Server) RecordPayment(c *fiber.Ctx) error {
	orderID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Amount      int64  `json:"amount"`
		Currency    string `json:"currency"`
		ProviderRef string `json:"provider_ref"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	payment, err := s.paymentService.RecordPayment(c.Context(), service.RecordPaymentInput{
		PayerID:     currentUserID(c),
		OrderID:     orderID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		ProviderRef: req.ProviderRef,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(payment)
}

// GetOrderPayments handles GET /api/orders/:id/payments
// @Summary List payments on an order (client only)
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Payment
// @Failure 403 {object} models.ErrorResponse
// @Router /orders/{id}/payments [get]
func (s *Server) GetOrderPayments(c *fiber.Ctx) error {
	orderID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	payments, err := s.paymentService.ListByOrder(c.Context(), currentUserID(c), orderID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(payments)
}

// PaymentWebhook handles POST /api/payments/webhook
// @Summary Settle a pending payment from a provider callback
// @Description Idempotent by provider reference; repeated callbacks are safe
// @Tags payments
// @Accept json
// @Produce json
// @Success 200 {object} models.Payment
// @Failure 404 {object} models.ErrorResponse
// @Router /payments/webhook [post]
func (s *Server) PaymentWebhook(c *fiber.Ctx) error {
	var req struct {
		ProviderRef string `json:"provider_ref"`
		Status      string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.ProviderRef == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("provider_ref is required"))
	}

	var succeeded bool
	switch req.Status {
	case "succeeded":
		succeeded = true
	case "failed":
		succeeded = false
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Status must be succeeded or failed"))
	}

	payment, err := s.paymentService.Settle(c.Context(), req.ProviderRef, succeeded)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(payment)
}

// RefundPayment handles POST /api/payments/:id/refund (admin)
// @Summary Refund a succeeded payment
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Payment
// @Failure 409 {object} models.ErrorResponse
// @Router /payments/{id}/refund [post]
func (s *Server) RefundPayment(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	payment, err := s.paymentService.Refund(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(payment)
}
