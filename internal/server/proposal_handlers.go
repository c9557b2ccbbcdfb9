package server

import (
	"time"

	"taskhive/internal/models"
	"taskhive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SubmitProposal handles POST /api/orders/:id/proposals
// @Summary Submit a proposal on an open order
// @Tags proposals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Proposal
// @Failure 409 {object} models.ErrorResponse
// @Router /orders/{id}/proposals [post]
func (s *Server) SubmitProposal(c *fiber.Ctx) error {
	orderID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Message   string     `json:"message"`
		Price     int64      `json:"price"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	proposal, err := s.proposalService.SubmitProposal(c.Context(), service.SubmitProposalInput{
		ProviderID: currentUserID(c),
		OrderID:    orderID,
		Message:    req.Message,
		Price:      req.Price,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(proposal)
}

// GetOrderProposals handles GET /api/orders/:id/proposals
// @Summary List proposals on an order (client only)
// @Tags proposals
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Proposal
// @Failure 403 {object} models.ErrorResponse
// @Router /orders/{id}/proposals [get]
func (s *Server) GetOrderProposals(c *fiber.Ctx) error {
	orderID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	proposals, err := s.proposalService.ListByOrder(c.Context(), currentUserID(c), orderID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(proposals)
}

// GetMyProposals handles GET /api/proposals/mine
// @Summary List own submitted proposals
// @Tags proposals
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Proposal
// @Router /proposals/mine [get]
func (s *Server) GetMyProposals(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	proposals, err := s.proposalService.ListMine(c.Context(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(proposals)
}

// DeclineProposal handles POST /api/proposals/:id/decline
// @Summary Decline a pending proposal (order's client only)
// @Tags proposals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Proposal
// @Failure 409 {object} models.ErrorResponse
// @Router /proposals/{id}/decline [post]
func (s *Server) DeclineProposal(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	proposal, err := s.proposalService.DeclineProposal(c.Context(), currentUserID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(proposal)
}

// WithdrawProposal handles DELETE /api/proposals/:id
// @Summary Withdraw own proposal
// @Tags proposals
// @Security BearerAuth
// @Success 204
// @Failure 409 {object} models.ErrorResponse
// @Router /proposals/{id} [delete]
func (s *Server) WithdrawProposal(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.proposalService.WithdrawProposal(c.Context(), currentUserID(c), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
