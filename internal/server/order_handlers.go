package server

import (
	"taskhive/internal/models"
	"taskhive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateOrder handles POST /api/orders
// @Summary Post a new order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Order
// @Failure 400 {object} models.ErrorResponse
// @Router /orders [post]
func (s *Server) CreateOrder(c *fiber.Ctx) error {
	var req struct {
		ServiceID   uint   `json:"service_id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Budget      int64  `json:"budget"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Title == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Title is required"))
	}

	order, err := s.orderService.CreateOrder(c.Context(), service.CreateOrderInput{
		ClientID:    currentUserID(c),
		ServiceID:   req.ServiceID,
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// GetOpenOrders handles GET /api/orders/open
// @Summary Browse pending orders open for proposals
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Order
// @Router /orders/open [get]
func (s *Server) GetOpenOrders(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	orders, err := s.orderService.ListOpenOrders(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(orders)
}

// GetMyOrders handles GET /api/orders/mine
// @Summary List own orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Order
// @Router /orders/mine [get]
func (s *Server) GetMyOrders(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	orders, err := s.orderService.ListMyOrders(c.Context(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(orders)
}

// GetOrder handles GET /api/orders/:id
// @Summary Get an order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Order
// @Failure 404 {object} models.ErrorResponse
// @Router /orders/{id} [get]
func (s *Server) GetOrder(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	order, err := s.orderService.GetOrder(c.Context(), currentUserID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(order)
}

// AcceptProposal handles POST /api/orders/:id/accept
// @Summary Accept a proposal on an order
// @Description Accepts the winning proposal, declines siblings and opens the chat room
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Order
// @Failure 409 {object} models.ErrorResponse
// @Router /orders/{id}/accept [post]
func (s *Server) AcceptProposal(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		ProposalID uint `json:"proposal_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.ProposalID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("proposal_id is required"))
	}

	order, err := s.orderService.AcceptProposal(c.Context(), service.AcceptProposalInput{
		ClientID:   currentUserID(c),
		OrderID:    id,
		ProposalID: req.ProposalID,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(order)
}

// StartOrder handles POST /api/orders/:id/start
// @Summary Mark an accepted order as in progress
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Order
// @Failure 409 {object} models.ErrorResponse
// @Router /orders/{id}/start [post]
func (s *Server) StartOrder(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	order, err := s.orderService.StartOrder(c.Context(), currentUserID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(order)
}

// CompleteOrder handles POST /api/orders/:id/complete
// @Summary Mark an in-progress order as completed
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Order
// @Failure 409 {object} models.ErrorResponse
// @Router /orders/{id}/complete [post]
func (s *Server) CompleteOrder(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	order, err := s.orderService.CompleteOrder(c.Context(), currentUserID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(order)
}

// CancelOrder handles POST /api/orders/:id/cancel
// @Summary Cancel an order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Order
// @Failure 409 {object} models.ErrorResponse
// @Router /orders/{id}/cancel [post]
func (s *Server) CancelOrder(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	order, err := s.orderService.CancelOrder(c.Context(), currentUserID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(order)
}

// DeleteOrder handles DELETE /api/orders/:id
// @Summary Soft-delete an order
// @Tags orders
// @Security BearerAuth
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /orders/{id} [delete]
func (s *Server) DeleteOrder(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.orderService.DeleteOrder(c.Context(), currentUserID(c), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
