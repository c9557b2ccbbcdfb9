package server

import (
	"taskhive/internal/models"
	"taskhive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SubmitReview handles POST /api/orders/:id/reviews
// @Summary Review a completed order
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Review
// @Failure 409 {object} models.ErrorResponse
// @Router /orders/{id}/reviews [post]
func (s *Server) SubmitReview(c *fiber.Ctx) error {
	orderID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	review, err := s.reviewService.SubmitReview(c.Context(), service.SubmitReviewInput{
		AuthorID: currentUserID(c),
		OrderID:  orderID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// GetOrderReviews handles GET /api/orders/:id/reviews
// @Summary List reviews on an order
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Review
// @Router /orders/{id}/reviews [get]
func (s *Server) GetOrderReviews(c *fiber.Ctx) error {
	orderID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	reviews, err := s.reviewService.ListByOrder(c.Context(), orderID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(reviews)
}

// DeleteReview handles DELETE /api/reviews/:id
// @Summary Soft-delete a review (author or admin)
// @Tags reviews
// @Security BearerAuth
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /reviews/{id} [delete]
func (s *Server) DeleteReview(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.reviewService.DeleteReview(c.Context(), currentUserID(c), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
