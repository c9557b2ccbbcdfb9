package server

import (
	"taskhive/internal/models"
	"taskhive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPlans handles GET /api/subscriptions/plans
// @Summary List subscription plans
// @Tags subscriptions
// @Produce json
// @Success 200 {array} models.SubscriptionPlan
// @Router /subscriptions/plans [get]
func (s *Server) GetPlans(c *fiber.Ctx) error {
	plans, err := s.subscriptionService.ListPlans(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(plans)
}

// Subscribe handles POST /api/subscriptions
// @Summary Subscribe to a plan (providers only)
// @Tags subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.UserSubscription
// @Failure 409 {object} models.ErrorResponse
// @Router /subscriptions [post]
func (s *Server) Subscribe(c *fiber.Ctx) error {
	var req struct {
		PlanID uint `json:"plan_id"`
		Months int  `json:"months"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	sub, err := s.subscriptionService.Subscribe(c.Context(), service.SubscribeInput{
		UserID: currentUserID(c),
		PlanID: req.PlanID,
		Months: req.Months,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

// GetMySubscription handles GET /api/subscriptions/me
// @Summary Get own active subscription
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserSubscription
// @Failure 404 {object} models.ErrorResponse
// @Router /subscriptions/me [get]
func (s *Server) GetMySubscription(c *fiber.Ctx) error {
	sub, err := s.subscriptionService.Current(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	if sub == nil {
		return fail(c, models.NewNotFoundError("Subscription", currentUserID(c)))
	}
	return c.JSON(sub)
}

// CancelSubscription handles POST /api/subscriptions/cancel
// @Summary Cancel own active subscription
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserSubscription
// @Failure 404 {object} models.ErrorResponse
// @Router /subscriptions/cancel [post]
func (s *Server) CancelSubscription(c *fiber.Ctx) error {
	sub, err := s.subscriptionService.Cancel(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sub)
}

// CreatePlan handles POST /api/admin/plans
// @Summary Create a subscription plan
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.SubscriptionPlan
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/plans [post]
func (s *Server) CreatePlan(c *fiber.Ctx) error {
	var req struct {
		Name         string `json:"name"`
		PricePerMo   int64  `json:"price_per_mo"`
		MaxProposals int    `json:"max_proposals"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name is required"))
	}
	if req.PricePerMo <= 0 || req.MaxProposals <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Price and proposal quota must be positive"))
	}

	plan := &models.SubscriptionPlan{
		Name:         req.Name,
		PricePerMo:   req.PricePerMo,
		MaxProposals: req.MaxProposals,
	}
	if err := s.subRepo.CreatePlan(c.Context(), plan); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

// DeletePlan handles DELETE /api/admin/plans/:id
// @Summary Soft-delete a plan from the storefront
// @Tags admin
// @Security BearerAuth
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/plans/{id} [delete]
func (s *Server) DeletePlan(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	plan, err := s.subRepo.GetPlan(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if err := s.subRepo.DeletePlan(c.Context(), plan); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SuspendSubscription handles POST /api/admin/subscriptions/:id/suspend
// @Summary Suspend an active subscription
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserSubscription
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/subscriptions/{id}/suspend [post]
func (s *Server) SuspendSubscription(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	sub, err := s.subscriptionService.Suspend(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sub)
}

// ResumeSubscription handles POST /api/admin/subscriptions/:id/resume
// @Summary Resume a suspended subscription
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserSubscription
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/subscriptions/{id}/resume [post]
func (s *Server) ResumeSubscription(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	sub, err := s.subscriptionService.Resume(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sub)
}
