package server

import (
	"taskhive/internal/models"
	"taskhive/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetCategories handles GET /api/categories
// @Summary List service categories
// @Tags catalog
// @Produce json
// @Success 200 {array} models.ServiceCategory
// @Router /categories [get]
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.catalogRepo.ListCategories(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(categories)
}

// GetCategory handles GET /api/categories/:id
// @Summary Get a category with its live services
// @Tags catalog
// @Produce json
// @Success 200 {object} models.ServiceCategory
// @Failure 404 {object} models.ErrorResponse
// @Router /categories/{id} [get]
func (s *Server) GetCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	category, err := s.catalogRepo.GetCategory(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(category)
}

// CreateCategory handles POST /api/categories (admin)
// @Summary Create a service category
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.ServiceCategory
// @Failure 400 {object} models.ErrorResponse
// @Router /categories [post]
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name is required"))
	}
	if err := validation.ValidateCategorySlug(req.Slug); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	category := &models.ServiceCategory{Name: req.Name, Slug: req.Slug}
	if err := s.catalogRepo.CreateCategory(c.Context(), category); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// DeleteCategory handles DELETE /api/categories/:id (admin)
// @Summary Soft-delete a category
// @Tags catalog
// @Security BearerAuth
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /categories/{id} [delete]
func (s *Server) DeleteCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	category, err := s.catalogRepo.GetCategory(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if err := s.catalogRepo.DeleteCategory(c.Context(), category); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetServices handles GET /api/services
// @Summary Browse catalog services
// @Tags catalog
// @Produce json
// @Param category_id query int false "Filter by category"
// @Success 200 {array} models.Service
// @Router /services [get]
func (s *Server) GetServices(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	categoryID := c.QueryInt("category_id", 0)
	if categoryID < 0 {
		categoryID = 0
	}

	services, err := s.catalogRepo.ListServices(c.Context(), uint(categoryID), p.Limit, p.Offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(services)
}

// GetService handles GET /api/services/:id
// @Summary Get a catalog service
// @Tags catalog
// @Produce json
// @Success 200 {object} models.Service
// @Failure 404 {object} models.ErrorResponse
// @Router /services/{id} [get]
func (s *Server) GetService(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	svc, err := s.catalogRepo.GetService(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(svc)
}

// CreateService handles POST /api/services (admin)
// @Summary Create a catalog service
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Service
// @Failure 400 {object} models.ErrorResponse
// @Router /services [post]
func (s *Server) CreateService(c *fiber.Ctx) error {
	var req struct {
		CategoryID  uint   `json:"category_id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		BasePrice   int64  `json:"base_price"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Name == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name is required"))
	}
	if req.BasePrice <= 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Base price must be positive"))
	}
	if _, err := s.catalogRepo.GetCategory(c.Context(), req.CategoryID); err != nil {
		return fail(c, err)
	}

	svc := &models.Service{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   req.BasePrice,
	}
	if err := s.catalogRepo.CreateService(c.Context(), svc); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(svc)
}

// UpdateService handles PUT /api/services/:id (admin)
// @Summary Update a catalog service
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Service
// @Failure 404 {object} models.ErrorResponse
// @Router /services/{id} [put]
func (s *Server) UpdateService(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	svc, err := s.catalogRepo.GetService(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		BasePrice   *int64  `json:"base_price"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Name != nil {
		if *req.Name == "" {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Name cannot be empty"))
		}
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.BasePrice != nil {
		if *req.BasePrice <= 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Base price must be positive"))
		}
		svc.BasePrice = *req.BasePrice
	}

	if err := s.catalogRepo.UpdateService(c.Context(), svc); err != nil {
		return fail(c, err)
	}
	return c.JSON(svc)
}

// DeleteService handles DELETE /api/services/:id (admin)
// @Summary Soft-delete a catalog service
// @Tags catalog
// @Security BearerAuth
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /services/{id} [delete]
func (s *Server) DeleteService(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	svc, err := s.catalogRepo.GetService(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	if err := s.catalogRepo.DeleteService(c.Context(), svc); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
