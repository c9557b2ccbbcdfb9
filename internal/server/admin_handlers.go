package server

import (
	"time"

	"taskhive/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AdminEntities handles GET /api/admin/entities
// @Summary List entity names available to the moderation surface
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} string
// @Router /admin/entities [get]
func (s *Server) AdminEntities(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"entities": s.adminService.Entities()})
}

// AdminStatusChoices handles GET /api/admin/status-choices
// @Summary List status values and labels per workflow entity
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]models.Choice
// @Router /admin/status-choices [get]
func (s *Server) AdminStatusChoices(c *fiber.Ctx) error {
	return c.JSON(s.adminService.StatusChoices())
}

// AdminListDead handles GET /api/admin/:entity/dead
// @Summary List soft-deleted records of an entity
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} object
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/{entity}/dead [get]
func (s *Server) AdminListDead(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	records, err := s.adminService.ListDead(c.Context(), c.Params("entity"), p.Limit, p.Offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(records)
}

// AdminListAll handles GET /api/admin/:entity/all
// @Summary List records of an entity regardless of deletion state
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} object
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/{entity}/all [get]
func (s *Server) AdminListAll(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	records, err := s.adminService.ListAll(c.Context(), c.Params("entity"), p.Limit, p.Offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(records)
}

// AdminRestore handles POST /api/admin/:entity/:id/restore
// @Summary Restore a soft-deleted record
// @Description Restoring an already-alive record is a no-op and reports restored=false
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{restored=bool}
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/{entity}/{id}/restore [post]
func (s *Server) AdminRestore(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	restored, err := s.adminService.Restore(c.Context(), currentUserID(c), c.Params("entity"), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"restored": restored})
}

// AdminHardDelete handles DELETE /api/admin/:entity/:id
// @Summary Permanently delete a record and its cascade-owned dependents
// @Description Refused with 409 when a protect edge has live dependents
// @Tags admin
// @Security BearerAuth
// @Success 204
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/{entity}/{id} [delete]
func (s *Server) AdminHardDelete(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.adminService.HardDelete(c.Context(), currentUserID(c), c.Params("entity"), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AdminPurge handles POST /api/admin/:entity/purge
// @Summary Permanently delete soft-deleted records older than a cutoff
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{purged=int}
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/{entity}/purge [post]
func (s *Server) AdminPurge(c *fiber.Ctx) error {
	var req struct {
		OlderThanDays int `json:"older_than_days"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.OlderThanDays <= 0 {
		req.OlderThanDays = 30
	}

	cutoff := nowUTC().AddDate(0, 0, -req.OlderThanDays)
	purged, err := s.adminService.Purge(c.Context(), currentUserID(c), c.Params("entity"), cutoff)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"purged": purged, "cutoff": cutoff.Format(time.RFC3339)})
}

// AdminSweep handles POST /api/admin/sweep
// @Summary Expire lapsed proposals and subscriptions
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.SweepResult
// @Router /admin/sweep [post]
func (s *Server) AdminSweep(c *fiber.Ctx) error {
	result, err := s.adminService.SweepExpirations(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

// AdminActions handles GET /api/admin/actions
// @Summary List the moderation audit trail, newest first
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.AdminAction
// @Router /admin/actions [get]
func (s *Server) AdminActions(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	actions, err := s.adminService.Actions(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(actions)
}
