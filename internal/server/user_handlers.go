package server

import (
	"taskhive/internal/models"
	"taskhive/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Get own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Username *string `json:"username"`
		Bio      *string `json:"bio"`
		Avatar   *string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}

	if req.Username != nil {
		if err := validation.ValidateUsername(*req.Username); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		user.Username = *req.Username
	}
	if req.Bio != nil {
		if len(*req.Bio) > 500 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Bio must be at most 500 characters"))
		}
		user.Bio = *req.Bio
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}

	if err := s.userRepo.Update(c.Context(), user); err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// DeleteMyAccount handles DELETE /api/users/me
// @Summary Soft-delete own account
// @Tags users
// @Security BearerAuth
// @Success 204
// @Failure 409 {object} models.ErrorResponse
// @Router /users/me [delete]
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	if err := s.userRepo.Delete(c.Context(), user); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetUserProfile handles GET /api/users/:id
// @Summary Get a user's public profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userRepo.GetByID(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// RegisterDevice handles POST /api/users/me/devices
// @Summary Register a push notification device token
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.DeviceToken
// @Router /users/me/devices [post]
func (s *Server) RegisterDevice(c *fiber.Ctx) error {
	var req struct {
		Token    string `json:"token"`
		Platform string `json:"platform"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Token == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Token is required"))
	}
	switch req.Platform {
	case "ios", "android", "web":
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Platform must be ios, android or web"))
	}

	token := &models.DeviceToken{
		UserID:   currentUserID(c),
		Token:    req.Token,
		Platform: req.Platform,
	}
	if err := s.userRepo.AddDeviceToken(c.Context(), token); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(token)
}

// GetMyDevices handles GET /api/users/me/devices
// @Summary List own device tokens
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.DeviceToken
// @Router /users/me/devices [get]
func (s *Server) GetMyDevices(c *fiber.Ctx) error {
	tokens, err := s.userRepo.ListDeviceTokens(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(tokens)
}

// RemoveDevice handles DELETE /api/users/me/devices/:deviceId
// @Summary Remove a device token
// @Tags users
// @Security BearerAuth
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /users/me/devices/{deviceId} [delete]
func (s *Server) RemoveDevice(c *fiber.Ctx) error {
	deviceID, err := s.parseID(c, "deviceId")
	if err != nil {
		return nil
	}

	tokens, err := s.userRepo.ListDeviceTokens(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	for i := range tokens {
		if tokens[i].ID == deviceID {
			if err := s.userRepo.RemoveDeviceToken(c.Context(), &tokens[i]); err != nil {
				return fail(c, err)
			}
			return c.SendStatus(fiber.StatusNoContent)
		}
	}
	return fail(c, models.NewNotFoundError("Device token", deviceID))
}
