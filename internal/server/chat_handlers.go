package server

import (
	"encoding/json"

	"taskhive/internal/models"
	"taskhive/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetChatRooms handles GET /api/chat/rooms
// @Summary List chat rooms the user participates in
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ChatRoom
// @Router /chat/rooms [get]
func (s *Server) GetChatRooms(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	rooms, err := s.chatService.ListRooms(c.Context(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(rooms)
}

// GetChatRoom handles GET /api/chat/rooms/:id
// @Summary Get a chat room (participants only)
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ChatRoom
// @Failure 403 {object} models.ErrorResponse
// @Router /chat/rooms/{id} [get]
func (s *Server) GetChatRoom(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	room, err := s.chatService.GetRoom(c.Context(), currentUserID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(room)
}

// GetChatMessages handles GET /api/chat/rooms/:id/messages
// @Summary List messages in a room (participants only)
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Message
// @Failure 403 {object} models.ErrorResponse
// @Router /chat/rooms/{id}/messages [get]
func (s *Server) GetChatMessages(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	p := parsePagination(c, 50)
	messages, err := s.chatService.ListMessages(c.Context(), currentUserID(c), id, p.Limit, p.Offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(messages)
}

// SendChatMessage handles POST /api/chat/rooms/:id/messages
// @Summary Send a message to a room
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Message
// @Failure 403 {object} models.ErrorResponse
// @Router /chat/rooms/{id}/messages [post]
func (s *Server) SendChatMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content  string          `json:"content"`
		Metadata json.RawMessage `json:"metadata"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	msg, err := s.chatService.SendMessage(c.Context(), service.SendMessageInput{
		UserID:   currentUserID(c),
		RoomID:   id,
		Content:  req.Content,
		Metadata: req.Metadata,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// MarkChatRead handles POST /api/chat/rooms/:id/read
// @Summary Mark the other participant's messages as read
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{marked=int}
// @Failure 403 {object} models.ErrorResponse
// @Router /chat/rooms/{id}/read [post]
func (s *Server) MarkChatRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	marked, err := s.chatService.MarkRead(c.Context(), currentUserID(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"marked": marked})
}

// DeleteChatMessage handles DELETE /api/chat/rooms/:id/messages/:messageId
// @Summary Soft-delete a message (sender or admin)
// @Tags chat
// @Security BearerAuth
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /chat/rooms/{id}/messages/{messageId} [delete]
func (s *Server) DeleteChatMessage(c *fiber.Ctx) error {
	roomID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	messageID, err := s.parseID(c, "messageId")
	if err != nil {
		return nil
	}

	if err := s.chatService.DeleteMessage(c.Context(), currentUserID(c), roomID, messageID); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
