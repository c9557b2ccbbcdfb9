package service

import (
	"context"
	"strconv"
	"time"

	"taskhive/internal/models"
	"taskhive/internal/observability"
	"taskhive/internal/repository"
)

// Notifier delivers a message to connected sockets and push targets.
// Implemented by the notifications package; nil disables delivery.
type Notifier interface {
	NotifyMessage(ctx context.Context, room *models.ChatRoom, msg *models.Message)
}

// ChatService provides chat room and message business logic.
type ChatService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	notifier Notifier
}

// SendMessageInput is the input for posting a message into a room.
type SendMessageInput struct {
	UserID   uint
	RoomID   uint
	Content  string
	Metadata []byte
}

// NewChatService returns a new ChatService.
func NewChatService(chatRepo repository.ChatRepository, userRepo repository.UserRepository, notifier Notifier) *ChatService {
	return &ChatService{chatRepo: chatRepo, userRepo: userRepo, notifier: notifier}
}

func isParticipant(room *models.ChatRoom, userID uint) bool {
	return room.ClientID == userID || room.ProviderID == userID
}

// GetRoom returns the room if the caller participates in it.
func (s *ChatService) GetRoom(ctx context.Context, userID, roomID uint) (*models.ChatRoom, error) {
	room, err := s.chatRepo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(room, userID) {
		return nil, models.NewForbiddenError("Not a participant of this room")
	}
	return room, nil
}

// ListRooms returns the caller's rooms, most recently active first.
func (s *ChatService) ListRooms(ctx context.Context, userID uint, limit, offset int) ([]models.ChatRoom, error) {
	return s.chatRepo.ListRoomsForUser(ctx, userID, limit, offset)
}

// SendMessage posts a message into a room the caller participates in and
// fans it out to connected sockets.
func (s *ChatService) SendMessage(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Message content is required")
	}

	room, err := s.GetRoom(ctx, in.UserID, in.RoomID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		RoomID:   room.ID,
		SenderID: in.UserID,
		Content:  in.Content,
		Metadata: in.Metadata,
	}
	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	observability.MessageThroughput.WithLabelValues(strconv.FormatUint(uint64(room.ID), 10)).Inc()

	if s.notifier != nil {
		s.notifier.NotifyMessage(ctx, room, msg)
	}
	return msg, nil
}

// ListMessages returns the room's alive messages for a participant.
func (s *ChatService) ListMessages(ctx context.Context, userID, roomID uint, limit, offset int) ([]models.Message, error) {
	if _, err := s.GetRoom(ctx, userID, roomID); err != nil {
		return nil, err
	}
	return s.chatRepo.ListMessages(ctx, roomID, limit, offset)
}

// MarkRead stamps the other side's unread messages and returns how many.
func (s *ChatService) MarkRead(ctx context.Context, userID, roomID uint) (int64, error) {
	if _, err := s.GetRoom(ctx, userID, roomID); err != nil {
		return 0, err
	}
	return s.chatRepo.MarkRead(ctx, roomID, userID, time.Now().UTC())
}

// DeleteMessage tombstones a message. Senders remove their own; admins
// remove anyone's.
func (s *ChatService) DeleteMessage(ctx context.Context, userID, roomID, messageID uint) error {
	target, err := s.chatRepo.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if target.RoomID != roomID {
		return models.NewValidationError("Message does not belong to this room")
	}

	if target.SenderID != userID {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if !user.IsAdmin() {
			return models.NewForbiddenError("Not your message")
		}
	}
	return s.chatRepo.DeleteMessage(ctx, target)
}
