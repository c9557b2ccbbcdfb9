package repository

import (
	"context"
	"errors"
	"time"

	"taskhive/internal/models"
	"taskhive/internal/observability"
	"taskhive/internal/softdelete"

	"gorm.io/gorm"
)

// ChatRepository defines persistence operations for chat rooms and messages.
type ChatRepository interface {
	CreateRoom(ctx context.Context, room *models.ChatRoom) error
	GetRoom(ctx context.Context, id uint) (*models.ChatRoom, error)
	GetRoomByOrder(ctx context.Context, orderID uint) (*models.ChatRoom, error)
	ListRoomsForUser(ctx context.Context, userID uint, limit, offset int) ([]models.ChatRoom, error)
	CreateMessage(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, id uint) (*models.Message, error)
	ListMessages(ctx context.Context, roomID uint, limit, offset int) ([]models.Message, error)
	MarkRead(ctx context.Context, roomID, readerID uint, at time.Time) (int64, error)
	DeleteMessage(ctx context.Context, msg *models.Message) error
	RestoreMessage(ctx context.Context, msg *models.Message) (bool, error)
	PurgeDeadMessages(ctx context.Context, roomID uint, before time.Time) (int64, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository returns a new ChatRepository implementation.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateRoom(ctx context.Context, room *models.ChatRoom) error {
	if err := r.db.WithContext(ctx).Create(room).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *chatRepository) GetRoom(ctx context.Context, id uint) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).First(&room, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("ChatRoom", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &room, nil
}

func (r *chatRepository) GetRoomByOrder(ctx context.Context, orderID uint) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).
		Where("order_id = ?", orderID).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &room, nil
}

func (r *chatRepository) ListRoomsForUser(ctx context.Context, userID uint, limit, offset int) ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).
		Where("client_id = ? OR provider_id = ?", userID, userID).
		Order("updated_at DESC").
		Limit(clampLimit(limit)).Offset(offset).
		Find(&rooms).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return rooms, nil
}

func (r *chatRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	defer observability.TrackQuery("insert", "messages")()

	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *chatRepository) GetMessage(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).First(&msg, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Message", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &msg, nil
}

func (r *chatRepository) ListMessages(ctx context.Context, roomID uint, limit, offset int) ([]models.Message, error) {
	defer observability.TrackQuery("select", "messages")()

	var messages []models.Message
	err := readDB(r.db).WithContext(ctx).Scopes(softdelete.Alive).
		Where("room_id = ?", roomID).
		Order("created_at DESC").
		Limit(clampLimit(limit)).Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

// MarkRead stamps every unread message in the room not sent by the reader.
func (r *chatRepository) MarkRead(ctx context.Context, roomID, readerID uint, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Scopes(softdelete.Alive).
		Where("room_id = ? AND sender_id <> ? AND read_at IS NULL", roomID, readerID).
		UpdateColumn("read_at", at)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *chatRepository) DeleteMessage(ctx context.Context, msg *models.Message) error {
	if err := softdelete.Delete(ctx, r.db, msg); err != nil {
		observability.LifecycleOps.WithLabelValues("message", "delete", "error").Inc()
		return models.NewInternalError(err)
	}
	observability.LifecycleOps.WithLabelValues("message", "delete", "ok").Inc()
	return nil
}

func (r *chatRepository) RestoreMessage(ctx context.Context, msg *models.Message) (bool, error) {
	restored, err := softdelete.Restore(ctx, r.db, msg)
	if err != nil {
		observability.LifecycleOps.WithLabelValues("message", "restore", "error").Inc()
		return false, models.NewInternalError(err)
	}
	outcome := "ok"
	if !restored {
		outcome = "noop"
	}
	observability.LifecycleOps.WithLabelValues("message", "restore", outcome).Inc()
	return restored, nil
}

// PurgeDeadMessages physically removes tombstoned messages older than the
// cutoff. Batch variant of hard delete; messages own nothing so the graph
// walk is trivial.
func (r *chatRepository) PurgeDeadMessages(ctx context.Context, roomID uint, before time.Time) (int64, error) {
	count, err := softdelete.HardDeleteWhere(ctx, r.db, &models.Message{}, func(q *gorm.DB) *gorm.DB {
		return q.Scopes(softdelete.Dead).
			Where("room_id = ? AND created_at < ?", roomID, before)
	})
	if err != nil {
		observability.LifecycleOps.WithLabelValues("message", "hard_delete", "error").Inc()
		return 0, models.NewInternalError(err)
	}
	observability.LifecycleOps.WithLabelValues("message", "hard_delete", "ok").Add(float64(count))
	return count, nil
}
