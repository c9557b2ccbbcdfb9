package models

import (
	"time"

	"taskhive/internal/softdelete"

	"gorm.io/datatypes"
)

// ChatRoom is the per-order conversation between client and provider.
type ChatRoom struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	Order      *Order    `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	ClientID   uint      `gorm:"not null;index" json:"client_id"`
	ProviderID uint      `gorm:"not null;index" json:"provider_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	softdelete.Tombstone

	Messages []Message `gorm:"foreignKey:RoomID" json:"messages,omitempty"`
}

// TableName specifies the table name for GORM.
func (ChatRoom) TableName() string {
	return "chat_rooms"
}

// Message is a single chat message inside a room. Metadata carries
// attachment descriptors (file URLs, image URLs) as JSON.
type Message struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	RoomID    uint           `gorm:"not null;index" json:"room_id"`
	Room      *ChatRoom      `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	SenderID  uint           `gorm:"not null;index" json:"sender_id"`
	Sender    *User          `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	softdelete.Tombstone
}
