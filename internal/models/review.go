package models

import (
	"time"

	"taskhive/internal/softdelete"
)

// Review is a client's rating of a completed order. One review per order
// per author.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index:idx_reviews_order_author,unique" json:"order_id"`
	Order     *Order    `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	AuthorID  uint      `gorm:"not null;index:idx_reviews_order_author,unique" json:"author_id"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Rating    int       `gorm:"not null" json:"rating"` // 1..5
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	softdelete.Tombstone
}
