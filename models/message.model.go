package models

import (
	"time"
)

// Message is immutable once stored. Within a room, messages are ordered by
// (CreatedAt, ID); idx_messages_room_order backs that scan.
type Message struct {
	ID       uint `gorm:"primaryKey;index:idx_messages_room_order,priority:3" json:"id"`
	RoomID   uint `gorm:"not null;index:idx_messages_room_order,priority:1" json:"room_id"`
	SenderID uint `gorm:"index;not null" json:"sender_id"`

	Body string `gorm:"type:text;not null" json:"body"`

	CreatedAt time.Time `gorm:"not null;index:idx_messages_room_order,priority:2" json:"created_at"`
}
