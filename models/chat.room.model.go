package models

import (
	"time"
)

const (
	RoomKindDirect = "direct"
	RoomKindGroup  = "group"
)

type Room struct {
	ID   uint    `gorm:"primaryKey" json:"id"`
	Kind string  `gorm:"size:10;not null;index" json:"kind"` // 'direct' (1-on-1) or 'group' (event chat)
	Name *string `gorm:"size:100" json:"name"`               // Nullable. Only set for group rooms.

	// Link to the event this room belongs to. Nil for direct rooms.
	EventID *uint `gorm:"uniqueIndex" json:"event_id,omitempty"`

	// Normalized "low:high" user pair for direct rooms. The unique index is
	// what stops two concurrent requests from creating two rooms for one pair.
	PairKey *string `gorm:"size:64;uniqueIndex" json:"-"`

	// Bumped on every accepted message, drives the chat list order.
	LastActivityAt time.Time `gorm:"index;not null" json:"last_activity_at"`

	CreatedAt time.Time `json:"created_at"`

	// Relasi
	Members  []RoomMember `json:"-"`
	Messages []Message    `json:"-"`
}
