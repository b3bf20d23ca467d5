package models

import (
	"time"
)

const (
	EventStatusOpen   = "open"
	EventStatusClosed = "closed"
)

// Event is the participation roster backing a group room. The organizer is a
// participant but does not count against MaxMembers.
type Event struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrganizerID uint   `gorm:"index;not null" json:"organizer_id"`
	Title       string `gorm:"size:150;not null" json:"title"`

	MaxMembers     int    `gorm:"not null" json:"max_members"`
	CurrentMembers int    `gorm:"not null;default:0" json:"current_members"`
	Status         string `gorm:"size:10;not null;default:'open'" json:"status"` // 'open', 'closed'

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relasi
	Participants []EventParticipant `json:"participants,omitempty"`
}
