package models

import "time"

type EventParticipant struct {
	EventID  uint      `gorm:"primaryKey;autoIncrement:false" json:"event_id"`
	UserID   uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}
