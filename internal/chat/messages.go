package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"meetup_chat/models"

	"gorm.io/gorm"
)

// MessageStore is the append-only message log of every room.
type MessageStore struct {
	store *Store
}

func NewMessageStore(store *Store) *MessageStore {
	return &MessageStore{store: store}
}

// Append stores a message from a current member of the room and bumps the
// room's last activity. Membership is checked on every call.
//
// Appends to one room serialize on the room row, and a message's timestamp is
// never earlier than the room's last activity, so the (created_at, id) order
// matches commit order and an earlier listing is always a prefix of a later one.
func (s *MessageStore) Append(ctx context.Context, roomID, senderID uint, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}

	var msg models.Message
	err := s.store.transaction(ctx, func(tx *gorm.DB) error {
		var room models.Room
		if err := forUpdate(tx).First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccessDenied
			}
			return fmt.Errorf("failed to lock room: %w", err)
		}

		ok, err := isMember(tx, roomID, senderID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAccessDenied
		}

		at := s.store.now()
		if at.Before(room.LastActivityAt) {
			at = room.LastActivityAt
		}

		msg = models.Message{
			RoomID:    roomID,
			SenderID:  senderID,
			Body:      body,
			CreatedAt: at,
		}
		if err := tx.Create(&msg).Error; err != nil {
			return fmt.Errorf("failed to save message: %w", err)
		}

		if err := tx.Model(&models.Room{}).
			Where("id = ?", roomID).
			Update("last_activity_at", at).Error; err != nil {
			return fmt.Errorf("failed to update room activity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// List returns every message of the room, oldest first.
func (s *MessageStore) List(ctx context.Context, roomID, requesterID uint) ([]models.Message, error) {
	db := s.store.db.WithContext(ctx)

	ok, err := isMember(db, roomID, requesterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAccessDenied
	}

	messages := []models.Message{}
	if err := db.
		Where("room_id = ?", roomID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return messages, nil
}
