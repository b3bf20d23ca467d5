package chat

import (
	"context"
	"errors"
	"fmt"
	"log"

	"meetup_chat/models"

	"gorm.io/gorm"
)

// Coordinator keeps an event's participant roster and its group room's
// membership equal. Every change to one is made together with the change to
// the other inside a single transaction holding the event row lock, then the
// room row lock. Calls on the same event serialize; calls on different events
// do not touch each other's rows.
type Coordinator struct {
	store     *Store
	directory *Directory
}

func NewCoordinator(store *Store, directory *Directory) *Coordinator {
	return &Coordinator{store: store, directory: directory}
}

// EventDetail is an event with its current participants.
type EventDetail struct {
	models.Event
	RoomID         uint   `json:"room_id"`
	ParticipantIDs []uint `json:"participant_ids"`
}

// CreateEvent creates an open event with the organizer as its first
// participant, together with the event's group room.
func (c *Coordinator) CreateEvent(ctx context.Context, organizerID uint, title string, maxMembers int) (*models.Event, *models.Room, error) {
	if maxMembers < 1 {
		return nil, nil, ErrInvalidCapacity
	}

	event := models.Event{
		OrganizerID: organizerID,
		Title:       title,
		MaxMembers:  maxMembers,
		Status:      models.EventStatusOpen,
	}
	var room *models.Room

	err := c.store.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to create event: %w", err)
		}
		organizer := models.EventParticipant{EventID: event.ID, UserID: organizerID}
		if err := tx.Create(&organizer).Error; err != nil {
			return fmt.Errorf("failed to add organizer to event: %w", err)
		}

		var err error
		room, err = c.directory.CreateGroupRoom(tx, organizerID, event.ID, title)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	log.Printf("[event] Event %d created by user %d with room %d (max %d)", event.ID, organizerID, room.ID, maxMembers)
	return &event, room, nil
}

// Join adds the user to the event roster and to the event's room.
// Checks run in order: NotFound, Closed, Full, AlreadyJoined.
func (c *Coordinator) Join(ctx context.Context, userID, eventID uint) error {
	err := c.store.transaction(ctx, func(tx *gorm.DB) error {
		event, err := lockEvent(tx, eventID)
		if err != nil {
			return err
		}
		if event.Status != models.EventStatusOpen {
			return ErrClosed
		}
		if event.CurrentMembers >= event.MaxMembers {
			return ErrFull
		}

		joined, err := isParticipant(tx, eventID, userID)
		if err != nil {
			return err
		}
		if joined {
			return ErrAlreadyJoined
		}

		room, err := lockEventRoom(tx, eventID)
		if err != nil {
			return err
		}

		participant := models.EventParticipant{EventID: eventID, UserID: userID}
		if err := tx.Create(&participant).Error; err != nil {
			if isDuplicate(err) {
				return ErrAlreadyJoined
			}
			return fmt.Errorf("failed to add participant: %w", err)
		}

		res := tx.Model(&models.Event{}).
			Where("id = ? AND current_members < max_members", eventID).
			Update("current_members", gorm.Expr("current_members + 1"))
		if res.Error != nil {
			return fmt.Errorf("failed to increment member count: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrFull
		}

		member := models.RoomMember{RoomID: room.ID, UserID: userID}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("failed to add room member: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[event] User %d joined event %d", userID, eventID)
	return nil
}

// Leave removes the user from the event roster and from the event's room.
// Checks run in order: NotFound, NotParticipant, OrganizerCannotLeave.
func (c *Coordinator) Leave(ctx context.Context, userID, eventID uint) error {
	err := c.store.transaction(ctx, func(tx *gorm.DB) error {
		event, err := lockEvent(tx, eventID)
		if err != nil {
			return err
		}

		joined, err := isParticipant(tx, eventID, userID)
		if err != nil {
			return err
		}
		if !joined {
			return ErrNotParticipant
		}
		if event.OrganizerID == userID {
			return ErrOrganizerCannotLeave
		}

		room, err := lockEventRoom(tx, eventID)
		if err != nil {
			return err
		}

		res := tx.Where("event_id = ? AND user_id = ?", eventID, userID).
			Delete(&models.EventParticipant{})
		if res.Error != nil {
			return fmt.Errorf("failed to remove participant: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotParticipant
		}

		if err := tx.Model(&models.Event{}).
			Where("id = ? AND current_members > 0", eventID).
			Update("current_members", gorm.Expr("current_members - 1")).Error; err != nil {
			return fmt.Errorf("failed to decrement member count: %w", err)
		}

		if err := tx.Where("room_id = ? AND user_id = ?", room.ID, userID).
			Delete(&models.RoomMember{}).Error; err != nil {
			return fmt.Errorf("failed to remove room member: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[event] User %d left event %d", userID, eventID)
	return nil
}

// SetStatus opens or closes an event. Only the organizer may do this.
func (c *Coordinator) SetStatus(ctx context.Context, userID, eventID uint, status string) (*models.Event, error) {
	if status != models.EventStatusOpen && status != models.EventStatusClosed {
		return nil, ErrInvalidStatus
	}

	var event *models.Event
	err := c.store.transaction(ctx, func(tx *gorm.DB) error {
		var err error
		event, err = lockEvent(tx, eventID)
		if err != nil {
			return err
		}
		if event.OrganizerID != userID {
			return ErrNotOrganizer
		}
		if event.Status == status {
			return nil
		}
		if err := tx.Model(event).Update("status", status).Error; err != nil {
			return fmt.Errorf("failed to update event status: %w", err)
		}
		event.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[event] Event %d is now %s", eventID, status)
	return event, nil
}

// GetEvent returns the event, its room id and its participants. The event row
// is share-locked so a concurrent join or leave cannot land between the reads.
func (c *Coordinator) GetEvent(ctx context.Context, eventID uint) (*EventDetail, error) {
	var detail EventDetail
	err := c.store.transaction(ctx, func(tx *gorm.DB) error {
		if err := forShare(tx).First(&detail.Event, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load event: %w", err)
		}

		var room models.Room
		if err := tx.Where("event_id = ?", eventID).First(&room).Error; err != nil {
			return fmt.Errorf("failed to load event room: %w", err)
		}
		detail.RoomID = room.ID

		if err := tx.Model(&models.EventParticipant{}).
			Where("event_id = ?", eventID).
			Order("user_id ASC").
			Pluck("user_id", &detail.ParticipantIDs).Error; err != nil {
			return fmt.Errorf("failed to load participants: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func lockEvent(tx *gorm.DB, eventID uint) (*models.Event, error) {
	var event models.Event
	if err := forUpdate(tx).First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock event: %w", err)
	}
	return &event, nil
}

func lockEventRoom(tx *gorm.DB, eventID uint) (*models.Room, error) {
	var room models.Room
	if err := forUpdate(tx).Where("event_id = ?", eventID).First(&room).Error; err != nil {
		return nil, fmt.Errorf("failed to lock room of event %d: %w", eventID, err)
	}
	return &room, nil
}

func isParticipant(tx *gorm.DB, eventID, userID uint) (bool, error) {
	var count int64
	if err := tx.Model(&models.EventParticipant{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check participation: %w", err)
	}
	return count > 0, nil
}
