package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"meetup_chat/models"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Directory resolves and creates rooms and serves the per-user room list.
type Directory struct {
	store *Store

	// beforeCreate runs between a missed lookup and the insert. Tests use it
	// to lose the creation race on purpose.
	beforeCreate func(ctx context.Context, key string)
}

func NewDirectory(store *Store) *Directory {
	return &Directory{store: store}
}

// RoomSummary is one entry of a user's chat list.
type RoomSummary struct {
	ID             uint            `json:"id"`
	Kind           string          `json:"kind"`
	Name           *string         `json:"name"`
	EventID        *uint           `json:"event_id,omitempty"`
	PeerID         *uint           `json:"peer_id,omitempty"` // other member of a direct room
	LastActivityAt time.Time       `json:"last_activity_at"`
	LastMessage    *models.Message `json:"last_message"`
}

// RoomDetail is a room together with its current member ids.
type RoomDetail struct {
	models.Room
	MemberIDs []uint `json:"member_ids"`
}

// ResolveOrCreateDirect returns the direct room shared by the two users,
// creating it on first contact. Concurrent calls for the same pair converge
// on one room: the loser of the insert race hits the pair-key unique index
// and re-reads the winner's room.
func (d *Directory) ResolveOrCreateDirect(ctx context.Context, requesterID, targetID uint) (*models.Room, error) {
	if targetID == 0 || requesterID == targetID {
		return nil, ErrInvalidTarget
	}

	key := pairKey(requesterID, targetID)

	room, err := d.findDirect(ctx, key, requesterID, targetID)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if d.beforeCreate != nil {
		d.beforeCreate(ctx, key)
	}

	room, err = d.createDirect(ctx, key, requesterID, targetID)
	if err == nil {
		log.Printf("[chat] Direct room %d created for users %s", room.ID, key)
		return room, nil
	}
	if !isDuplicate(err) {
		return nil, err
	}

	log.Printf("[chat] Direct room for users %s created concurrently, re-fetching", key)
	room, err = d.findDirect(ctx, key, requesterID, targetID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("direct room %s exists but its membership is not exactly the pair", key)
	}
	return room, err
}

// findDirect only matches a room whose membership is exactly {a, b}.
func (d *Directory) findDirect(ctx context.Context, key string, a, b uint) (*models.Room, error) {
	var room models.Room
	err := d.store.db.WithContext(ctx).
		Where("kind = ? AND pair_key = ?", models.RoomKindDirect, key).
		Where("(SELECT COUNT(*) FROM room_members rm WHERE rm.room_id = rooms.id) = 2").
		Where("(SELECT COUNT(*) FROM room_members rm WHERE rm.room_id = rooms.id AND rm.user_id IN ?) = 2", []uint{a, b}).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find direct room: %w", err)
	}
	return &room, nil
}

func (d *Directory) createDirect(ctx context.Context, key string, a, b uint) (*models.Room, error) {
	room := models.Room{
		Kind:           models.RoomKindDirect,
		PairKey:        &key,
		LastActivityAt: d.store.now(),
	}

	err := d.store.transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&room).Error; err != nil {
			return err
		}
		members := []models.RoomMember{
			{RoomID: room.ID, UserID: a},
			{RoomID: room.ID, UserID: b},
		}
		return tx.Create(&members).Error
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create direct room: %w", err)
	}
	return &room, nil
}

// CreateGroupRoom creates the chat room of an event with the organizer as its
// only member. It must run on the transaction that creates the event, so an
// event never exists without its room.
func (d *Directory) CreateGroupRoom(tx *gorm.DB, organizerID, eventID uint, displayName string) (*models.Room, error) {
	room := models.Room{
		Kind:           models.RoomKindGroup,
		Name:           &displayName,
		EventID:        &eventID,
		LastActivityAt: d.store.now(),
	}
	if err := tx.Create(&room).Error; err != nil {
		return nil, fmt.Errorf("failed to create group room: %w", err)
	}

	member := models.RoomMember{RoomID: room.ID, UserID: organizerID}
	if err := tx.Create(&member).Error; err != nil {
		return nil, fmt.Errorf("failed to add organizer to group room: %w", err)
	}
	return &room, nil
}

// ListRoomsForUser returns every room the user belongs to, most recently
// active first, each with its latest message. Read-only; safe to poll.
func (d *Directory) ListRoomsForUser(ctx context.Context, userID uint) ([]RoomSummary, error) {
	db := d.store.db.WithContext(ctx)

	var rooms []models.Room
	if err := db.
		Joins("JOIN room_members rm ON rm.room_id = rooms.id AND rm.user_id = ?", userID).
		Order("rooms.last_activity_at DESC").
		Order("rooms.id DESC").
		Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	if len(rooms) == 0 {
		return []RoomSummary{}, nil
	}

	roomIDs := lo.Map(rooms, func(r models.Room, _ int) uint { return r.ID })

	// Latest message per room: no other message in the room sorts after it
	// by (created_at, id).
	var latest []models.Message
	if err := db.
		Where("room_id IN ?", roomIDs).
		Where(`NOT EXISTS (
			SELECT 1 FROM messages newer
			WHERE newer.room_id = messages.room_id
			AND (newer.created_at > messages.created_at
				OR (newer.created_at = messages.created_at AND newer.id > messages.id))
		)`).
		Find(&latest).Error; err != nil {
		return nil, fmt.Errorf("failed to load latest messages: %w", err)
	}
	latestByRoom := lo.KeyBy(latest, func(m models.Message) uint { return m.RoomID })

	directIDs := lo.FilterMap(rooms, func(r models.Room, _ int) (uint, bool) {
		return r.ID, r.Kind == models.RoomKindDirect
	})
	var peers []models.RoomMember
	if len(directIDs) > 0 {
		if err := db.
			Where("room_id IN ? AND user_id <> ?", directIDs, userID).
			Find(&peers).Error; err != nil {
			return nil, fmt.Errorf("failed to load direct room peers: %w", err)
		}
	}
	peerByRoom := lo.KeyBy(peers, func(m models.RoomMember) uint { return m.RoomID })

	return lo.Map(rooms, func(r models.Room, _ int) RoomSummary {
		summary := RoomSummary{
			ID:             r.ID,
			Kind:           r.Kind,
			Name:           r.Name,
			EventID:        r.EventID,
			LastActivityAt: r.LastActivityAt,
		}
		if m, ok := latestByRoom[r.ID]; ok {
			summary.LastMessage = &m
		}
		if p, ok := peerByRoom[r.ID]; ok {
			summary.PeerID = lo.ToPtr(p.UserID)
		}
		return summary
	}), nil
}

// GetRoom returns a room and its members to one of its members.
func (d *Directory) GetRoom(ctx context.Context, roomID, requesterID uint) (*RoomDetail, error) {
	db := d.store.db.WithContext(ctx)

	ok, err := isMember(db, roomID, requesterID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAccessDenied
	}

	var room models.Room
	if err := db.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccessDenied
		}
		return nil, fmt.Errorf("failed to load room: %w", err)
	}

	ids, err := memberIDs(db, roomID)
	if err != nil {
		return nil, err
	}
	return &RoomDetail{Room: room, MemberIDs: ids}, nil
}
