package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"meetup_chat/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the data-access handle shared by the Directory, the Coordinator
// and the MessageStore.
//
// The gorm.DB must be opened with TranslateError enabled so that unique
// violations come back as gorm.ErrDuplicatedKey.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStore wraps an open database connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db: db,
		now: func() time.Time {
			// Postgres keeps microseconds; truncating keeps what we compare
			// in memory equal to what we read back.
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

// DB exposes the underlying connection for health checks and migrations.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// transaction runs fn as one atomic unit. Sentinel errors returned by fn are
// passed through untouched; the transaction is rolled back for any error.
func (s *Store) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

// forUpdate takes a row lock on the selected rows. SQLite has no row locks
// and the driver drops the clause; there the single connection serializes
// writers instead.
func forUpdate(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// forShare takes a shared row lock: it waits for writers holding forUpdate and
// keeps them out until the transaction ends. Dropped on SQLite like forUpdate.
func forShare(tx *gorm.DB) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "SHARE"})
}

func isMember(db *gorm.DB, roomID, userID uint) (bool, error) {
	var count int64
	err := db.Model(&models.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check room membership: %w", err)
	}
	return count > 0, nil
}

func memberIDs(db *gorm.DB, roomID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&models.RoomMember{}).
		Where("room_id = ?", roomID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load room members: %w", err)
	}
	return ids, nil
}

// pairKey normalizes an unordered pair of users, so (a, b) and (b, a)
// map to the same direct room.
func pairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
