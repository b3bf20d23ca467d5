package chat

import (
	"testing"

	"meetup_chat/internal/testdb"
)

// The tests below run the concurrency checks against Postgres, where callers
// really overlap and the row locks are taken. They are skipped unless
// DATABASE_URL is set.

func setupPostgresService(t *testing.T) *Service {
	t.Helper()
	return NewService(testdb.OpenPostgres(t))
}

func TestPostgres_ConcurrentJoinersNeverExceedCapacity(t *testing.T) {
	requireJoinersCapped(t, setupPostgresService(t))
}

func TestPostgres_ConcurrentChurnKeepsRostersEqual(t *testing.T) {
	requireChurnKeepsRostersEqual(t, setupPostgresService(t))
}

func TestPostgres_ConcurrentDirectCallsConverge(t *testing.T) {
	requireDirectConverges(t, setupPostgresService(t))
}
