package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"meetup_chat/models"

	"github.com/stretchr/testify/require"
)

func bodies(messages []models.Message) []string {
	out := make([]string, 0, len(messages))
	for _, m := range messages {
		out = append(out, m.Body)
	}
	return out
}

func TestAppend_Rejections(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	room, err := svc.Directory.ResolveOrCreateDirect(ctx, 1, 2)
	require.NoError(t, err)

	tests := []struct {
		name     string
		roomID   uint
		senderID uint
		body     string
		want     error
	}{
		{"empty body", room.ID, 1, "", ErrEmptyBody},
		{"whitespace body", room.ID, 1, " \n\t ", ErrEmptyBody},
		{"empty body from non-member", room.ID, 3, "", ErrEmptyBody},
		{"non-member", room.ID, 3, "let me in", ErrAccessDenied},
		{"unknown room", 999, 1, "hello?", ErrAccessDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Messages.Append(ctx, tt.roomID, tt.senderID, tt.body)
			require.ErrorIs(t, err, tt.want)
		})
	}

	messages, err := svc.Messages.List(ctx, room.ID, 1)
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestList_AccessDenied(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	room, err := svc.Directory.ResolveOrCreateDirect(ctx, 1, 2)
	require.NoError(t, err)

	_, err = svc.Messages.List(ctx, room.ID, 3)
	require.ErrorIs(t, err, ErrAccessDenied)
}

func TestDirectConversation_EndToEnd(t *testing.T) {
	req := require.New(t)
	svc := setupService(t)
	ctx := context.Background()

	const alice, bob uint = 1, 2

	var wg sync.WaitGroup
	var aliceRoom, bobRoom *models.Room
	var aliceErr, bobErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		aliceRoom, aliceErr = svc.Directory.ResolveOrCreateDirect(ctx, alice, bob)
	}()
	go func() {
		defer wg.Done()
		bobRoom, bobErr = svc.Directory.ResolveOrCreateDirect(ctx, bob, alice)
	}()
	wg.Wait()
	req.NoError(aliceErr)
	req.NoError(bobErr)
	req.Equal(aliceRoom.ID, bobRoom.ID)

	_, err := svc.Messages.Append(ctx, aliceRoom.ID, alice, "hi")
	req.NoError(err)

	seenByBob, err := svc.Messages.List(ctx, bobRoom.ID, bob)
	req.NoError(err)
	req.Len(seenByBob, 1)
	req.Equal("hi", seenByBob[0].Body)
	req.Equal(alice, seenByBob[0].SenderID)

	_, err = svc.Messages.Append(ctx, bobRoom.ID, bob, "hey")
	req.NoError(err)

	seenByAlice, err := svc.Messages.List(ctx, aliceRoom.ID, alice)
	req.NoError(err)
	req.Equal([]string{"hi", "hey"}, bodies(seenByAlice))
	req.Equal([]uint{alice, bob}, []uint{seenByAlice[0].SenderID, seenByAlice[1].SenderID})
}

func TestAppend_TrimsBodyAndBumpsActivity(t *testing.T) {
	req := require.New(t)
	svc := setupService(t)
	svc.Store.now = tickingClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	room, err := svc.Directory.ResolveOrCreateDirect(ctx, 1, 2)
	req.NoError(err)

	msg, err := svc.Messages.Append(ctx, room.ID, 1, "  padded  ")
	req.NoError(err)
	req.Equal("padded", msg.Body)
	req.NotZero(msg.ID)

	var stored models.Room
	req.NoError(svc.Store.db.First(&stored, room.ID).Error)
	req.True(stored.LastActivityAt.Equal(msg.CreatedAt))
	req.True(stored.LastActivityAt.After(room.LastActivityAt))
}

func TestList_OrderIsStable(t *testing.T) {
	req := require.New(t)
	svc := setupService(t)
	ctx := context.Background()

	// The clock runs backwards: timestamps must still never go before the
	// room's last activity, so later appends keep sorting after earlier ones.
	base := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	calls := 0
	svc.Store.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return base.Add(-time.Duration(calls) * time.Second)
	}

	room, err := svc.Directory.ResolveOrCreateDirect(ctx, 1, 2)
	req.NoError(err)

	for _, body := range []string{"one", "two", "three"} {
		_, err := svc.Messages.Append(ctx, room.ID, 1, body)
		req.NoError(err)
	}

	first, err := svc.Messages.List(ctx, room.ID, 2)
	req.NoError(err)
	second, err := svc.Messages.List(ctx, room.ID, 1)
	req.NoError(err)
	req.Equal(bodies(first), bodies(second))
	req.Equal([]string{"one", "two", "three"}, bodies(first))

	_, err = svc.Messages.Append(ctx, room.ID, 2, "four")
	req.NoError(err)

	third, err := svc.Messages.List(ctx, room.ID, 2)
	req.NoError(err)
	req.Len(third, 4)
	for i, m := range first {
		req.Equal(m.ID, third[i].ID, "previously listed prefix must not be reordered")
	}
	req.Equal("four", third[3].Body)
}

func TestList_ConcurrentAppendsAreTotallyOrdered(t *testing.T) {
	req := require.New(t)
	svc := setupService(t)
	ctx := context.Background()

	room, err := svc.Directory.ResolveOrCreateDirect(ctx, 1, 2)
	req.NoError(err)

	errs := make([]error, 20)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sender := uint(1 + i%2)
			_, errs[i] = svc.Messages.Append(ctx, room.ID, sender, "msg")
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		req.NoError(err)
	}

	messages, err := svc.Messages.List(ctx, room.ID, 1)
	req.NoError(err)
	req.Len(messages, 20)
	for i := 1; i < len(messages); i++ {
		prev, cur := messages[i-1], messages[i]
		req.False(cur.CreatedAt.Before(prev.CreatedAt))
		if cur.CreatedAt.Equal(prev.CreatedAt) {
			req.Greater(cur.ID, prev.ID)
		}
	}
}

func TestGroupRoomAccessFollowsParticipation(t *testing.T) {
	req := require.New(t)
	svc := setupService(t)
	ctx := context.Background()

	const organizer, guest uint = 1, 2

	event, room, err := svc.Coordinator.CreateEvent(ctx, organizer, "Climbing", 4)
	req.NoError(err)

	_, err = svc.Messages.Append(ctx, room.ID, guest, "before joining")
	req.ErrorIs(err, ErrAccessDenied)

	req.NoError(svc.Coordinator.Join(ctx, guest, event.ID))
	_, err = svc.Messages.Append(ctx, room.ID, guest, "joined")
	req.NoError(err)
	messages, err := svc.Messages.List(ctx, room.ID, guest)
	req.NoError(err)
	req.Equal([]string{"joined"}, bodies(messages))

	req.NoError(svc.Coordinator.Leave(ctx, guest, event.ID))
	_, err = svc.Messages.Append(ctx, room.ID, guest, "after leaving")
	req.ErrorIs(err, ErrAccessDenied)
	_, err = svc.Messages.List(ctx, room.ID, guest)
	req.ErrorIs(err, ErrAccessDenied)

	rooms, err := svc.Directory.ListRoomsForUser(ctx, guest)
	req.NoError(err)
	req.Empty(rooms)

	messages, err = svc.Messages.List(ctx, room.ID, organizer)
	req.NoError(err)
	req.Equal([]string{"joined"}, bodies(messages))
}
