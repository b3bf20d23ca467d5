package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"meetup_chat/internal/chat"
	"meetup_chat/internal/testdb"
	"meetup_chat/models"
	"meetup_chat/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func (e envelope) code(t *testing.T) string {
	t.Helper()
	var detail models.ErrorDetail
	require.NoError(t, json.Unmarshal(e.Error, &detail))
	return detail.Code
}

func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	SetupRoutes(app, chat.NewService(testdb.Open(t)), testSecret, nil)
	return app
}

func call(t *testing.T, app *fiber.App, method, path string, userID uint, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		token, err := utils.GenerateToken(testSecret, userID, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestRoutes_RequireToken(t *testing.T) {
	app := setupApp(t)

	status, env := call(t, app, fiber.MethodGet, "/api/chats", 0, nil)
	require.Equal(t, fiber.StatusUnauthorized, status)
	require.Equal(t, "UNAUTHORIZED", env.code(t))
}

func TestChatEndpoints(t *testing.T) {
	req := require.New(t)
	app := setupApp(t)

	const alice, bob, eve uint = 1, 2, 3

	status, env := call(t, app, fiber.MethodPost, "/api/chats/private", alice, fiber.Map{"target_user_id": bob})
	req.Equal(fiber.StatusOK, status)
	var room models.Room
	req.NoError(json.Unmarshal(env.Data, &room))
	req.Equal(models.RoomKindDirect, room.Kind)

	status, env = call(t, app, fiber.MethodPost, "/api/chats/private", bob, fiber.Map{"target_user_id": alice})
	req.Equal(fiber.StatusOK, status)
	var same models.Room
	req.NoError(json.Unmarshal(env.Data, &same))
	req.Equal(room.ID, same.ID)

	status, env = call(t, app, fiber.MethodPost, "/api/chats/private", alice, fiber.Map{"target_user_id": alice})
	req.Equal(fiber.StatusBadRequest, status)
	req.Equal("INVALID_TARGET", env.code(t))

	status, env = call(t, app, fiber.MethodPost, "/api/chats/private", alice, fiber.Map{})
	req.Equal(fiber.StatusBadRequest, status)
	req.False(env.Success)

	messagesPath := fmt.Sprintf("/api/chats/%d/messages", room.ID)

	status, _ = call(t, app, fiber.MethodPost, messagesPath, alice, fiber.Map{"body": "hi"})
	req.Equal(fiber.StatusCreated, status)

	status, env = call(t, app, fiber.MethodPost, messagesPath, alice, fiber.Map{"body": "   "})
	req.Equal(fiber.StatusBadRequest, status)
	req.Equal("EMPTY_BODY", env.code(t))

	status, env = call(t, app, fiber.MethodPost, messagesPath, eve, fiber.Map{"body": "sneaky"})
	req.Equal(fiber.StatusForbidden, status)
	req.Equal("ACCESS_DENIED", env.code(t))

	status, env = call(t, app, fiber.MethodGet, messagesPath, bob, nil)
	req.Equal(fiber.StatusOK, status)
	var messages []models.Message
	req.NoError(json.Unmarshal(env.Data, &messages))
	req.Len(messages, 1)
	req.Equal("hi", messages[0].Body)
	req.Equal(alice, messages[0].SenderID)

	status, env = call(t, app, fiber.MethodGet, messagesPath, eve, nil)
	req.Equal(fiber.StatusForbidden, status)
	req.Equal("ACCESS_DENIED", env.code(t))

	status, env = call(t, app, fiber.MethodGet, "/api/chats", bob, nil)
	req.Equal(fiber.StatusOK, status)
	var summaries []chat.RoomSummary
	req.NoError(json.Unmarshal(env.Data, &summaries))
	req.Len(summaries, 1)
	req.Equal(room.ID, summaries[0].ID)
	req.Equal("hi", summaries[0].LastMessage.Body)
	req.Equal(alice, *summaries[0].PeerID)

	status, env = call(t, app, fiber.MethodGet, fmt.Sprintf("/api/chats/%d", room.ID), alice, nil)
	req.Equal(fiber.StatusOK, status)
	var detail chat.RoomDetail
	req.NoError(json.Unmarshal(env.Data, &detail))
	req.Equal([]uint{alice, bob}, detail.MemberIDs)

	status, env = call(t, app, fiber.MethodGet, "/api/chats/abc/messages", alice, nil)
	req.Equal(fiber.StatusBadRequest, status)
	req.Equal("VALIDATION_FAILED", env.code(t))
}

func TestEventEndpoints(t *testing.T) {
	req := require.New(t)
	app := setupApp(t)

	const organizer, u1, u2 uint = 10, 11, 12

	status, env := call(t, app, fiber.MethodPost, "/api/events", organizer, fiber.Map{"title": "Run club", "max_members": 0})
	req.Equal(fiber.StatusBadRequest, status)
	req.False(env.Success)

	status, env = call(t, app, fiber.MethodPost, "/api/events", organizer, fiber.Map{"title": "Run club", "max_members": 1})
	req.Equal(fiber.StatusCreated, status)
	var created struct {
		Event  models.Event `json:"event"`
		RoomID uint         `json:"room_id"`
	}
	req.NoError(json.Unmarshal(env.Data, &created))
	req.NotZero(created.RoomID)

	base := fmt.Sprintf("/api/events/%d", created.Event.ID)

	status, _ = call(t, app, fiber.MethodPost, base+"/join", u1, nil)
	req.Equal(fiber.StatusOK, status)

	status, env = call(t, app, fiber.MethodPost, base+"/join", u1, nil)
	req.Equal(fiber.StatusConflict, status)
	req.Equal("FULL", env.code(t))

	status, env = call(t, app, fiber.MethodPost, base+"/join", u2, nil)
	req.Equal(fiber.StatusConflict, status)
	req.Equal("FULL", env.code(t))

	status, env = call(t, app, fiber.MethodPost, base+"/leave", organizer, nil)
	req.Equal(fiber.StatusConflict, status)
	req.Equal("ORGANIZER_CANNOT_LEAVE", env.code(t))

	status, env = call(t, app, fiber.MethodPost, base+"/leave", u2, nil)
	req.Equal(fiber.StatusConflict, status)
	req.Equal("NOT_PARTICIPANT", env.code(t))

	// The new participant can talk in the event room right away.
	status, _ = call(t, app, fiber.MethodPost, fmt.Sprintf("/api/chats/%d/messages", created.RoomID), u1, fiber.Map{"body": "see you there"})
	req.Equal(fiber.StatusCreated, status)

	status, env = call(t, app, fiber.MethodGet, base, u2, nil)
	req.Equal(fiber.StatusOK, status)
	var detail chat.EventDetail
	req.NoError(json.Unmarshal(env.Data, &detail))
	req.Equal([]uint{organizer, u1}, detail.ParticipantIDs)
	req.Equal(created.RoomID, detail.RoomID)

	status, env = call(t, app, fiber.MethodPatch, base+"/status", u1, fiber.Map{"status": "closed"})
	req.Equal(fiber.StatusForbidden, status)
	req.Equal("NOT_ORGANIZER", env.code(t))

	status, _ = call(t, app, fiber.MethodPatch, base+"/status", organizer, fiber.Map{"status": "archived"})
	req.Equal(fiber.StatusBadRequest, status)

	status, _ = call(t, app, fiber.MethodPost, base+"/leave", u1, nil)
	req.Equal(fiber.StatusOK, status)

	status, _ = call(t, app, fiber.MethodPatch, base+"/status", organizer, fiber.Map{"status": "closed"})
	req.Equal(fiber.StatusOK, status)

	status, env = call(t, app, fiber.MethodPost, base+"/join", u2, nil)
	req.Equal(fiber.StatusConflict, status)
	req.Equal("CLOSED", env.code(t))

	status, env = call(t, app, fiber.MethodPost, "/api/events/9999/join", u2, nil)
	req.Equal(fiber.StatusNotFound, status)
	req.Equal("NOT_FOUND", env.code(t))

	status, env = call(t, app, fiber.MethodPost, fmt.Sprintf("/api/chats/%d/messages", created.RoomID), u1, fiber.Map{"body": "still here?"})
	req.Equal(fiber.StatusForbidden, status)
	req.Equal("ACCESS_DENIED", env.code(t))
}

func TestHealth(t *testing.T) {
	app := setupApp(t)

	status, env := call(t, app, fiber.MethodGet, "/health", 0, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.True(t, env.Success)
	require.Equal(t, "API is healthy", env.Message)
	require.JSONEq(t, `{"database":"up"}`, string(env.Data))
}
