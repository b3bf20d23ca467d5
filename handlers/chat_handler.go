package handlers

import (
	"meetup_chat/internal/chat"
	"meetup_chat/models"
	"meetup_chat/utils"

	"github.com/gofiber/fiber/v2"
)

// ChatHandler serves the conversation endpoints. Clients poll GetMyChats and
// GetChatMessages every few seconds; both are read-only and idempotent, so a
// failed poll is simply retried on the next tick.
type ChatHandler struct {
	Chat *chat.Service
}

func NewChatHandler(svc *chat.Service) *ChatHandler {
	return &ChatHandler{
		Chat: svc,
	}
}

// InitPrivateChatRequest defines payload for starting a chat
type InitPrivateChatRequest struct {
	TargetUserID uint `json:"target_user_id" validate:"required"`
}

// SendMessageRequest defines payload for sending a message.
// An empty body is rejected by the message store with EMPTY_BODY.
type SendMessageRequest struct {
	Body string `json:"body" validate:"max=4096"`
}

// InitPrivateChat gets an existing private room or creates a new one
// POST /api/chats/private
func (h *ChatHandler) InitPrivateChat(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req InitPrivateChatRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	room, err := h.Chat.Directory.ResolveOrCreateDirect(c.UserContext(), userID, req.TargetUserID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse("Chat room ready", room))
}

// GetMyChats returns all chat rooms for the current user with latest message
// GET /api/chats
func (h *ChatHandler) GetMyChats(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	rooms, err := h.Chat.Directory.ListRoomsForUser(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse("Chats retrieved", rooms))
}

// GetChat returns room metadata and members
// GET /api/chats/:roomID
func (h *ChatHandler) GetChat(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	roomID, err := c.ParamsInt("roomID")
	if err != nil || roomID < 1 {
		return badRequest(c, "Invalid room ID")
	}

	room, err := h.Chat.Directory.GetRoom(c.UserContext(), uint(roomID), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse("Chat retrieved", room))
}

// GetChatMessages retrieves every message of a chat room, oldest first
// GET /api/chats/:roomID/messages
func (h *ChatHandler) GetChatMessages(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	roomID, err := c.ParamsInt("roomID")
	if err != nil || roomID < 1 {
		return badRequest(c, "Invalid room ID")
	}

	messages, err := h.Chat.Messages.List(c.UserContext(), uint(roomID), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.SuccessResponse("Messages retrieved", messages))
}

// SendMessage appends a message to a chat room
// POST /api/chats/:roomID/messages
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	roomID, err := c.ParamsInt("roomID")
	if err != nil || roomID < 1 {
		return badRequest(c, "Invalid room ID")
	}

	var req SendMessageRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	msg, err := h.Chat.Messages.Append(c.UserContext(), uint(roomID), userID, req.Body)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse("Message sent", msg))
}
