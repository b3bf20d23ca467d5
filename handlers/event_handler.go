package handlers

import (
	"meetup_chat/internal/chat"
	"meetup_chat/models"
	"meetup_chat/utils"

	"github.com/gofiber/fiber/v2"
)

type EventHandler struct {
	Chat *chat.Service
}

func NewEventHandler(svc *chat.Service) *EventHandler {
	return &EventHandler{Chat: svc}
}

// CreateEventRequest defines payload for creating an event with its group chat
type CreateEventRequest struct {
	Title      string `json:"title" validate:"required,max=150"`
	MaxMembers int    `json:"max_members" validate:"required,min=1,max=10000"`
}

// UpdateEventStatusRequest opens or closes an event
type UpdateEventStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open closed"`
}

type createEventResponse struct {
	Event  *models.Event `json:"event"`
	RoomID uint          `json:"room_id"`
}

func eventID(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return 0, false
	}
	return uint(id), true
}

// CreateEvent - POST /api/events
func (h *EventHandler) CreateEvent(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req CreateEventRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	event, room, err := h.Chat.Coordinator.CreateEvent(c.UserContext(), userID, req.Title, req.MaxMembers)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.SuccessResponse("Event created", createEventResponse{
		Event:  event,
		RoomID: room.ID,
	}))
}

// GetEvent - GET /api/events/:id
func (h *EventHandler) GetEvent(c *fiber.Ctx) error {
	id, ok := eventID(c)
	if !ok {
		return badRequest(c, "Invalid event ID")
	}

	event, err := h.Chat.Coordinator.GetEvent(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse("Event retrieved", event))
}

// UpdateEventStatus - PATCH /api/events/:id/status
func (h *EventHandler) UpdateEventStatus(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	id, ok := eventID(c)
	if !ok {
		return badRequest(c, "Invalid event ID")
	}

	var req UpdateEventStatusRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	event, err := h.Chat.Coordinator.SetStatus(c.UserContext(), userID, id, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse("Event status updated", event))
}

// JoinEvent - POST /api/events/:id/join
func (h *EventHandler) JoinEvent(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	id, ok := eventID(c)
	if !ok {
		return badRequest(c, "Invalid event ID")
	}

	if err := h.Chat.Coordinator.Join(c.UserContext(), userID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse("Joined event", fiber.Map{"event_id": id}))
}

// LeaveEvent - POST /api/events/:id/leave
func (h *EventHandler) LeaveEvent(c *fiber.Ctx) error {
	userID, ok := utils.CurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	id, ok := eventID(c)
	if !ok {
		return badRequest(c, "Invalid event ID")
	}

	if err := h.Chat.Coordinator.Leave(c.UserContext(), userID, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(models.SuccessResponse("Left event", fiber.Map{"event_id": id}))
}
