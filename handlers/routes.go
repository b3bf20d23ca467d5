package handlers

import (
	"meetup_chat/internal/chat"
	"meetup_chat/models"
	"meetup_chat/utils"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes mounts the API. pollThrottle guards the two polling reads and
// may be nil when throttling is disabled.
func SetupRoutes(app *fiber.App, svc *chat.Service, jwtSecret string, pollThrottle fiber.Handler) {
	// Health Check Endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := svc.Store.DB().DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse("Database unavailable", err.Error()))
		}
		return c.JSON(models.SuccessResponse("API is healthy", fiber.Map{"database": "up"}))
	})

	if pollThrottle == nil {
		pollThrottle = func(c *fiber.Ctx) error { return c.Next() }
	}

	chatHandler := NewChatHandler(svc)
	eventHandler := NewEventHandler(svc)

	api := app.Group("/api", utils.AuthMiddleware(jwtSecret))

	chats := api.Group("/chats")
	chats.Post("/private", chatHandler.InitPrivateChat)
	chats.Get("/", pollThrottle, chatHandler.GetMyChats)
	chats.Get("/:roomID", chatHandler.GetChat)
	chats.Get("/:roomID/messages", pollThrottle, chatHandler.GetChatMessages)
	chats.Post("/:roomID/messages", chatHandler.SendMessage)

	events := api.Group("/events")
	events.Post("/", eventHandler.CreateEvent)
	events.Get("/:id", eventHandler.GetEvent)
	events.Patch("/:id/status", eventHandler.UpdateEventStatus)
	events.Post("/:id/join", eventHandler.JoinEvent)
	events.Post("/:id/leave", eventHandler.LeaveEvent)
}
