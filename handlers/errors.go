package handlers

import (
	"errors"
	"log"

	"meetup_chat/internal/chat"
	"meetup_chat/models"

	"github.com/gofiber/fiber/v2"
)

type outcome struct {
	status int
	code   string
}

// Every business outcome gets its own code so clients can react precisely,
// e.g. disable the join button on FULL.
var outcomes = map[error]outcome{
	chat.ErrInvalidTarget:        {fiber.StatusBadRequest, "INVALID_TARGET"},
	chat.ErrEmptyBody:            {fiber.StatusBadRequest, "EMPTY_BODY"},
	chat.ErrInvalidCapacity:      {fiber.StatusBadRequest, "INVALID_CAPACITY"},
	chat.ErrInvalidStatus:        {fiber.StatusBadRequest, "INVALID_STATUS"},
	chat.ErrAccessDenied:         {fiber.StatusForbidden, "ACCESS_DENIED"},
	chat.ErrNotOrganizer:         {fiber.StatusForbidden, "NOT_ORGANIZER"},
	chat.ErrNotFound:             {fiber.StatusNotFound, "NOT_FOUND"},
	chat.ErrClosed:               {fiber.StatusConflict, "CLOSED"},
	chat.ErrFull:                 {fiber.StatusConflict, "FULL"},
	chat.ErrAlreadyJoined:        {fiber.StatusConflict, "ALREADY_JOINED"},
	chat.ErrNotParticipant:       {fiber.StatusConflict, "NOT_PARTICIPANT"},
	chat.ErrOrganizerCannotLeave: {fiber.StatusConflict, "ORGANIZER_CANNOT_LEAVE"},
}

// respondError maps a core error to its response. Anything that is not a
// known outcome is a storage fault: logged, and reported as retryable.
func respondError(c *fiber.Ctx, err error) error {
	for target, o := range outcomes {
		if errors.Is(err, target) {
			return c.Status(o.status).JSON(models.ErrorResponse(err.Error(), models.ErrorDetail{
				Code:    o.code,
				Message: err.Error(),
			}))
		}
	}

	log.Printf("[chat] %s %s failed: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse(
		"Temporary storage failure, please retry",
		models.ErrorDetail{Code: "STORAGE_FAILURE", Message: "Temporary storage failure, please retry"},
	))
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse(message, models.ErrorDetail{
		Code:    "VALIDATION_FAILED",
		Message: message,
	}))
}
