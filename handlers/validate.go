package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"meetup_chat/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseBody decodes the JSON body into req and validates its tags. On failure
// the 400 response has already been written and ok is false.
func parseBody(c *fiber.Ctx, req interface{}) (ok bool, err error) {
	if err := c.BodyParser(req); err != nil {
		return false, badRequest(c, "Invalid input")
	}

	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return false, badRequest(c, "Invalid input")
		}

		details := models.ValidationErrors{}
		for _, fe := range fieldErrs {
			details.Errors = append(details.Errors, models.ErrorDetail{
				Code:    "VALIDATION_FAILED",
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed on '%s' rule", fe.Tag()),
			})
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse("Validation failed", details))
	}
	return true, nil
}
