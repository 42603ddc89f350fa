package handlers

import (
	"errors"
	"fmt"

	"giftmarket/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindValidation:
		return fiber.StatusBadRequest
	case services.KindUnauthorized:
		return fiber.StatusUnauthorized
	case services.KindForbidden:
		return fiber.StatusForbidden
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindConflict, services.KindWarning:
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// respondError writes err in the {"message", "error"} shape with a status
// chosen by its kind. Internal details are logged, not returned.
func respondError(c *fiber.Ctx, log *zap.Logger, message string, err error) error {
	kind := services.KindOf(err)
	status := statusFor(kind)
	body := fiber.Map{"message": message}

	var serr *services.Error
	if kind == services.KindInternal || !errors.As(err, &serr) {
		log.Error(message, zap.String("path", c.Path()), zap.Error(err))
		body["error"] = "internal server error"
		return c.Status(status).JSON(body)
	}

	body["error"] = serr.Message
	if len(serr.Fields) > 0 {
		body["errors"] = serr.Fields
	}
	if kind == services.KindWarning {
		body["warning"] = true
	}
	return c.Status(status).JSON(body)
}

func badBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

var validate = validator.New()

// validateBody checks request DTO tags and answers 400 with a field map on failure.
// ok is false when a response has been written.
func validateBody(c *fiber.Ctx, v any) (ok bool, err error) {
	verr := validate.Struct(v)
	if verr == nil {
		return true, nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(verr, &validationErrors) {
		return false, badBody(c, verr)
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
