package helper

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler renders *fiber.Error as the JSON envelope. Anything else is
// logged with detail and answered with a generic 500.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return JsonError(c, fe.Code, fe.Message)
		}
		var ve *ValidationError
		if errors.As(err, &ve) {
			return JsonValidationError(c, ve.Message, ve.Fields)
		}
		log.Error("unhandled error",
			zap.Error(err),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Any("request_id", c.Locals("request_id")),
		)
		return JsonError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
