package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/vitalsight/vitalsight/internal/logging"
	"github.com/vitalsight/vitalsight/internal/models"
)

// ErrorHandler returns the app-wide fiber error handler. Fiber errors keep
// their status; anything else is a 500 whose detail stays in the log.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	logger = logging.OrNop(logger)
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		errCode := "INTERNAL_ERROR"
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			errCode = "ERROR"
			message = fe.Message
		}

		if code >= fiber.StatusInternalServerError {
			logger.WithContext(c.UserContext()).Error("Request error",
				"path", c.Path(),
				"method", c.Method(),
				"status", code,
				"error", err)
		}

		return c.Status(code).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    errCode,
				Message: message,
				Path:    c.Path(),
			},
		})
	}
}
