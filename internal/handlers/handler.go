package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/vitalsight/vitalsight/internal/logging"
	"github.com/vitalsight/vitalsight/internal/models"
	"github.com/vitalsight/vitalsight/internal/services"
)

// Handler contains all HTTP handlers
type Handler struct {
	logger    *logging.Logger
	version   string
	analytics *services.AnalyticsService
	networks  *services.NetworkService
}

// New creates a new handler instance
func New(logger *logging.Logger, version string, analytics *services.AnalyticsService, networks *services.NetworkService) *Handler {
	return &Handler{
		logger:    logging.OrNop(logger),
		version:   version,
		analytics: analytics,
		networks:  networks,
	}
}

// statusFor maps a service error code to an HTTP status
func statusFor(code string) int {
	switch code {
	case services.CodeInsufficientData,
		services.CodeDimensionMismatch,
		services.CodeInvalidParameter,
		services.CodeUnknownAlgorithm:
		return fiber.StatusBadRequest
	case services.CodeModelNotFound:
		return fiber.StatusNotFound
	case services.CodeNotTrained:
		return fiber.StatusConflict
	case services.CodeCapacityExceeded:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// handleServiceError writes err as an ErrorResponse
func (h *Handler) handleServiceError(c *fiber.Ctx, err error) error {
	var se *services.ServiceError
	if !errors.As(services.FromError(err), &se) {
		return err
	}

	status := statusFor(se.Code)
	if status >= fiber.StatusInternalServerError {
		logging.FromContext(c.UserContext()).Error("Request failed", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    se.Code,
			Message: se.Message,
			Details: se.Details,
		},
	})
}

// parseBody decodes the JSON body into req, answering 400 on failure.
// It reports whether decoding succeeded.
func (h *Handler) parseBody(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: "Invalid request body: " + err.Error(),
			},
		})
	}
	return true, nil
}

// respond writes result as JSON, or the error response when err is set
func (h *Handler) respond(c *fiber.Ctx, result interface{}, err error) error {
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.JSON(result)
}
