package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/vitalsight/vitalsight/internal/analytics/anomaly"
	"github.com/vitalsight/vitalsight/internal/analytics/forecast"
	"github.com/vitalsight/vitalsight/internal/models"
)

// Health reports liveness with the network store occupancy and the
// registered forecasting and detection algorithms. A full store is
// reported as "at_capacity" but still answers 200.
func (h *Handler) Health(c *fiber.Ctx) error {
	held, limit := h.networks.Capacity()
	status := "healthy"
	if limit > 0 && held >= limit {
		status = "at_capacity"
	}
	return c.JSON(models.HealthResponse{
		Status:      status,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Version:     h.version,
		Networks:    held,
		MaxNetworks: limit,
		Forecasters: forecast.ListForecasters(),
		Detectors:   anomaly.ListDetectors(),
	})
}

// NotFound handles 404 errors
func (h *Handler) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "NOT_FOUND",
			Message: "Route not found",
			Path:    c.Path(),
		},
	})
}
