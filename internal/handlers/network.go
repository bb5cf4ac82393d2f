package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vitalsight/vitalsight/internal/models"
)

// CreateNetwork handles POST /v1/networks
func (h *Handler) CreateNetwork(c *fiber.Ctx) error {
	var req models.CreateNetworkRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}
	res, err := h.networks.Create(c.UserContext(), req)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// ListNetworks handles GET /v1/networks
func (h *Handler) ListNetworks(c *fiber.Ctx) error {
	return c.JSON(h.networks.List(c.UserContext()))
}

// GetNetwork handles GET /v1/networks/:id
func (h *Handler) GetNetwork(c *fiber.Ctx) error {
	res, err := h.networks.Get(c.UserContext(), c.Params("id"))
	return h.respond(c, res, err)
}

// DeleteNetwork handles DELETE /v1/networks/:id
func (h *Handler) DeleteNetwork(c *fiber.Ctx) error {
	if err := h.networks.Delete(c.UserContext(), c.Params("id")); err != nil {
		return h.handleServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// TrainNetwork handles POST /v1/networks/:id/train
func (h *Handler) TrainNetwork(c *fiber.Ctx) error {
	var req models.TrainRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}
	res, err := h.networks.Train(c.UserContext(), c.Params("id"), req)
	return h.respond(c, res, err)
}

// PredictNetwork handles POST /v1/networks/:id/predict
func (h *Handler) PredictNetwork(c *fiber.Ctx) error {
	var req models.PredictRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}
	res, err := h.networks.Predict(c.UserContext(), c.Params("id"), req)
	return h.respond(c, res, err)
}

// ExportNetwork handles GET /v1/networks/:id/export?compressed=true
func (h *Handler) ExportNetwork(c *fiber.Ctx) error {
	compressed := c.QueryBool("compressed", false)
	blob, err := h.networks.Export(c.UserContext(), c.Params("id"), compressed)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	if compressed {
		c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	} else {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return c.Send(blob)
}

// ImportNetwork handles POST /v1/networks/import with an exported blob as body
func (h *Handler) ImportNetwork(c *fiber.Ctx) error {
	blob := append([]byte(nil), c.Body()...)
	res, err := h.networks.Import(c.UserContext(), blob)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}
