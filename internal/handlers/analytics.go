package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vitalsight/vitalsight/internal/models"
)

// Statistics handles POST /v1/statistics
func (h *Handler) Statistics(c *fiber.Ctx) error {
	var req models.StatisticsRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}
	res, err := h.analytics.Statistics(c.UserContext(), req)
	return h.respond(c, res, err)
}

// Correlation handles POST /v1/correlation
func (h *Handler) Correlation(c *fiber.Ctx) error {
	var req models.CorrelationRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}
	res, err := h.analytics.Correlation(c.UserContext(), req)
	return h.respond(c, res, err)
}

// KMeans handles POST /v1/cluster/kmeans
func (h *Handler) KMeans(c *fiber.Ctx) error {
	var req models.KMeansRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}
	res, err := h.analytics.KMeans(c.UserContext(), req)
	return h.respond(c, res, err)
}

// DBSCAN handles POST /v1/cluster/dbscan
func (h *Handler) DBSCAN(c *fiber.Ctx) error {
	var req models.DBSCANRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}
	res, err := h.analytics.DBSCAN(c.UserContext(), req)
	return h.respond(c, res, err)
}

// Elbow handles POST /v1/cluster/elbow
func (h *Handler) Elbow(c *fiber.Ctx) error {
	var req models.ElbowRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}
	res, err := h.analytics.Elbow(c.UserContext(), req)
	return h.respond(c, res, err)
}

// PCA handles POST /v1/pca
func (h *Handler) PCA(c *fiber.Ctx) error {
	var req models.PCARequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}
	res, err := h.analytics.PCA(c.UserContext(), req)
	return h.respond(c, res, err)
}

// Forecast handles POST /v1/forecast
func (h *Handler) Forecast(c *fiber.Ctx) error {
	var req models.ForecastRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}
	res, err := h.analytics.Forecast(c.UserContext(), req)
	return h.respond(c, res, err)
}

// Decompose handles POST /v1/decompose
func (h *Handler) Decompose(c *fiber.Ctx) error {
	var req models.DecomposeRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}
	res, err := h.analytics.Decompose(c.UserContext(), req)
	return h.respond(c, res, err)
}

// Anomalies handles POST /v1/anomalies
func (h *Handler) Anomalies(c *fiber.Ctx) error {
	var req models.AnomalyRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}
	res, err := h.analytics.Anomalies(c.UserContext(), req)
	return h.respond(c, res, err)
}

// Downsample handles POST /v1/downsample
func (h *Handler) Downsample(c *fiber.Ctx) error {
	var req models.DownsampleRequest
	if ok, err := h.parseBody(c, &req); !ok {
		return err
	}
	res, err := h.analytics.Downsample(c.UserContext(), req)
	return h.respond(c, res, err)
}
