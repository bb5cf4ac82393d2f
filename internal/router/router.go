package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/vitalsight/vitalsight/internal/config"
	"github.com/vitalsight/vitalsight/internal/handlers"
	"github.com/vitalsight/vitalsight/internal/logging"
	"github.com/vitalsight/vitalsight/internal/metrics"
	"github.com/vitalsight/vitalsight/internal/middleware"
	"github.com/vitalsight/vitalsight/internal/services"
)

// Setup configures all routes and middlewares. recorder may be nil, which
// disables the metrics endpoint.
func Setup(app *fiber.App, logger *logging.Logger, cfg config.Config, version string, recorder *metrics.Recorder) *handlers.Handler {
	analyticsService := services.NewAnalyticsService(logger, cfg.Analytics, recorder)
	networkService := services.NewNetworkService(logger, cfg.Analytics, recorder)
	h := handlers.New(logger, version, analyticsService, networkService)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger, logging.DefaultMiddlewareConfig()))

	// Health check and metrics (no auth required)
	app.Get("/health", h.Health)
	if cfg.Metrics.Enabled && recorder != nil {
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(recorder.Handler()))
	}

	v1 := app.Group("/v1", middleware.APIKeyAuth(logger, cfg.Auth.APIKeys, cfg.Auth.Enabled))

	// Descriptive statistics
	v1.Post("/statistics", h.Statistics)
	v1.Post("/correlation", h.Correlation)

	// Clustering and projection
	v1.Post("/cluster/kmeans", h.KMeans)
	v1.Post("/cluster/dbscan", h.DBSCAN)
	v1.Post("/cluster/elbow", h.Elbow)
	v1.Post("/pca", h.PCA)

	// Time series
	v1.Post("/forecast", h.Forecast)
	v1.Post("/decompose", h.Decompose)
	v1.Post("/anomalies", h.Anomalies)
	v1.Post("/downsample", h.Downsample)

	// Networks; import is registered ahead of the :id routes
	v1.Post("/networks/import", h.ImportNetwork)
	v1.Post("/networks", h.CreateNetwork)
	v1.Get("/networks", h.ListNetworks)
	v1.Get("/networks/:id", h.GetNetwork)
	v1.Delete("/networks/:id", h.DeleteNetwork)
	v1.Post("/networks/:id/train", h.TrainNetwork)
	v1.Post("/networks/:id/predict", h.PredictNetwork)
	v1.Get("/networks/:id/export", h.ExportNetwork)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, cfg config.Config, version string, recorder *metrics.Recorder) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "VitalSight Analytics",
		DisableStartupMessage: true,
		BodyLimit:             cfg.Server.BodyLimit,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, cfg, version, recorder)

	return app
}
