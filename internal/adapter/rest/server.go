// Package rest serves the public forest-monitoring API over Fiber.
package rest

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/kamalsai369/EcoMind/internal/forest"
	"github.com/kamalsai369/EcoMind/internal/observability"
)

// Config bounds request validation for the public API.
type Config struct {
	// DefaultLocation is assumed when a request names no location.
	DefaultLocation string
	// TrendDefaultDays is the trend window when the request names none.
	TrendDefaultDays int
	// TrendMaxDays caps the requestable trend window.
	TrendMaxDays int
}

// New builds the public API application. Every error, expected or not, renders
// as {"error": true, "message": ...} with the proper status code.
func New(svc *forest.Service, cfg Config, metrics *observability.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "ecomind-api",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(requestMetrics(metrics))

	h := &handlers{svc: svc, cfg: cfg}
	h.register(app)

	return app
}

// requestMetrics counts every request by route pattern and outcome class.
func requestMetrics(metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		outcome := "ok"
		switch {
		case status >= 500:
			outcome = "server_error"
		case status >= 400:
			outcome = "client_error"
		}
		metrics.APIRequests.WithLabelValues(c.Route().Path, outcome).Inc()

		return err
	}
}
