// Package service exposes the planner as an HTTP JSON API.
package service

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/piwi3910/wallplan/internal/model"
)

// OverrideStore persists override sets per project.
type OverrideStore interface {
	Get(ctx context.Context, projectID string) (model.Overrides, error)
	Put(ctx context.Context, projectID string, o model.Overrides) error
	Delete(ctx context.Context, projectID string) error
}

// Server holds the planner defaults and collaborators shared by all handlers.
type Server struct {
	Settings model.LayoutSettings    // Used when a request carries no settings
	Presets  []model.TolerancePreset // Tolerance preset table
	Store    OverrideStore           // Optional; override routes answer 503 without it
	Logger   *log.Logger             // Planner diagnostics
}

// NewServer creates a server with default settings and presets.
func NewServer(store OverrideStore) *Server {
	return &Server{
		Settings: model.DefaultSettings(),
		Presets:  model.DefaultPresets(),
		Store:    store,
		Logger:   log.New(io.Discard, "", 0),
	}
}

// App builds the fiber application with middleware and routes.
func (s *Server) App(cfg *Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		BodyLimit:    cfg.BodyLimit,
		AppName:      "wallplan",
	})

	app.Use(recover.New())
	if cfg.Environment != "test" {
		app.Use(requestLogger())
	}

	app.Get("/health/live", LivenessProbe)
	app.Get("/health/ready", s.ReadinessProbe)

	app.Post("/plan", s.Plan)
	app.Post("/plan/svg", s.PlanSVG)
	app.Post("/plan/geojson", s.PlanGeoJSON)
	app.Post("/plan/compare", s.ComparePresets)

	app.Get("/projects/:id/overrides", s.GetOverrides)
	app.Put("/projects/:id/overrides", s.PutOverrides)
	app.Delete("/projects/:id/overrides", s.DeleteOverrides)

	return app
}

// requestLogger returns the access log middleware.
func requestLogger() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	})
}

// LivenessProbe reports that the process is up.
func LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "alive"})
}

// ReadinessProbe reports whether the server can plan with its configuration.
func (s *Server) ReadinessProbe(c fiber.Ctx) error {
	if err := s.Settings.Validate(s.Presets); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "not ready",
			"error":  err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}
