package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/piwi3910/wallplan/internal/engine"
	"github.com/piwi3910/wallplan/internal/export"
	"github.com/piwi3910/wallplan/internal/model"
	"github.com/piwi3910/wallplan/internal/store"
)

// PlanRequest is the body of the plan endpoints.
type PlanRequest struct {
	ProjectID string                `json:"project_id,omitempty"` // Loads stored overrides when Overrides is empty
	Segments  []model.WallSegment   `json:"segments"`
	Openings  []model.Opening       `json:"openings"`
	Overrides model.Overrides       `json:"overrides"`
	Settings  *model.LayoutSettings `json:"settings,omitempty"`
}

// ComparisonEntry is one row of the preset comparison response.
type ComparisonEntry struct {
	Scenario     string  `json:"scenario"`
	Preset       string  `json:"preset,omitempty"`
	Chains       int     `json:"chains"`
	Modules      int     `json:"modules"`
	Closures     int     `json:"closures"`
	WastePercent float64 `json:"waste_pct"`
	Unresolved   int     `json:"unresolved"`
	Error        string  `json:"error,omitempty"`
}

// Plan runs the planner and returns the full result.
func (s *Server) Plan(c fiber.Ctx) error {
	result, _, err := s.plan(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

// PlanSVG runs the planner and returns the plan drawing of one row.
func (s *Server) PlanSVG(c fiber.Ctx) error {
	row, err := strconv.Atoi(c.Query("row", "0"))
	if err != nil || row < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "row must be a non-negative integer"})
	}

	result, settings, err := s.plan(c)
	if err != nil {
		return writeError(c, err)
	}
	if len(result.Chains) == 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "no walls to render"})
	}

	var sb strings.Builder
	r := export.NewPlanRenderer(result, settings)
	r.Row = row
	if err := r.RenderSVG(&sb); err != nil {
		log.Printf("[PLAN] Render error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set("Content-Type", "image/svg+xml")
	return c.SendString(sb.String())
}

// PlanGeoJSON runs the planner and returns the plan geometry as GeoJSON.
func (s *Server) PlanGeoJSON(c fiber.Ctx) error {
	result, _, err := s.plan(c)
	if err != nil {
		return writeError(c, err)
	}
	data, err := export.ToGeoJSON(result).MarshalJSON()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set("Content-Type", "application/geo+json")
	return c.Send(data)
}

// ComparePresets plans the input with auto-tuning and every preset.
func (s *Server) ComparePresets(c fiber.Ctx) error {
	req, err := decodePlanRequest(c)
	if err != nil {
		return writeError(c, err)
	}
	settings := s.Settings
	if req.Settings != nil {
		settings = *req.Settings
	}

	planner := &engine.Planner{Settings: settings, Presets: s.Presets, Logger: s.Logger}
	results := planner.ComparePresets(engine.Input{Segments: req.Segments, Openings: req.Openings, Overrides: req.Overrides})

	entries := make([]ComparisonEntry, 0, len(results))
	for _, r := range results {
		e := ComparisonEntry{
			Scenario:     r.Scenario.Name,
			Preset:       r.Result.Preset,
			Chains:       r.Chains,
			Modules:      r.Modules,
			Closures:     r.Closures,
			WastePercent: r.WastePercent,
			Unresolved:   r.Unresolved,
		}
		if r.Err != nil {
			e.Error = r.Err.Error()
		}
		entries = append(entries, e)
	}
	return c.JSON(entries)
}

// GetOverrides returns the stored override set of a project.
func (s *Server) GetOverrides(c fiber.Ctx) error {
	if s.Store == nil {
		return storeUnavailable(c)
	}
	o, err := s.Store.Get(context.Background(), c.Params("id"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(o)
}

// PutOverrides replaces the override set of a project.
func (s *Server) PutOverrides(c fiber.Ctx) error {
	if s.Store == nil {
		return storeUnavailable(c)
	}
	var o model.Overrides
	if err := json.Unmarshal(c.Body(), &o); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON payload"})
	}
	if o.FlippedChains == nil {
		o.FlippedChains = []string{}
	}
	if o.ExcludedPanels == nil {
		o.ExcludedPanels = []string{}
	}
	if err := s.Store.Put(context.Background(), c.Params("id"), o); err != nil {
		return storeError(c, err)
	}
	return c.JSON(o)
}

// DeleteOverrides removes the override set of a project.
func (s *Server) DeleteOverrides(c fiber.Ctx) error {
	if s.Store == nil {
		return storeUnavailable(c)
	}
	if err := s.Store.Delete(context.Background(), c.Params("id")); err != nil {
		return storeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// plan decodes the request, resolves stored overrides and runs the planner.
func (s *Server) plan(c fiber.Ctx) (model.PlanResult, model.LayoutSettings, error) {
	req, err := decodePlanRequest(c)
	if err != nil {
		return model.PlanResult{}, model.LayoutSettings{}, err
	}

	settings := s.Settings
	if req.Settings != nil {
		settings = *req.Settings
	}

	overrides := req.Overrides
	if req.ProjectID != "" && s.Store != nil && len(overrides.FlippedChains) == 0 && len(overrides.ExcludedPanels) == 0 {
		stored, err := s.Store.Get(context.Background(), req.ProjectID)
		switch {
		case err == nil:
			overrides = stored
		case !errors.Is(err, store.ErrNotFound):
			log.Printf("[PLAN] Override lookup for %q failed: %v", req.ProjectID, err)
		}
	}

	planner := &engine.Planner{Settings: settings, Presets: s.Presets, Logger: s.Logger}
	result, err := planner.Plan(engine.Input{Segments: req.Segments, Openings: req.Openings, Overrides: overrides})
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, model.ErrInvalidSettings) {
			status = fiber.StatusBadRequest
		}
		return model.PlanResult{}, settings, &httpError{status: status, msg: err.Error()}
	}
	return result, settings, nil
}

// httpError is a failure with the status code to answer with.
type httpError struct {
	status int
	msg    string
}

func (e *httpError) Error() string { return e.msg }

// writeError answers with the status of an httpError, or 500.
func writeError(c fiber.Ctx, err error) error {
	var he *httpError
	if errors.As(err, &he) {
		return c.Status(he.status).JSON(fiber.Map{"error": he.msg})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func decodePlanRequest(c fiber.Ctx) (PlanRequest, error) {
	var req PlanRequest
	if len(c.Body()) == 0 {
		return req, &httpError{status: fiber.StatusBadRequest, msg: "body required"}
	}
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		log.Printf("[PLAN] Decode error: %v", err)
		return req, &httpError{status: fiber.StatusBadRequest, msg: "invalid JSON payload"}
	}
	return req, nil
}

func storeUnavailable(c fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "override store not configured"})
}

func storeError(c fiber.Ctx, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	log.Printf("[OVERRIDES] Store error: %v", err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}
