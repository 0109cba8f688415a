package export

import (
	"testing"

	"github.com/piwi3910/wallplan/internal/engine"
	"github.com/piwi3910/wallplan/internal/model"
)

// planSegments runs the planner with default settings.
func planSegments(t *testing.T, segments []model.WallSegment) (model.PlanResult, model.LayoutSettings) {
	t.Helper()
	settings := model.DefaultSettings()
	result, err := engine.New(settings).Plan(engine.Input{Segments: segments})
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	return result, settings
}

// planTemplate runs the planner on one of the built-in floor plans.
func planTemplate(t *testing.T, id string) (model.PlanResult, model.LayoutSettings) {
	t.Helper()
	store := model.TemplateStore{Templates: model.BuiltinTemplates()}
	tmpl := store.FindByID(id)
	if tmpl == nil {
		t.Fatalf("built-in template %q not found", id)
	}
	result, err := engine.New(tmpl.Settings).Plan(engine.Input{Segments: tmpl.Segments, Openings: tmpl.Openings})
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if len(result.Panels) == 0 {
		t.Fatal("expected panels in plan")
	}
	return result, tmpl.Settings
}
