package model

import "testing"

func rectSegments() []WallSegment {
	return []WallSegment{
		NewWallSegment(0, 0, 5000, 0, "walls"),
		NewWallSegment(5000, 0, 5000, 3000, "walls"),
		NewWallSegment(5000, 3000, 0, 3000, "walls"),
		NewWallSegment(0, 3000, 0, 0, "walls"),
	}
}

func TestNewProjectTemplate(t *testing.T) {
	segs := rectSegments()
	settings := DefaultSettings()
	settings.WallHeight = 3200
	openings := []Opening{{ChainID: "C1", Offset: 1000, Width: 900, Height: 2100}}

	tmpl := NewProjectTemplate("Garage", "Single bay", segs, openings, settings)

	if tmpl.ID == "" {
		t.Error("expected non-empty template ID")
	}
	if tmpl.Name != "Garage" || tmpl.Description != "Single bay" {
		t.Errorf("unexpected name/description %q %q", tmpl.Name, tmpl.Description)
	}
	if tmpl.CreatedAt == "" || tmpl.UpdatedAt == "" {
		t.Error("expected timestamps to be set")
	}
	if len(tmpl.Segments) != 4 || len(tmpl.Openings) != 1 {
		t.Errorf("expected 4 segments and 1 opening, got %d and %d", len(tmpl.Segments), len(tmpl.Openings))
	}
	if tmpl.Settings.WallHeight != 3200 {
		t.Errorf("expected wall height 3200, got %f", tmpl.Settings.WallHeight)
	}

	segs[0].Layer = "changed"
	openings[0].Width = 1
	if tmpl.Segments[0].Layer != "walls" || tmpl.Openings[0].Width != 900 {
		t.Error("template should copy its segments and openings")
	}
}

func TestNewProjectTemplateNilSlices(t *testing.T) {
	tmpl := NewProjectTemplate("Empty", "", nil, nil, DefaultSettings())
	if tmpl.Segments == nil || tmpl.Openings == nil {
		t.Error("expected empty, non-nil slices")
	}
}

func TestTemplateToProject(t *testing.T) {
	tmpl := NewProjectTemplate("Garage", "", rectSegments(), nil, DefaultSettings())
	p := tmpl.ToProject("My garage")

	if p.Name != "My garage" {
		t.Errorf("expected project name 'My garage', got %q", p.Name)
	}
	if p.ID == "" || p.ID == tmpl.ID {
		t.Errorf("expected a fresh project ID, got %q", p.ID)
	}
	if len(p.Segments) != 4 {
		t.Errorf("expected 4 segments, got %d", len(p.Segments))
	}
	if len(p.Overrides.FlippedChains) != 0 || len(p.Overrides.ExcludedPanels) != 0 {
		t.Error("a new project starts without overrides")
	}
	if p.Result != nil {
		t.Error("a new project has no plan result")
	}

	p.Segments[0].Layer = "edited"
	if tmpl.Segments[0].Layer != "walls" {
		t.Error("editing the project must not change the template")
	}
}

func TestBuiltinTemplates(t *testing.T) {
	templates := BuiltinTemplates()
	if len(templates) != 2 {
		t.Fatalf("expected 2 built-in templates, got %d", len(templates))
	}
	if templates[0].ID != "rect" || len(templates[0].Segments) != 4 {
		t.Errorf("unexpected first template %+v", templates[0])
	}
	if templates[1].ID != "two-rooms" || len(templates[1].Segments) != 5 {
		t.Errorf("unexpected second template %+v", templates[1])
	}
	if err := templates[0].Settings.Validate(DefaultPresets()); err != nil {
		t.Errorf("built-in settings should be valid: %v", err)
	}
}

func TestTemplateStore(t *testing.T) {
	store := NewTemplateStore()
	if len(store.Templates) != 0 {
		t.Fatal("expected an empty store")
	}

	a := NewProjectTemplate("A", "", rectSegments(), nil, DefaultSettings())
	b := NewProjectTemplate("B", "", nil, nil, DefaultSettings())
	store.Add(a)
	store.Add(b)

	names := store.Names()
	if len(names) != 2 || names[0] != "A" || names[1] != "B" {
		t.Errorf("unexpected names %v", names)
	}
	if found := store.FindByID(b.ID); found == nil || found.Name != "B" {
		t.Error("expected to find template B by ID")
	}
	if found := store.FindByName("A"); found == nil || found.ID != a.ID {
		t.Error("expected to find template A by name")
	}
	if store.FindByName("missing") != nil || store.FindByID("missing") != nil {
		t.Error("expected nil for missing templates")
	}

	if !store.Remove(a.ID) {
		t.Error("expected Remove to report success")
	}
	if store.Remove(a.ID) {
		t.Error("expected second Remove to report failure")
	}
	if len(store.Templates) != 1 || store.Templates[0].Name != "B" {
		t.Errorf("unexpected store after removal: %v", store.Names())
	}
}
