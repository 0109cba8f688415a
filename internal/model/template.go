package model

import (
	"time"

	"github.com/google/uuid"
)

// ProjectTemplate represents a reusable floor plan that captures wall
// segments, openings and settings but not overrides or plan results.
type ProjectTemplate struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
	Segments    []WallSegment  `json:"segments"`
	Openings    []Opening      `json:"openings"`
	Settings    LayoutSettings `json:"settings"`
}

// NewProjectTemplate creates a new template from the given project data.
// Overrides are left out because they refer to chain ids and panel keys of a
// particular run.
func NewProjectTemplate(name, description string, segments []WallSegment, openings []Opening, settings LayoutSettings) ProjectTemplate {
	now := time.Now().UTC().Format(time.RFC3339)
	return ProjectTemplate{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Segments:    copySegments(segments),
		Openings:    copyOpenings(openings),
		Settings:    settings,
	}
}

// ToProject creates a new Project from this template with a fresh id and
// empty overrides.
func (t ProjectTemplate) ToProject(projectName string) Project {
	p := NewProject()
	p.Name = projectName
	p.Segments = copySegments(t.Segments)
	p.Openings = copyOpenings(t.Openings)
	p.Settings = t.Settings
	return p
}

// BuiltinTemplates returns the floor plans shipped with the application.
func BuiltinTemplates() []ProjectTemplate {
	settings := DefaultSettings()
	rect := []WallSegment{
		NewWallSegment(0, 0, 6000, 0, "walls"),
		NewWallSegment(6000, 0, 6000, 4000, "walls"),
		NewWallSegment(6000, 4000, 0, 4000, "walls"),
		NewWallSegment(0, 4000, 0, 0, "walls"),
	}
	twoRooms := append(copySegments(rect), NewWallSegment(3000, 0, 3000, 4000, "walls"))
	return []ProjectTemplate{
		{
			ID:          "rect",
			Name:        "Rectangle 6000x4000",
			Description: "Single room, four corners",
			Segments:    rect,
			Openings:    []Opening{},
			Settings:    settings,
		},
		{
			ID:          "two-rooms",
			Name:        "Two rooms",
			Description: "6000x4000 outline split by a partition wall",
			Segments:    twoRooms,
			Openings:    []Opening{},
			Settings:    settings,
		},
	}
}

// TemplateStore holds a collection of project templates.
type TemplateStore struct {
	Templates []ProjectTemplate `json:"templates"`
}

// NewTemplateStore creates an empty template store.
func NewTemplateStore() TemplateStore {
	return TemplateStore{
		Templates: []ProjectTemplate{},
	}
}

// Add adds a template to the store.
func (ts *TemplateStore) Add(t ProjectTemplate) {
	ts.Templates = append(ts.Templates, t)
}

// Remove removes a template by ID. Returns true if found and removed.
func (ts *TemplateStore) Remove(id string) bool {
	for i, t := range ts.Templates {
		if t.ID == id {
			ts.Templates = append(ts.Templates[:i], ts.Templates[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns a pointer to the template with the given ID, or nil.
func (ts *TemplateStore) FindByID(id string) *ProjectTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].ID == id {
			return &ts.Templates[i]
		}
	}
	return nil
}

// Names returns the template names in store order.
func (ts *TemplateStore) Names() []string {
	names := make([]string, len(ts.Templates))
	for i, t := range ts.Templates {
		names[i] = t.Name
	}
	return names
}

// FindByName returns a pointer to the first template with the given name, or nil.
func (ts *TemplateStore) FindByName(name string) *ProjectTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].Name == name {
			return &ts.Templates[i]
		}
	}
	return nil
}

func copySegments(segments []WallSegment) []WallSegment {
	if segments == nil {
		return []WallSegment{}
	}
	cp := make([]WallSegment, len(segments))
	copy(cp, segments)
	return cp
}

func copyOpenings(openings []Opening) []Opening {
	if openings == nil {
		return []Opening{}
	}
	cp := make([]Opening, len(openings))
	copy(cp, openings)
	return cp
}
