package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/wallplan/internal/model"
)

// Save writes a project, including its last plan result if any, as JSON.
func Save(path string, p model.Project) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a project file. Missing collections are normalized to empty
// slices and missing settings fall back to the defaults.
func Load(path string) (model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, err
	}
	p := model.NewProject()
	p.ID = ""
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Project{}, fmt.Errorf("failed to parse project file: %w", err)
	}
	if p.Segments == nil {
		p.Segments = []model.WallSegment{}
	}
	if p.Openings == nil {
		p.Openings = []model.Opening{}
	}
	if p.Overrides.FlippedChains == nil {
		p.Overrides.FlippedChains = []string{}
	}
	if p.Overrides.ExcludedPanels == nil {
		p.Overrides.ExcludedPanels = []string{}
	}
	if p.ID == "" {
		return model.Project{}, fmt.Errorf("invalid project file: missing id field")
	}
	return p, nil
}
