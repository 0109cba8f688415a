package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/wallplan/internal/model"
)

// BackupData is the top-level structure for import/export of all application data.
type BackupData struct {
	Version   string                  `json:"version"`
	CreatedAt string                  `json:"created_at"`
	Config    model.AppConfig         `json:"config"`
	Catalog   model.Catalog           `json:"catalog"`
	Templates model.TemplateStore     `json:"templates"`
	Presets   []model.TolerancePreset `json:"presets"`
}

// ExportAllData exports config, module catalog, saved templates and the
// preset table to a single JSON file at the specified path.
func ExportAllData(exportPath string, config model.AppConfig, catalog model.Catalog, templates model.TemplateStore, presets []model.TolerancePreset) error {
	backup := BackupData{
		Version:   "1.0.0",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Catalog:   catalog,
		Templates: templates,
		Presets:   presets,
	}
	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup data: %w", err)
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
// The caller is responsible for applying the imported data.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	// Ensure collections are never nil
	if backup.Config.RecentProjects == nil {
		backup.Config.RecentProjects = []string{}
	}
	if backup.Catalog.Systems == nil {
		backup.Catalog.Systems = []model.ModuleSystem{}
	}
	if backup.Templates.Templates == nil {
		backup.Templates.Templates = []model.ProjectTemplate{}
	}
	if len(backup.Presets) == 0 {
		backup.Presets = model.DefaultPresets()
	} else if err := validatePresets(backup.Presets); err != nil {
		return BackupData{}, fmt.Errorf("invalid backup file: %w", err)
	}
	return backup, nil
}
