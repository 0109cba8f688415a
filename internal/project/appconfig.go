package project

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/piwi3910/wallplan/internal/model"
)

// maxRecentProjects caps the recent project list kept in the config file.
const maxRecentProjects = 10

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.wallplan/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".wallplan")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config model.AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadAppConfig reads an AppConfig from the given path.
// If the file does not exist, it returns DefaultAppConfig with no error.
// Fields missing from the file keep their default values.
func LoadAppConfig(path string) (model.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultAppConfig(), nil
		}
		return model.AppConfig{}, err
	}
	config := model.DefaultAppConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, err
	}
	// Ensure RecentProjects is never nil
	if config.RecentProjects == nil {
		config.RecentProjects = []string{}
	}
	return config, nil
}

// AddRecentProject moves path to the front of the recent project list,
// dropping duplicates and the oldest entries beyond the cap.
func AddRecentProject(config *model.AppConfig, path string) {
	recent := []string{path}
	for _, p := range config.RecentProjects {
		if p != path {
			recent = append(recent, p)
		}
	}
	if len(recent) > maxRecentProjects {
		recent = recent[:maxRecentProjects]
	}
	config.RecentProjects = recent
}

// NewProjectSettings returns layout settings for a new project: the built-in
// defaults, the configured module system from the catalog if it exists, and
// then the user's saved defaults.
func NewProjectSettings(config model.AppConfig, catalog model.Catalog) model.LayoutSettings {
	s := model.DefaultSettings()
	if config.DefaultModuleSystem != "" {
		if sys := catalog.FindByName(config.DefaultModuleSystem); sys != nil {
			sys.ApplyToSettings(&s)
		}
	}
	minCut := s.MinCut
	config.ApplyToSettings(&s)
	if config.DefaultMinCut <= 0 {
		s.MinCut = minCut
	}
	return s
}
