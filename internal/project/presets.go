package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/wallplan/internal/model"
)

// presetFile is the on-disk layout of a preset table.
type presetFile struct {
	Presets []model.TolerancePreset `yaml:"presets"`
}

// DefaultPresetsPath returns the default file path for the preset table.
func DefaultPresetsPath() string {
	return filepath.Join(DefaultConfigDir(), "presets.yaml")
}

// SavePresets writes a preset table to a YAML file.
func SavePresets(path string, presets []model.TolerancePreset) error {
	if err := validatePresets(presets); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(presetFile{Presets: presets})
	if err != nil {
		return fmt.Errorf("marshaling presets YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing presets file: %w", err)
	}
	return nil
}

// LoadPresets reads a preset table from a YAML file. A missing file yields the
// built-in presets. Table order is kept because auto-tuning breaks score ties
// in favour of the earlier preset.
func LoadPresets(path string) ([]model.TolerancePreset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.DefaultPresets(), nil
		}
		return nil, fmt.Errorf("reading presets file: %w", err)
	}

	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing presets YAML: %w", err)
	}
	if err := validatePresets(file.Presets); err != nil {
		return nil, err
	}
	return file.Presets, nil
}

// LoadConfiguredPresets loads the table named by the app config, or the
// built-in presets when no path is configured.
func LoadConfiguredPresets(config model.AppConfig) ([]model.TolerancePreset, error) {
	if config.PresetsPath == "" {
		return model.DefaultPresets(), nil
	}
	return LoadPresets(config.PresetsPath)
}

func validatePresets(presets []model.TolerancePreset) error {
	if len(presets) == 0 {
		return fmt.Errorf("%w: at least one preset must be defined", model.ErrInvalidSettings)
	}
	seen := make(map[string]bool, len(presets))
	for i, p := range presets {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("presets[%d]: %w", i, err)
		}
		if p.Name == model.PresetAuto {
			return fmt.Errorf("%w: presets[%d]: %q is reserved", model.ErrInvalidSettings, i, model.PresetAuto)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: presets[%d]: duplicate name %q", model.ErrInvalidSettings, i, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}
