package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Defaults applied to new projects
	DefaultPreset        string  `json:"default_preset"`
	DefaultModuleSystem  string  `json:"default_module_system"` // Catalog name, empty = built-in module
	DefaultWallHeight    float64 `json:"default_wall_height"`
	DefaultMinCut        float64 `json:"default_min_cut"`
	DefaultGridInterval  int     `json:"default_grid_interval"`
	DefaultOpeningMinGap float64 `json:"default_opening_min_gap"`
	DefaultOpeningMaxGap float64 `json:"default_opening_max_gap"`

	// Application preferences
	PresetsPath    string   `json:"presets_path"` // YAML preset table, empty = built-in presets
	DatabasePath   string   `json:"database_path"`
	RecentProjects []string `json:"recent_projects"`
}

// DefaultAppConfig returns an AppConfig populated with the values from
// DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultPreset:        defaults.Preset,
		DefaultWallHeight:    defaults.WallHeight,
		DefaultMinCut:        defaults.MinCut,
		DefaultGridInterval:  defaults.StabilizationRowInterval,
		DefaultOpeningMinGap: defaults.OpeningMinWidth,
		DefaultOpeningMaxGap: defaults.OpeningMaxWidth,
		RecentProjects:       []string{},
	}
}

// ApplyToSettings copies the default values from AppConfig into a LayoutSettings struct.
// This is used when creating a new project so it inherits the user's saved defaults.
func (c AppConfig) ApplyToSettings(s *LayoutSettings) {
	s.Preset = c.DefaultPreset
	s.WallHeight = c.DefaultWallHeight
	s.MinCut = c.DefaultMinCut
	s.StabilizationRowInterval = c.DefaultGridInterval
	s.OpeningMinWidth = c.DefaultOpeningMinGap
	s.OpeningMaxWidth = c.DefaultOpeningMaxGap
}
