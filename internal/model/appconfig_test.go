package model

import "testing"

func TestDefaultAppConfigMatchesDefaultSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	defaults := DefaultSettings()

	if cfg.DefaultPreset != defaults.Preset {
		t.Errorf("expected preset %q, got %q", defaults.Preset, cfg.DefaultPreset)
	}
	if cfg.DefaultWallHeight != defaults.WallHeight {
		t.Errorf("expected wall height %f, got %f", defaults.WallHeight, cfg.DefaultWallHeight)
	}
	if cfg.DefaultMinCut != defaults.MinCut {
		t.Errorf("expected min cut %f, got %f", defaults.MinCut, cfg.DefaultMinCut)
	}
	if cfg.DefaultGridInterval != defaults.StabilizationRowInterval {
		t.Errorf("expected grid interval %d, got %d", defaults.StabilizationRowInterval, cfg.DefaultGridInterval)
	}
	if cfg.DefaultOpeningMinGap != 600 || cfg.DefaultOpeningMaxGap != 2500 {
		t.Errorf("unexpected opening range %f-%f", cfg.DefaultOpeningMinGap, cfg.DefaultOpeningMaxGap)
	}
	if cfg.RecentProjects == nil {
		t.Error("RecentProjects should be non-nil")
	}
	if cfg.PresetsPath != "" || cfg.DefaultModuleSystem != "" {
		t.Error("defaults should point at the built-in presets and module")
	}
}

func TestAppConfigApplyToSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.DefaultPreset = PresetNormal
	cfg.DefaultWallHeight = 3000
	cfg.DefaultMinCut = 100
	cfg.DefaultGridInterval = 2
	cfg.DefaultOpeningMinGap = 700
	cfg.DefaultOpeningMaxGap = 2000

	s := DefaultSettings()
	cfg.ApplyToSettings(&s)

	if s.Preset != PresetNormal || s.WallHeight != 3000 || s.MinCut != 100 {
		t.Errorf("unexpected settings %+v", s)
	}
	if s.StabilizationRowInterval != 2 || s.OpeningMinWidth != 700 || s.OpeningMaxWidth != 2000 {
		t.Errorf("unexpected settings %+v", s)
	}
	if s.Module.Width != 1200 {
		t.Error("ApplyToSettings must leave the module untouched")
	}
	if s.Rows() != 8 {
		t.Errorf("expected 8 rows for 3000 mm, got %d", s.Rows())
	}
}
