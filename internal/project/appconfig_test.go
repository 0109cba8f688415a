package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/wallplan/internal/model"
)

func TestSaveAndLoadAppConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := model.DefaultAppConfig()
	cfg.DefaultPreset = model.PresetNormal
	cfg.DefaultWallHeight = 3000
	cfg.DefaultModuleSystem = "Core 200"
	cfg.RecentProjects = []string{"/tmp/house.wallplan", "/tmp/garage.wallplan"}

	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if loaded.DefaultPreset != model.PresetNormal {
		t.Errorf("expected DefaultPreset=normal, got %s", loaded.DefaultPreset)
	}
	if loaded.DefaultWallHeight != 3000 {
		t.Errorf("expected DefaultWallHeight=3000, got %f", loaded.DefaultWallHeight)
	}
	if loaded.DefaultModuleSystem != "Core 200" {
		t.Errorf("expected DefaultModuleSystem=Core 200, got %s", loaded.DefaultModuleSystem)
	}
	if len(loaded.RecentProjects) != 2 {
		t.Errorf("expected 2 recent projects, got %d", len(loaded.RecentProjects))
	}
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}

	defaults := model.DefaultAppConfig()
	if cfg.DefaultWallHeight != defaults.DefaultWallHeight {
		t.Errorf("expected default wall height %f, got %f", defaults.DefaultWallHeight, cfg.DefaultWallHeight)
	}
	if cfg.DefaultPreset != model.PresetAuto {
		t.Errorf("expected preset=auto, got %s", cfg.DefaultPreset)
	}
}

func TestLoadAppConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"default_wall_height":2400}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.DefaultWallHeight != 2400 {
		t.Errorf("expected wall height 2400, got %f", cfg.DefaultWallHeight)
	}
	if cfg.DefaultOpeningMaxGap != 2500 {
		t.Errorf("expected default opening max gap 2500, got %f", cfg.DefaultOpeningMaxGap)
	}
}

func TestLoadAppConfigInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	if err := os.WriteFile(path, []byte("not valid json{{{"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadAppConfig(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestSaveAppConfigCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "dir", "config.json")

	cfg := model.DefaultAppConfig()
	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig should create parent dirs: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}
}

func TestLoadAppConfigNilRecentProjects(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	// Write config with null recent_projects
	data := []byte(`{"default_preset":"normal","recent_projects":null}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.RecentProjects == nil {
		t.Error("RecentProjects should not be nil after loading")
	}
}

func TestAddRecentProject(t *testing.T) {
	cfg := model.DefaultAppConfig()
	AddRecentProject(&cfg, "a")
	AddRecentProject(&cfg, "b")
	AddRecentProject(&cfg, "a")

	if len(cfg.RecentProjects) != 2 || cfg.RecentProjects[0] != "a" || cfg.RecentProjects[1] != "b" {
		t.Errorf("unexpected recent list %v", cfg.RecentProjects)
	}

	for i := 0; i < 20; i++ {
		AddRecentProject(&cfg, filepath.Join("p", string(rune('a'+i))))
	}
	if len(cfg.RecentProjects) != maxRecentProjects {
		t.Errorf("expected the list capped at %d, got %d", maxRecentProjects, len(cfg.RecentProjects))
	}
}

func TestNewProjectSettings(t *testing.T) {
	cfg := model.DefaultAppConfig()
	cfg.DefaultModuleSystem = "Core 250"
	cfg.DefaultWallHeight = 3200

	s := NewProjectSettings(cfg, model.DefaultCatalog())
	if s.Module.CoreThickness != 250 {
		t.Errorf("expected the catalog module, got core %f", s.Module.CoreThickness)
	}
	if s.WallHeight != 3200 {
		t.Errorf("expected wall height 3200, got %f", s.WallHeight)
	}
	if err := s.Validate(model.DefaultPresets()); err != nil {
		t.Errorf("settings should be valid: %v", err)
	}

	cfg.DefaultModuleSystem = "Unknown"
	if got := NewProjectSettings(cfg, model.DefaultCatalog()); got.Module.CoreThickness != 150 {
		t.Errorf("unknown module systems fall back to the built-in module, got %f", got.Module.CoreThickness)
	}
}
