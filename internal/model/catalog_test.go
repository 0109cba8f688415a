package model

import (
	"math"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	names := c.Names()
	if len(names) != 4 {
		t.Fatalf("expected 4 module systems, got %d", len(names))
	}
	if names[0] != "Core 150" {
		t.Errorf("expected Core 150 first, got %q", names[0])
	}
	seen := make(map[string]bool)
	for _, s := range c.Systems {
		if s.ID == "" || seen[s.ID] {
			t.Errorf("module system %q has a missing or duplicate ID", s.Name)
		}
		seen[s.ID] = true
	}
}

func TestCatalogFind(t *testing.T) {
	c := DefaultCatalog()
	sys := c.FindByName("Core 250")
	if sys == nil {
		t.Fatal("expected to find Core 250")
	}
	if sys.Module.CoreThickness != 250 {
		t.Errorf("expected 250 mm core, got %f", sys.Module.CoreThickness)
	}
	if byID := c.FindByID(sys.ID); byID == nil || byID.Name != "Core 250" {
		t.Error("expected FindByID to return the same system")
	}
	if c.FindByName("Core 999") != nil || c.FindByID("nope") != nil {
		t.Error("expected nil for missing systems")
	}

	sys.Manufacturer = "Acme"
	if c.FindByName("Core 250").Manufacturer != "Acme" {
		t.Error("FindByName should return a pointer into the catalog")
	}
}

func TestModuleSystemApplyToSettings(t *testing.T) {
	sys := NewModuleSystem("Narrow", "Acme", ModuleSpec{Width: 1020, Height: 340, CoreThickness: 150, PanelThickness: 60})
	s := DefaultSettings()
	sys.ApplyToSettings(&s)

	if s.Module.Width != 1020 || s.Module.Height != 340 {
		t.Errorf("unexpected module %+v", s.Module)
	}
	if math.Abs(s.MinCut-60) > 1e-9 {
		t.Errorf("expected min cut of one tooth (60 mm), got %f", s.MinCut)
	}
	if s.Rows() != 9 {
		t.Errorf("expected 9 rows of 340 mm for 2800 mm, got %d", s.Rows())
	}
	if err := s.Validate(DefaultPresets()); err != nil {
		t.Errorf("settings should stay valid: %v", err)
	}
}
