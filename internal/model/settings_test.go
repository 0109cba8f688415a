package model

import (
	"errors"
	"math"
	"testing"
)

func TestModuleSpecUnits(t *testing.T) {
	m := DefaultSettings().Module
	tooth := 1200.0 / 17
	if math.Abs(m.Tooth()-tooth) > 1e-9 {
		t.Errorf("expected tooth %.4f, got %.4f", tooth, m.Tooth())
	}
	if math.Abs(m.CornerCut()-4*tooth) > 1e-9 {
		t.Errorf("expected corner cut of 4 teeth, got %.4f", m.CornerCut())
	}
	if m.ClosureWidth() != 150 {
		t.Errorf("expected closure width 150, got %.1f", m.ClosureWidth())
	}
	if m.InteriorFaceOffset() != 150 {
		t.Errorf("expected interior face offset 150, got %.1f", m.InteriorFaceOffset())
	}
}

func TestDefaultSettingsRows(t *testing.T) {
	s := DefaultSettings()
	if s.Rows() != 7 {
		t.Errorf("expected 7 rows for 2800/400, got %d", s.Rows())
	}
	s.WallHeight = 2900
	if s.Rows() != 8 {
		t.Errorf("expected a started row to count, got %d", s.Rows())
	}
	s.WallHeight = 0
	if s.Rows() != 0 {
		t.Errorf("expected 0 rows for zero height, got %d", s.Rows())
	}
}

func TestDefaultSettingsValidate(t *testing.T) {
	if err := DefaultSettings().Validate(DefaultPresets()); err != nil {
		t.Fatalf("default settings should be valid: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*LayoutSettings)
	}{
		{"zero width", func(s *LayoutSettings) { s.Module.Width = 0 }},
		{"negative height", func(s *LayoutSettings) { s.Module.Height = -400 }},
		{"nan wall height", func(s *LayoutSettings) { s.WallHeight = math.NaN() }},
		{"min cut above width", func(s *LayoutSettings) { s.MinCut = 1300 }},
		{"closure wider than module", func(s *LayoutSettings) { s.Module.CoreThickness = 1200 }},
		{"negative grid interval", func(s *LayoutSettings) { s.StabilizationRowInterval = -1 }},
		{"unknown preset", func(s *LayoutSettings) { s.Preset = "sloppy" }},
	}
	for _, tt := range tests {
		s := DefaultSettings()
		tt.mutate(&s)
		err := s.Validate(DefaultPresets())
		if !errors.Is(err, ErrInvalidSettings) {
			t.Errorf("%s: expected ErrInvalidSettings, got %v", tt.name, err)
		}
	}
}

func TestValidateRejectsBadPresetTable(t *testing.T) {
	s := DefaultSettings()
	if err := s.Validate(nil); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("expected error for empty preset table, got %v", err)
	}
	presets := DefaultPresets()
	presets[1].GapBridge = 0
	if err := s.Validate(presets); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("expected error for non-positive gap, got %v", err)
	}
}

func TestFindPreset(t *testing.T) {
	p, ok := FindPreset(DefaultPresets(), PresetNormal)
	if !ok {
		t.Fatal("expected to find the normal preset")
	}
	if p.Snap != 15 || p.GapBridge != 60 || p.AngleDeg != 2 {
		t.Errorf("unexpected normal preset %+v", p)
	}
	if math.Abs(p.AngleTolerance()-2*math.Pi/180) > 1e-12 {
		t.Errorf("expected 2 degrees in radians, got %f", p.AngleTolerance())
	}
	if _, ok := FindPreset(DefaultPresets(), "missing"); ok {
		t.Error("expected missing preset to be reported")
	}
}

func TestWallChainGeometry(t *testing.T) {
	c := WallChain{Start: Point2D{X: 0, Y: 0}, End: Point2D{X: 0, Y: 4000}, Length: 4000, Angle: math.Pi / 2}
	n := c.PositivePerp()
	if math.Abs(n.X-1) > 1e-9 || math.Abs(n.Y) > 1e-9 {
		t.Errorf("positive perpendicular should be 90 degrees clockwise, got %+v", n)
	}
	mid := c.Midpoint()
	if math.Abs(mid.Y-2000) > 1e-9 {
		t.Errorf("expected midpoint at y=2000, got %+v", mid)
	}
	neg := FaceNegative.Normal(c)
	if math.Abs(neg.X+1) > 1e-9 {
		t.Errorf("negative face normal should point to -x, got %+v", neg)
	}
}

func TestOpeningOverlaps(t *testing.T) {
	door := Opening{Sill: 0, Height: 2100}
	if !door.Overlaps(2000, 2400) {
		t.Error("door should reach into the 2000-2400 band")
	}
	if door.Overlaps(2400, 2800) {
		t.Error("door should not reach the top row")
	}
	window := Opening{Sill: 900, Height: 1200}
	if window.Overlaps(0, 400) || window.Overlaps(400, 800) {
		t.Error("window should not touch the lower rows")
	}
	if !window.Overlaps(800, 1200) {
		t.Error("window should cut the row containing its sill")
	}
}

func TestOverrideSets(t *testing.T) {
	o := Overrides{FlippedChains: []string{"C1", "C3"}, ExcludedPanels: []string{"C1/r0/interior/3"}}
	if !o.FlippedSet()["C3"] || o.FlippedSet()["C2"] {
		t.Errorf("unexpected flipped set %v", o.FlippedSet())
	}
	if !o.ExcludedSet()["C1/r0/interior/3"] {
		t.Errorf("unexpected excluded set %v", o.ExcludedSet())
	}
}
