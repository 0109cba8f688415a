package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSettings is returned (wrapped) for configuration values that make
// a run meaningless, such as non-positive tolerances or module sizes.
var ErrInvalidSettings = errors.New("invalid settings")

// Module system constants expressed in fundamental units (TOOTH).
const (
	ToothPerModule   = 17  // A module width is 17 TOOTH
	CornerCutTeeth   = 4.0 // Interior corner panels lose exactly 4 TOOTH
	OffsetSmallTeeth = 1.5
	OffsetLargeTeeth = 2.5
)

// Tolerance preset names.
const (
	PresetAuto         = "auto"
	PresetConservative = "conservative"
	PresetNormal       = "normal"
	PresetAggressive   = "aggressive"
)

// ModuleSpec describes the physical module system.
type ModuleSpec struct {
	Width          float64 `json:"width" yaml:"width"`                     // Module width along the wall (mm)
	Height         float64 `json:"height" yaml:"height"`                   // Row height (mm)
	CoreThickness  float64 `json:"core_thickness" yaml:"core_thickness"`   // Concrete core (mm), sizes closure pieces
	PanelThickness float64 `json:"panel_thickness" yaml:"panel_thickness"` // Insulation face thickness (mm)
}

// Tooth returns the fundamental unit, module width / 17.
func (m ModuleSpec) Tooth() float64 {
	return m.Width / ToothPerModule
}

// CornerCut returns the fixed corner cut length in mm.
func (m ModuleSpec) CornerCut() float64 {
	return CornerCutTeeth * m.Tooth()
}

// ClosureWidth returns the width of a closure piece, which spans the core.
func (m ModuleSpec) ClosureWidth() float64 {
	return m.CoreThickness
}

// InteriorFaceOffset returns the distance from the wall centerline to the
// visible face of a panel.
func (m ModuleSpec) InteriorFaceOffset() float64 {
	return m.CoreThickness/2 + m.PanelThickness
}

// TolerancePreset holds the spatial tolerances used by the chain builder.
type TolerancePreset struct {
	Name       string  `json:"name" yaml:"name"`
	Snap       float64 `json:"snap" yaml:"snap"`               // Endpoint clustering radius (mm)
	GapBridge  float64 `json:"gap_bridge" yaml:"gap_bridge"`   // Largest free-end gap that is bridged (mm)
	AngleDeg   float64 `json:"angle_deg" yaml:"angle_deg"`     // Colinearity tolerance (degrees)
	NoiseFloor float64 `json:"noise_floor" yaml:"noise_floor"` // Segments shorter than this are dropped (mm)
	JogMax     float64 `json:"jog_max" yaml:"jog_max"`         // Longest segment treated as a drafting jog (mm)
}

// AngleTolerance returns the colinearity tolerance in radians.
func (p TolerancePreset) AngleTolerance() float64 {
	return p.AngleDeg * math.Pi / 180
}

// Validate checks that every tolerance is positive.
func (p TolerancePreset) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: preset name is empty", ErrInvalidSettings)
	}
	fields := []struct {
		name  string
		value float64
	}{
		{"snap", p.Snap},
		{"gap_bridge", p.GapBridge},
		{"angle_deg", p.AngleDeg},
		{"noise_floor", p.NoiseFloor},
		{"jog_max", p.JogMax},
	}
	for _, f := range fields {
		if !(f.value > 0) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: preset %q: %s must be positive, got %v", ErrInvalidSettings, p.Name, f.name, f.value)
		}
	}
	return nil
}

// DefaultPresets returns the built-in presets in evaluation order.
func DefaultPresets() []TolerancePreset {
	return []TolerancePreset{
		{Name: PresetConservative, Snap: 5, GapBridge: 20, AngleDeg: 1, NoiseFloor: 10, JogMax: 20},
		{Name: PresetNormal, Snap: 15, GapBridge: 60, AngleDeg: 2, NoiseFloor: 25, JogMax: 60},
		{Name: PresetAggressive, Snap: 30, GapBridge: 150, AngleDeg: 4, NoiseFloor: 50, JogMax: 120},
	}
}

// FindPreset returns the preset with the given name.
func FindPreset(presets []TolerancePreset, name string) (TolerancePreset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return TolerancePreset{}, false
}

// LayoutSettings holds the module system and layout configuration.
type LayoutSettings struct {
	Preset                   string     `json:"preset"` // "auto" or a tolerance preset name
	Module                   ModuleSpec `json:"module"`
	WallHeight               float64    `json:"wall_height"`                // mm
	MinCut                   float64    `json:"min_cut"`                    // Intervals shorter than this get no panel (mm)
	OpeningMinWidth          float64    `json:"opening_min_width"`          // Smallest gap reported as an opening candidate (mm)
	OpeningMaxWidth          float64    `json:"opening_max_width"`          // Largest gap reported as an opening candidate (mm)
	StabilizationRowInterval int        `json:"stabilization_row_interval"` // A grid layer every N rows
	MinOffcutLength          float64    `json:"min_offcut_length"`          // Shortest reusable cut-module remainder (mm)
}

func DefaultSettings() LayoutSettings {
	module := ModuleSpec{
		Width:          1200,
		Height:         400,
		CoreThickness:  150,
		PanelThickness: 75,
	}
	return LayoutSettings{
		Preset:                   PresetAuto,
		Module:                   module,
		WallHeight:               2800,
		MinCut:                   module.Tooth(),
		OpeningMinWidth:          600,
		OpeningMaxWidth:          2500,
		StabilizationRowInterval: 3,
		MinOffcutLength:          300,
	}
}

// Rows returns the number of module rows needed to reach the wall height.
func (s LayoutSettings) Rows() int {
	if s.Module.Height <= 0 || s.WallHeight <= 0 {
		return 0
	}
	return int(math.Ceil(s.WallHeight/s.Module.Height - 1e-9))
}

// Validate checks module sizes and the preset selector against the given
// preset table.
func (s LayoutSettings) Validate(presets []TolerancePreset) error {
	positive := []struct {
		name  string
		value float64
	}{
		{"module width", s.Module.Width},
		{"module height", s.Module.Height},
		{"core thickness", s.Module.CoreThickness},
		{"wall height", s.WallHeight},
	}
	for _, f := range positive {
		if !(f.value > 0) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidSettings, f.name, f.value)
		}
	}
	if s.Module.PanelThickness < 0 {
		return fmt.Errorf("%w: panel thickness must not be negative, got %v", ErrInvalidSettings, s.Module.PanelThickness)
	}
	if s.MinCut < 0 || s.MinCut > s.Module.Width {
		return fmt.Errorf("%w: min cut must lie in [0, %v], got %v", ErrInvalidSettings, s.Module.Width, s.MinCut)
	}
	if s.Module.ClosureWidth() >= s.Module.Width {
		return fmt.Errorf("%w: closure width %v must be smaller than module width %v", ErrInvalidSettings, s.Module.ClosureWidth(), s.Module.Width)
	}
	if s.StabilizationRowInterval < 0 {
		return fmt.Errorf("%w: stabilization row interval must not be negative", ErrInvalidSettings)
	}
	if len(presets) == 0 {
		return fmt.Errorf("%w: preset table is empty", ErrInvalidSettings)
	}
	for _, p := range presets {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	if s.Preset != PresetAuto {
		if _, ok := FindPreset(presets, s.Preset); !ok {
			return fmt.Errorf("%w: unknown preset %q", ErrInvalidSettings, s.Preset)
		}
	}
	return nil
}
