package model

import (
	"math"
	"testing"
)

func sampleResult() PlanResult {
	return PlanResult{
		Chains: []WallChain{
			{ID: "C1", Length: 6000},
			{ID: "C2", Length: 4000},
			{ID: "C3", Length: 2500},
		},
		Junctions: []JunctionNode{
			{ID: "J1", Type: JunctionL},
			{ID: "J2", Type: JunctionT},
			{ID: "J3", Type: JunctionEnd},
			{ID: "J4", Type: JunctionPassThrough},
		},
		Panels: []Panel{
			{Key: "C1/r0/exterior/0", ChainID: "C1", Start: 0, End: 1200, Kind: FullModule{}},
			{Key: "C1/r0/exterior/1", ChainID: "C1", Start: 1200, End: 2400},
			{Key: "C1/r0/interior/0", ChainID: "C1", Start: 0, End: 1200, Kind: CornerCut{JunctionID: "J1"}},
			{Key: "C2/r0/exterior/0", ChainID: "C2", Start: 0, End: 400, Kind: EndCut{Remainder: 400}},
			{Key: "C2/r0/exterior/1", ChainID: "C2", Start: 400, End: 1300, Kind: EndCut{Remainder: 900}},
			{Key: "C3/r0/exterior/0", ChainID: "C3", Start: 0, End: 150, Kind: TopoClosure{Reason: ClosureFreeEnd}},
		},
		Closures: []ClosurePlacement{
			{Key: "C3/r0/J3", ChainID: "C3", Reason: ClosureFreeEnd, Width: 150},
			{Key: "C3/r0/J2", ChainID: "C3", Reason: ClosureTee, Width: 150},
		},
		CornerAdjustments: map[string]CornerAdjustment{"C1/r0/interior/0": {}},
		Stats:             ChainStats{WastePct: 12.5},
	}
}

func TestCalculateMaterialsCounts(t *testing.T) {
	s := DefaultSettings()
	m := CalculateMaterials(sampleResult(), s)

	if m.Rows != 7 {
		t.Errorf("expected 7 rows, got %d", m.Rows)
	}
	if m.FullModules != 2 {
		t.Errorf("expected 2 full modules (nil kind counts as full), got %d", m.FullModules)
	}
	if m.CornerCutModules != 1 || m.EndCutModules != 2 {
		t.Errorf("unexpected cut counts: corner %d, end %d", m.CornerCutModules, m.EndCutModules)
	}
	if m.ModuleCount != 5 {
		t.Errorf("closure panels must not count as modules, got %d", m.ModuleCount)
	}
	if m.ClosurePieces != 2 || m.ClosuresByReason[ClosureTee] != 1 || m.ClosuresByReason[ClosureFreeEnd] != 1 {
		t.Errorf("unexpected closures %d %v", m.ClosurePieces, m.ClosuresByReason)
	}
	if m.CornerAdjustments != 1 {
		t.Errorf("expected 1 corner adjustment, got %d", m.CornerAdjustments)
	}
	if m.WastePct != 12.5 {
		t.Errorf("expected waste carried from stats, got %f", m.WastePct)
	}
}

func TestCalculateMaterialsConnectors(t *testing.T) {
	m := CalculateMaterials(sampleResult(), DefaultSettings())
	if m.Connectors[JunctionL] != 14 {
		t.Errorf("expected 2 per row for L over 7 rows, got %d", m.Connectors[JunctionL])
	}
	if m.Connectors[JunctionT] != 21 {
		t.Errorf("expected 3 per row for T over 7 rows, got %d", m.Connectors[JunctionT])
	}
	if m.Connectors[JunctionEnd] != 7 {
		t.Errorf("expected 1 per row for a free end, got %d", m.Connectors[JunctionEnd])
	}
	if _, ok := m.Connectors[JunctionPassThrough]; ok {
		t.Error("pass-through nodes need no connector")
	}
	if m.ConnectorTotal != 42 {
		t.Errorf("expected 42 connectors in total, got %d", m.ConnectorTotal)
	}
}

func TestCalculateMaterialsGrids(t *testing.T) {
	s := DefaultSettings()
	m := CalculateMaterials(sampleResult(), s)
	// 6000 -> 5, 4000 -> 4, 2500 -> 3 module lengths; 7 rows every 3 -> 2 layers
	if m.StabilizationGrids != 24 {
		t.Errorf("expected 24 grids, got %d", m.StabilizationGrids)
	}

	s.StabilizationRowInterval = 0
	if got := CalculateMaterials(sampleResult(), s).StabilizationGrids; got != 0 {
		t.Errorf("expected no grids when the interval is disabled, got %d", got)
	}
}

func TestCalculateMaterialsOffcuts(t *testing.T) {
	m := CalculateMaterials(sampleResult(), DefaultSettings())
	if len(m.Offcuts) != 2 {
		t.Fatalf("expected 2 offcuts, got %d", len(m.Offcuts))
	}
	if math.Abs(m.OffcutLength-(800+300)) > 1e-9 {
		t.Errorf("expected 1100 mm of offcuts, got %f", m.OffcutLength)
	}
}

func TestStabilizationRows(t *testing.T) {
	tests := []struct {
		rows, interval, want int
	}{
		{7, 3, 2},
		{9, 3, 3},
		{2, 3, 0},
		{7, 0, 0},
		{7, -1, 0},
	}
	for _, tt := range tests {
		if got := StabilizationRows(tt.rows, tt.interval); got != tt.want {
			t.Errorf("StabilizationRows(%d, %d) = %d, want %d", tt.rows, tt.interval, got, tt.want)
		}
	}
}

func TestConnectorsPerRowUnknownType(t *testing.T) {
	if ConnectorsPerRow("Y") != 0 {
		t.Error("unknown junction types need no connectors")
	}
}

func TestCalculateMaterialsEmpty(t *testing.T) {
	m := CalculateMaterials(PlanResult{}, DefaultSettings())
	if m.ModuleCount != 0 || m.ConnectorTotal != 0 || m.StabilizationGrids != 0 {
		t.Errorf("expected an empty summary, got %+v", m)
	}
	if m.ClosuresByReason == nil || m.Connectors == nil {
		t.Error("summary maps should be non-nil")
	}
}
