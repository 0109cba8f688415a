package model

import "testing"

func TestDetectOffcutsOnlyEndCuts(t *testing.T) {
	panels := []Panel{
		{Key: "a", Start: 0, End: 1200, Kind: FullModule{}},
		{Key: "b", Start: 0, End: 1200 - 282.35, Kind: CornerCut{JunctionID: "J1"}},
		{Key: "c", Start: 0, End: 400, Kind: EndCut{Remainder: 400}},
		{Key: "d", Start: 0, End: 150, Kind: TopoClosure{Reason: ClosureFreeEnd}},
	}
	offcuts := DetectOffcuts(panels, 1200, 300)
	if len(offcuts) != 1 {
		t.Fatalf("expected 1 offcut, got %d", len(offcuts))
	}
	if offcuts[0].PanelKey != "c" || offcuts[0].Length != 800 {
		t.Errorf("unexpected offcut %+v", offcuts[0])
	}
	if offcuts[0].ID != "c/offcut" {
		t.Errorf("unexpected offcut id %q", offcuts[0].ID)
	}
}

func TestDetectOffcutsMinLength(t *testing.T) {
	panels := []Panel{
		{Key: "short", Start: 0, End: 1000, Kind: EndCut{Remainder: 1000}},
		{Key: "exact", Start: 0, End: 900, Kind: EndCut{Remainder: 900}},
	}
	offcuts := DetectOffcuts(panels, 1200, 300)
	if len(offcuts) != 1 || offcuts[0].PanelKey != "exact" {
		t.Errorf("expected only the 300 mm offcut, got %+v", offcuts)
	}
}

func TestDetectOffcutsSortedLongestFirst(t *testing.T) {
	panels := []Panel{
		{Key: "p1", Start: 0, End: 700, Kind: EndCut{}},
		{Key: "p2", Start: 0, End: 200, Kind: EndCut{}},
		{Key: "p3", Start: 0, End: 700, Kind: EndCut{}},
		{Key: "p4", Start: 0, End: 450, Kind: EndCut{}},
	}
	offcuts := DetectOffcuts(panels, 1200, 0)
	want := []string{"p2", "p4", "p1", "p3"}
	if len(offcuts) != len(want) {
		t.Fatalf("expected %d offcuts, got %d", len(want), len(offcuts))
	}
	for i, key := range want {
		if offcuts[i].PanelKey != key {
			t.Errorf("position %d: expected %s, got %s", i, key, offcuts[i].PanelKey)
		}
	}
}

func TestDetectOffcutsNone(t *testing.T) {
	if got := DetectOffcuts(nil, 1200, 300); len(got) != 0 {
		t.Errorf("expected no offcuts, got %d", len(got))
	}
}

func TestTotalOffcutLength(t *testing.T) {
	total := TotalOffcutLength([]Offcut{{Length: 800}, {Length: 350.5}})
	if total != 1150.5 {
		t.Errorf("expected 1150.5, got %f", total)
	}
}
