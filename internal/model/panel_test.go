package model

import (
	"encoding/json"
	"testing"
)

func TestPanelKey(t *testing.T) {
	got := PanelKey("C4", 2, SideInterior, 7)
	if got != "C4/r2/interior/7" {
		t.Errorf("unexpected key %q", got)
	}
}

func TestPanelKindName(t *testing.T) {
	tests := []struct {
		kind PanelKind
		want string
	}{
		{nil, KindFull},
		{FullModule{}, KindFull},
		{CornerCut{JunctionID: "J1"}, KindCornerCut},
		{TopoClosure{Reason: ClosureFreeEnd}, KindTopoClosure},
		{EndCut{Remainder: 400}, KindEndCut},
	}
	for _, tt := range tests {
		p := Panel{Kind: tt.kind}
		if p.KindName() != tt.want {
			t.Errorf("expected %s, got %s", tt.want, p.KindName())
		}
	}
}

func TestPanelJSONKeepsVariantFields(t *testing.T) {
	in := []Panel{
		{Key: "C1/r0/exterior/0", ChainID: "C1", Side: SideExterior, Face: FacePositive, Start: 0, End: 1200, Kind: CornerCut{JunctionID: "J2"}},
		{Key: "C1/r0/exterior/1", ChainID: "C1", Side: SideExterior, Face: FacePositive, Start: 1200, End: 1600, Kind: EndCut{Remainder: 400}},
		{Key: "C1/r0/exterior/2", ChainID: "C1", Side: SideExterior, Face: FacePositive, Start: 1600, End: 1750, Kind: TopoClosure{Reason: ClosureTee}},
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if raw[0]["kind"] != KindCornerCut || raw[0]["junction_id"] != "J2" {
		t.Errorf("corner cut not tagged: %v", raw[0])
	}
	if _, ok := raw[0]["remainder"]; ok {
		t.Error("corner cut must not carry a remainder")
	}

	var out []Panel
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cut, ok := out[0].Kind.(CornerCut); !ok || cut.JunctionID != "J2" {
		t.Errorf("expected corner cut at J2, got %#v", out[0].Kind)
	}
	if rest, ok := out[1].Kind.(EndCut); !ok || rest.Remainder != 400 {
		t.Errorf("expected 400 mm end cut, got %#v", out[1].Kind)
	}
	if topo, ok := out[2].Kind.(TopoClosure); !ok || topo.Reason != ClosureTee {
		t.Errorf("expected tee closure, got %#v", out[2].Kind)
	}
}

func TestPanelJSONUnknownKind(t *testing.T) {
	var p Panel
	if err := json.Unmarshal([]byte(`{"key":"x","kind":"mystery"}`), &p); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestChainSideFaceSide(t *testing.T) {
	perim := ChainSide{Classification: SideExteriorNegative, OutsideIsPositivePerp: false}
	if perim.FaceSide(FaceNegative) != SideExterior || perim.FaceSide(FacePositive) != SideInterior {
		t.Error("negative exterior chain should have its negative face outside")
	}
	part := ChainSide{Classification: SidePartition, OutsideIsPositivePerp: true}
	if part.FaceSide(FacePositive) != SideInterior || part.FaceSide(FaceNegative) != SideInterior {
		t.Error("partition faces are both interior")
	}
	out := ChainSide{Classification: SideBothOutside}
	if out.FaceSide(FacePositive) != SideExterior {
		t.Error("a chain outside the footprint faces out on both sides")
	}
}

func TestClosureInterval(t *testing.T) {
	c := ClosurePlacement{Offset: 75, Width: 150}
	a, b := c.Interval()
	if a != 0 || b != 150 {
		t.Errorf("expected [0, 150], got [%v, %v]", a, b)
	}
}
