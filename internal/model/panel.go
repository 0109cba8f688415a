package model

import (
	"encoding/json"
	"fmt"
)

// Side tells whether a panel face is on the exterior or interior of the building.
type Side string

const (
	SideExterior Side = "exterior"
	SideInterior Side = "interior"
)

// Face selects one of the two perpendicular sides of a chain.
type Face string

const (
	FacePositive Face = "positive" // 90° clockwise from the chain direction
	FaceNegative Face = "negative"
)

// Normal returns the unit normal of the face for the given chain.
func (f Face) Normal(c WallChain) Point2D {
	n := c.PositivePerp()
	if f == FaceNegative {
		return n.Scale(-1)
	}
	return n
}

// Panel kind names as they appear in JSON and reports.
const (
	KindFull        = "full"
	KindCornerCut   = "corner-cut"
	KindTopoClosure = "topo-closure"
	KindEndCut      = "end-cut"
)

// PanelKind is the closed set of panel variants. Each variant carries only
// the fields that apply to it.
type PanelKind interface {
	KindName() string
	isPanelKind()
}

// FullModule is an uncut module.
type FullModule struct{}

// CornerCut is a cap module cut at its junction. At an L corner it loses
// CornerCutTeeth units; a cap sharing a run too short for two modules is cut
// to fit.
type CornerCut struct {
	JunctionID string `json:"junction_id"`
}

// TopoClosure is a closure piece spanning the core.
type TopoClosure struct {
	Reason ClosureReason `json:"reason"`
}

// EndCut is the single cut remainder of a fill run.
type EndCut struct {
	Remainder float64 `json:"remainder"` // Length of the cut piece (mm)
}

func (FullModule) KindName() string  { return KindFull }
func (CornerCut) KindName() string   { return KindCornerCut }
func (TopoClosure) KindName() string { return KindTopoClosure }
func (EndCut) KindName() string      { return KindEndCut }

func (FullModule) isPanelKind()  {}
func (CornerCut) isPanelKind()   {}
func (TopoClosure) isPanelKind() {}
func (EndCut) isPanelKind()      {}

// ClosureReason records why a closure piece was placed.
type ClosureReason string

const (
	ClosureTee     ClosureReason = "tee-junction"
	ClosureFreeEnd ClosureReason = "free-end"
	ClosureCross   ClosureReason = "cross-junction"
)

// Panel is one placed unit on one face of a chain in one row.
type Panel struct {
	Key     string    `json:"key"` // Stable identity: chain/row/side/slot
	ChainID string    `json:"chain_id"`
	Row     int       `json:"row"`
	Side    Side      `json:"side"`
	Face    Face      `json:"face"`
	Slot    int       `json:"slot"`
	Start   float64   `json:"start"` // Offset from chain Start (mm)
	End     float64   `json:"end"`
	Kind    PanelKind `json:"-"`
}

// PanelKey builds the stable identity key for a panel slot.
func PanelKey(chainID string, row int, side Side, slot int) string {
	return fmt.Sprintf("%s/r%d/%s/%d", chainID, row, side, slot)
}

// Width returns the length of the panel along the chain.
func (p Panel) Width() float64 {
	return p.End - p.Start
}

// KindName returns the name of the panel variant.
func (p Panel) KindName() string {
	if p.Kind == nil {
		return KindFull
	}
	return p.Kind.KindName()
}

type panelJSON struct {
	Key        string        `json:"key"`
	ChainID    string        `json:"chain_id"`
	Row        int           `json:"row"`
	Side       Side          `json:"side"`
	Face       Face          `json:"face"`
	Slot       int           `json:"slot"`
	Start      float64       `json:"start"`
	End        float64       `json:"end"`
	Kind       string        `json:"kind"`
	JunctionID string        `json:"junction_id,omitempty"`
	Reason     ClosureReason `json:"reason,omitempty"`
	Remainder  float64       `json:"remainder,omitempty"`
}

// MarshalJSON flattens the panel kind into a "kind" tag plus its fields.
func (p Panel) MarshalJSON() ([]byte, error) {
	out := panelJSON{
		Key:     p.Key,
		ChainID: p.ChainID,
		Row:     p.Row,
		Side:    p.Side,
		Face:    p.Face,
		Slot:    p.Slot,
		Start:   p.Start,
		End:     p.End,
		Kind:    p.KindName(),
	}
	switch k := p.Kind.(type) {
	case CornerCut:
		out.JunctionID = k.JunctionID
	case TopoClosure:
		out.Reason = k.Reason
	case EndCut:
		out.Remainder = k.Remainder
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the panel kind from its "kind" tag.
func (p *Panel) UnmarshalJSON(data []byte) error {
	var in panelJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*p = Panel{
		Key:     in.Key,
		ChainID: in.ChainID,
		Row:     in.Row,
		Side:    in.Side,
		Face:    in.Face,
		Slot:    in.Slot,
		Start:   in.Start,
		End:     in.End,
	}
	switch in.Kind {
	case KindFull, "":
		p.Kind = FullModule{}
	case KindCornerCut:
		p.Kind = CornerCut{JunctionID: in.JunctionID}
	case KindTopoClosure:
		p.Kind = TopoClosure{Reason: in.Reason}
	case KindEndCut:
		p.Kind = EndCut{Remainder: in.Remainder}
	default:
		return fmt.Errorf("unknown panel kind %q", in.Kind)
	}
	return nil
}

// ClosurePlacement is a closure piece sealing the core at a free end or junction.
type ClosurePlacement struct {
	Key      string        `json:"key"`
	ChainID  string        `json:"chain_id"`
	NodeID   string        `json:"node_id"`
	Row      int           `json:"row"`
	Offset   float64       `json:"offset"` // Center of the piece along the chain (mm)
	Width    float64       `json:"width"`
	Position Point2D       `json:"position"` // Center in plan coordinates
	Reason   ClosureReason `json:"reason"`
}

// Interval returns the start and end offsets covered by the closure.
func (c ClosurePlacement) Interval() (float64, float64) {
	return c.Offset - c.Width/2, c.Offset + c.Width/2
}

// CornerRole is the winding-derived role of an interior corner panel.
type CornerRole string

const (
	RoleLead CornerRole = "LEAD"
	RoleSeat CornerRole = "SEAT"
)

// Reasons recorded on corner adjustments.
const (
	CornerReasonH1          = "h1"
	CornerReasonH2          = "h2"
	CornerReasonTieCloser   = "tie-closer"
	CornerReasonTieLead     = "tie-lead"
	CornerReasonNoReference = "no-reference"
)

// CornerDiagnostics records the scoring that produced a corner adjustment.
type CornerDiagnostics struct {
	ScoreH1      float64 `json:"score_h1"`
	ScoreH2      float64 `json:"score_h2"`
	Target       float64 `json:"target"`    // Distance from the node to the interior reference point (mm)
	CutEdge      float64 `json:"cut_edge"`  // Distance from the node to the chosen cut edge (mm)
	GapError     float64 `json:"gap_error"` // |CutEdge - Target|
	Overlap      float64 `json:"overlap"`
	Step         float64 `json:"step"`
	HasReference bool    `json:"has_reference"`
	NodeDistance float64 `json:"node_distance"` // Panel midpoint distance to the node (mm)
}

// CornerAdjustment is the cut and phase offset assigned to one interior corner panel.
type CornerAdjustment struct {
	PanelKey    string            `json:"panel_key"`
	ChainID     string            `json:"chain_id"`
	JunctionID  string            `json:"junction_id"`
	Row         int               `json:"row"`
	Role        CornerRole        `json:"role"`
	CutLength   float64           `json:"cut_length"`   // Always CornerCutTeeth * TOOTH (mm)
	Offset      float64           `json:"offset"`       // mm
	OffsetUnits float64           `json:"offset_units"` // 1.5 or 2.5
	Reason      string            `json:"reason"`
	Diagnostics CornerDiagnostics `json:"diagnostics"`
}
