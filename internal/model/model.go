package model

import (
	"math"

	"github.com/google/uuid"
)

// Point2D represents a 2D coordinate in mm.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + q.
func (p Point2D) Add(q Point2D) Point2D { return Point2D{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p - q.
func (p Point2D) Sub(q Point2D) Point2D { return Point2D{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale returns p multiplied by k.
func (p Point2D) Scale(k float64) Point2D { return Point2D{X: p.X * k, Y: p.Y * k} }

// Dot returns the dot product of p and q.
func (p Point2D) Dot(q Point2D) float64 { return p.X*q.X + p.Y*q.Y }

// Cross returns the z component of the cross product of p and q.
func (p Point2D) Cross(q Point2D) float64 { return p.X*q.Y - p.Y*q.X }

// Len returns the vector length.
func (p Point2D) Len() float64 { return math.Hypot(p.X, p.Y) }

// Dist returns the distance between p and q.
func (p Point2D) Dist(q Point2D) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Outline represents a closed polygon as a sequence of 2D points.
// The outline is implicitly closed: the last point connects back to the first.
type Outline []Point2D

// BoundingBox returns the min and max corners of the outline.
func (o Outline) BoundingBox() (min, max Point2D) {
	if len(o) == 0 {
		return Point2D{}, Point2D{}
	}
	min = Point2D{X: o[0].X, Y: o[0].Y}
	max = Point2D{X: o[0].X, Y: o[0].Y}
	for _, p := range o[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// WallSegment is a raw wall centerline edge as delivered by an importer.
// Segments may be degenerate, duplicated or overlapping.
type WallSegment struct {
	Start Point2D `json:"start"`
	End   Point2D `json:"end"`
	Layer string  `json:"layer,omitempty"` // Source layer tag from the drawing
}

func NewWallSegment(x1, y1, x2, y2 float64, layer string) WallSegment {
	return WallSegment{
		Start: Point2D{X: x1, Y: y1},
		End:   Point2D{X: x2, Y: y2},
		Layer: layer,
	}
}

// Length returns the segment length in mm.
func (s WallSegment) Length() float64 {
	return s.Start.Dist(s.End)
}

// WallChain is a consolidated straight wall run built from one or more segments.
// Start→End always points along Angle.
type WallChain struct {
	ID        string  `json:"id"`
	Segments  []int   `json:"segments"` // Indices of contributing input segments
	Length    float64 `json:"length"`   // mm
	Angle     float64 `json:"angle"`    // Direction in [0, π) radians
	Start     Point2D `json:"start"`
	End       Point2D `json:"end"`
	StartNode string  `json:"start_node"`
	EndNode   string  `json:"end_node"`
}

// Direction returns the unit vector from Start to End.
func (c WallChain) Direction() Point2D {
	return Point2D{X: math.Cos(c.Angle), Y: math.Sin(c.Angle)}
}

// PositivePerp returns the unit normal 90° clockwise from the chain direction.
func (c WallChain) PositivePerp() Point2D {
	d := c.Direction()
	return Point2D{X: d.Y, Y: -d.X}
}

// PointAt returns the point at the given distance from Start.
func (c WallChain) PointAt(offset float64) Point2D {
	return c.Start.Add(c.Direction().Scale(offset))
}

// Midpoint returns the chain midpoint.
func (c WallChain) Midpoint() Point2D {
	return c.PointAt(c.Length / 2)
}

// JunctionType classifies a junction node by degree and incident angles.
type JunctionType string

const (
	JunctionEnd         JunctionType = "end"          // Free end, degree 1
	JunctionL           JunctionType = "L"            // Corner, degree 2, non-colinear
	JunctionT           JunctionType = "T"            // Tee, degree 3
	JunctionX           JunctionType = "X"            // Cross, degree 4+ or irregular degree 3
	JunctionPassThrough JunctionType = "pass-through" // Degree 2, colinear (should have been reduced)
)

// JunctionArm is one chain incident to a junction node.
type JunctionArm struct {
	ChainID      string  `json:"chain_id"`
	OutwardAngle float64 `json:"outward_angle"` // Direction away from the node in [0, 2π) radians
	AtStart      bool    `json:"at_start"`      // True if the chain's Start sits on this node
}

// JunctionNode is a point where one or more chains end.
type JunctionNode struct {
	ID        string        `json:"id"`
	Position  Point2D       `json:"position"`
	Arms      []JunctionArm `json:"arms"`
	Type      JunctionType  `json:"type"`
	Irregular bool          `json:"irregular,omitempty"` // Degree-3 node without a colinear pair
	Primary   string        `json:"primary,omitempty"`   // L corner: arm that gets the full module on even rows
	Secondary string        `json:"secondary,omitempty"` // L corner: arm that gets the corner cut on even rows
	Main      []string      `json:"main,omitempty"`      // T junction: the colinear through run
	Branch    string        `json:"branch,omitempty"`    // T junction: the abutting chain
}

// Degree returns the number of incident chains.
func (n JunctionNode) Degree() int {
	return len(n.Arms)
}

// ArmIndex returns the index of the arm for the given chain, or -1.
func (n JunctionNode) ArmIndex(chainID string) int {
	for i, a := range n.Arms {
		if a.ChainID == chainID {
			return i
		}
	}
	return -1
}

// IsMain reports whether the chain is part of a T junction's through run.
func (n JunctionNode) IsMain(chainID string) bool {
	for _, id := range n.Main {
		if id == chainID {
			return true
		}
	}
	return false
}

// OpeningCandidate is a gap between two facing free ends that looks like a
// door or window opening. Candidates are reported, never applied.
type OpeningCandidate struct {
	NodeA  string  `json:"node_a"`
	NodeB  string  `json:"node_b"`
	ChainA string  `json:"chain_a"`
	ChainB string  `json:"chain_b"`
	Start  Point2D `json:"start"`
	End    Point2D `json:"end"`
	Width  float64 `json:"width"` // mm
}

// Opening removes an interval from a chain on every row it overlaps.
type Opening struct {
	ChainID string  `json:"chain_id"`
	Offset  float64 `json:"offset"` // Distance from chain Start to the near jamb (mm)
	Width   float64 `json:"width"`  // mm
	Sill    float64 `json:"sill"`   // Height of the bottom edge above the floor (mm)
	Height  float64 `json:"height"` // mm
}

// Overlaps reports whether the opening cuts into the row band [bottom, top).
func (o Opening) Overlaps(bottom, top float64) bool {
	return o.Sill < top && o.Sill+o.Height > bottom
}

// Overrides are manual corrections supplied from outside the pipeline.
type Overrides struct {
	FlippedChains  []string `json:"flipped_chains"`  // Chains whose exterior side is inverted
	ExcludedPanels []string `json:"excluded_panels"` // Panel keys excluded from corner normalization
}

// FlippedSet returns the flipped chain ids as a set.
func (o Overrides) FlippedSet() map[string]bool {
	set := make(map[string]bool, len(o.FlippedChains))
	for _, id := range o.FlippedChains {
		set[id] = true
	}
	return set
}

// ExcludedSet returns the excluded panel keys as a set.
func (o Overrides) ExcludedSet() map[string]bool {
	set := make(map[string]bool, len(o.ExcludedPanels))
	for _, key := range o.ExcludedPanels {
		set[key] = true
	}
	return set
}

// Project ties everything together for save/load.
type Project struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Segments  []WallSegment  `json:"segments"`
	Openings  []Opening      `json:"openings"`
	Overrides Overrides      `json:"overrides"`
	Settings  LayoutSettings `json:"settings"`
	Result    *PlanResult    `json:"result,omitempty"`
}

func NewProject() Project {
	return Project{
		ID:       uuid.New().String()[:8],
		Name:     "Untitled",
		Segments: []WallSegment{},
		Openings: []Opening{},
		Overrides: Overrides{
			FlippedChains:  []string{},
			ExcludedPanels: []string{},
		},
		Settings: DefaultSettings(),
	}
}
