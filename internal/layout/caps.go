package layout

import (
	"math"

	"github.com/piwi3910/wallplan/internal/geometry"
	"github.com/piwi3910/wallplan/internal/model"
)

type capKind int

const (
	capNone capKind = iota
	capFull
	capCornerCut
	capClosure
)

// junctionCap is the piece a chain end receives from its junction in one row on
// one face.
type junctionCap struct {
	kind     capKind
	reason   model.ClosureReason
	junction string
}

func (c junctionCap) module() bool {
	return c.kind == capFull || c.kind == capCornerCut
}

func (c junctionCap) panelKind() model.PanelKind {
	if c.kind == capCornerCut {
		return model.CornerCut{JunctionID: c.junction}
	}
	return model.FullModule{}
}

// cutKind is the kind of a cap piece shortened to fit its run.
func (c junctionCap) cutKind() model.PanelKind {
	return model.CornerCut{JunctionID: c.junction}
}

// capFor derives the cap at the node for the given chain, row and face.
//
// L corners interlock: the primary arm takes the full module on even rows and
// the corner cut on odd rows, the secondary arm the reverse. On the face
// inside the corner both arms are cut. A tee branch alternates like an L arm;
// the two main arms take turns receiving a closure at the junction. Cross
// arms take closures on alternating rows by arm index.
func capFor(node *model.JunctionNode, ch model.WallChain, row int, face model.Face) junctionCap {
	if node == nil {
		return junctionCap{}
	}
	even := row%2 == 0
	switch node.Type {
	case model.JunctionEnd:
		return junctionCap{kind: capClosure, reason: model.ClosureFreeEnd, junction: node.ID}
	case model.JunctionL:
		if insideCorner(node, ch, face) {
			return junctionCap{kind: capCornerCut, junction: node.ID}
		}
		if even == (node.Primary == ch.ID) {
			return junctionCap{kind: capFull, junction: node.ID}
		}
		return junctionCap{kind: capCornerCut, junction: node.ID}
	case model.JunctionT:
		if node.Branch == ch.ID {
			if even {
				return junctionCap{kind: capFull, junction: node.ID}
			}
			return junctionCap{kind: capCornerCut, junction: node.ID}
		}
		for i, id := range node.Main {
			if id == ch.ID && (row+i)%2 == 0 {
				return junctionCap{kind: capClosure, reason: model.ClosureTee, junction: node.ID}
			}
		}
		return junctionCap{kind: capFull, junction: node.ID}
	case model.JunctionX:
		if (node.ArmIndex(ch.ID)+row)%2 == 0 {
			return junctionCap{kind: capClosure, reason: model.ClosureCross, junction: node.ID}
		}
		return junctionCap{kind: capFull, junction: node.ID}
	}
	return junctionCap{}
}

// insideCorner reports whether the face normal points toward the other arm
// of an L corner.
func insideCorner(node *model.JunctionNode, ch model.WallChain, face model.Face) bool {
	for _, a := range node.Arms {
		if a.ChainID == ch.ID {
			continue
		}
		return face.Normal(ch).Dot(geometry.Unit(a.OutwardAngle)) > 1e-9
	}
	return false
}

// faceOrder returns the chain's faces with the exterior face first. Faces
// with no exterior side keep positive first.
func faceOrder(side model.ChainSide) []model.Face {
	if side.FaceSide(model.FaceNegative) == model.SideExterior &&
		side.FaceSide(model.FacePositive) != model.SideExterior {
		return []model.Face{model.FaceNegative, model.FacePositive}
	}
	return []model.Face{model.FacePositive, model.FaceNegative}
}

// interval is a stretch of a chain in one row, in mm from chain Start.
type interval struct {
	lo, hi float64
}

// subtractOpenings removes every opening on the chain that overlaps the row
// band from [0, length].
func subtractOpenings(length float64, openings []model.Opening, bottom, top float64) []interval {
	out := []interval{{0, length}}
	for _, o := range openings {
		if !o.Overlaps(bottom, top) {
			continue
		}
		cutLo := math.Max(0, o.Offset)
		cutHi := math.Min(length, o.Offset+o.Width)
		if cutHi <= cutLo {
			continue
		}
		var next []interval
		for _, iv := range out {
			if cutHi <= iv.lo || cutLo >= iv.hi {
				next = append(next, iv)
				continue
			}
			if cutLo > iv.lo {
				next = append(next, interval{iv.lo, cutLo})
			}
			if cutHi < iv.hi {
				next = append(next, interval{cutHi, iv.hi})
			}
		}
		out = next
	}
	return out
}
