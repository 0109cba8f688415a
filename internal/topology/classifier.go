// Package topology classifies junction nodes by degree and incident angles and
// finds door and window gaps between facing free ends.
package topology

import (
	"math"
	"sort"

	"github.com/piwi3910/wallplan/internal/geometry"
	"github.com/piwi3910/wallplan/internal/model"
)

// Classifier assigns junction types and arm roles.
type Classifier struct {
	AngleTolerance float64 // radians
}

// New creates a Classifier with the given colinearity tolerance in radians.
func New(angleTol float64) *Classifier {
	return &Classifier{AngleTolerance: angleTol}
}

// Classify returns a classified copy of every junction. Input nodes are not
// modified.
func (c *Classifier) Classify(junctions []model.JunctionNode) []model.JunctionNode {
	out := make([]model.JunctionNode, len(junctions))
	for i, n := range junctions {
		out[i] = c.ClassifyNode(n)
	}
	return out
}

// ClassifyNode derives the type and roles of one node:
//
//	degree 1   end
//	degree 2   pass-through when colinear, otherwise L
//	degree 3   T when a colinear pair exists, otherwise X flagged irregular
//	degree 4+  X
func (c *Classifier) ClassifyNode(n model.JunctionNode) model.JunctionNode {
	n.Arms = append([]model.JunctionArm(nil), n.Arms...)
	n.Primary, n.Secondary, n.Branch, n.Main, n.Irregular = "", "", "", nil, false

	switch len(n.Arms) {
	case 0:
		n.Type = model.JunctionEnd
	case 1:
		n.Type = model.JunctionEnd
	case 2:
		a, b := n.Arms[0], n.Arms[1]
		if geometry.Colinear(a.OutwardAngle, b.OutwardAngle, c.AngleTolerance) {
			n.Type = model.JunctionPassThrough
			return n
		}
		n.Type = model.JunctionL
		n.Primary, n.Secondary = LRoles(a, b)
	case 3:
		pairs := [][3]int{{0, 1, 2}, {0, 2, 1}, {1, 2, 0}}
		for _, p := range pairs {
			if geometry.Colinear(n.Arms[p[0]].OutwardAngle, n.Arms[p[1]].OutwardAngle, c.AngleTolerance) {
				n.Type = model.JunctionT
				n.Main = []string{n.Arms[p[0]].ChainID, n.Arms[p[1]].ChainID}
				n.Branch = n.Arms[p[2]].ChainID
				return n
			}
		}
		n.Type = model.JunctionX
		n.Irregular = true
	default:
		n.Type = model.JunctionX
	}
	return n
}

// LRoles returns the primary and secondary chain of an L corner. The arms are
// ordered by outward angle first, so the result does not depend on input
// order; a positive cross product of the ordered directions makes the first
// arm primary.
func LRoles(a, b model.JunctionArm) (string, string) {
	first, second := a, b
	if second.OutwardAngle < first.OutwardAngle ||
		(second.OutwardAngle == first.OutwardAngle && second.ChainID < first.ChainID) {
		first, second = second, first
	}
	cross := geometry.Unit(first.OutwardAngle).Cross(geometry.Unit(second.OutwardAngle))
	if cross > 0 {
		return first.ChainID, second.ChainID
	}
	return second.ChainID, first.ChainID
}

// DetectOpeningCandidates finds pairs of free ends on colinear chains that
// face each other across a gap between minWidth and maxWidth, with lateral
// misalignment at most lateralTol. Narrowest gaps are paired first and each
// end is used once.
func DetectOpeningCandidates(junctions []model.JunctionNode, minWidth, maxWidth, angTol, lateralTol float64) []model.OpeningCandidate {
	var ends []model.JunctionNode
	for _, n := range junctions {
		if len(n.Arms) == 1 {
			ends = append(ends, n)
		}
	}

	var cands []model.OpeningCandidate
	for i := 0; i < len(ends); i++ {
		for j := i + 1; j < len(ends); j++ {
			a, b := ends[i], ends[j]
			if a.Arms[0].ChainID == b.Arms[0].ChainID {
				continue
			}
			g := b.Position.Sub(a.Position)
			w := g.Len()
			if w < minWidth || w > maxWidth {
				continue
			}
			// Each end looks out of its wall, opposite to its arm.
			outA := geometry.Unit(a.Arms[0].OutwardAngle + math.Pi)
			outB := geometry.Unit(b.Arms[0].OutwardAngle + math.Pi)
			if !geometry.Opposite(a.Arms[0].OutwardAngle, b.Arms[0].OutwardAngle, angTol) {
				continue
			}
			if g.Dot(outA) <= 0 || g.Scale(-1).Dot(outB) <= 0 {
				continue
			}
			if math.Abs(outA.Cross(g)) > lateralTol {
				continue
			}
			cands = append(cands, model.OpeningCandidate{
				NodeA:  a.ID,
				NodeB:  b.ID,
				ChainA: a.Arms[0].ChainID,
				ChainB: b.Arms[0].ChainID,
				Start:  a.Position,
				End:    b.Position,
				Width:  w,
			})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Width < cands[j].Width
	})

	used := make(map[string]bool)
	var out []model.OpeningCandidate
	for _, c := range cands {
		if used[c.NodeA] || used[c.NodeB] {
			continue
		}
		used[c.NodeA], used[c.NodeB] = true, true
		out = append(out, c)
	}
	return out
}
