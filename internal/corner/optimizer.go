// Package corner assigns the cut and phase offset of the two interior panels
// that meet at every L corner. It never moves panels or changes sides.
package corner

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/piwi3910/wallplan/internal/geometry"
	"github.com/piwi3910/wallplan/internal/model"
)

// Penalty weights and the near-tie threshold.
const (
	overlapWeight = 3.0
	stepWeight    = 0.5
	tieThreshold  = 0.5 // mm
	eps           = 1e-6
)

// Optimizer scores offset hypotheses for interior corner panels.
type Optimizer struct {
	Module model.ModuleSpec
}

// New creates an Optimizer for the module system.
func New(module model.ModuleSpec) *Optimizer {
	return &Optimizer{Module: module}
}

// arm is one side of an L corner as seen by the optimizer.
type arm struct {
	chain  model.WallChain
	atEnd  bool          // The chain's End sits on the node
	dir    model.Point2D // Unit vector along the chain away from the node
	inside model.Point2D // Unit normal of the face inside the corner
	face   model.Face
	role   model.CornerRole
}

// candidate is the junction-end interior panel of one arm in one row.
type candidate struct {
	panel    model.Panel
	nodeGap  float64 // Distance from the node to the panel's junction end
	midpoint float64 // Distance from the node to the panel midpoint
}

type slotKey struct {
	chainID string
	row     int
	face    model.Face
}

type panelIndex map[slotKey][]model.Panel

// Optimize returns the adjustments keyed by panel key. Panels in excluded are
// never adjusted, and neither is their partner at the same corner.
func (o *Optimizer) Optimize(chains []model.WallChain, junctions []model.JunctionNode, panels []model.Panel, excluded map[string]bool) map[string]model.CornerAdjustment {
	out := make(map[string]model.CornerAdjustment)
	byID := make(map[string]model.WallChain, len(chains))
	for _, c := range chains {
		byID[c.ID] = c
	}
	idx := make(panelIndex)
	maxRow := -1
	for _, p := range panels {
		if p.KindName() == model.KindTopoClosure {
			continue
		}
		k := slotKey{p.ChainID, p.Row, p.Face}
		idx[k] = append(idx[k], p)
		if p.Row > maxRow {
			maxRow = p.Row
		}
	}

	for _, n := range junctions {
		if n.Type != model.JunctionL || len(n.Arms) != 2 {
			continue
		}
		arms, ok := o.arms(n, byID)
		if !ok {
			continue
		}
		target, ok := o.target(arms)
		if !ok {
			continue
		}
		for row := 0; row <= maxRow; row++ {
			a, okA := o.find(idx, arms[0], row)
			b, okB := o.find(idx, arms[1], row)
			if (okA && excluded[a.panel.Key]) || (okB && excluded[b.panel.Key]) {
				continue
			}
			switch {
			case okA && okB:
				o.pair(out, n, row, arms, [2]candidate{a, b}, target)
			case okA:
				o.single(out, n, row, arms[0], a, o.hasReference(idx, arms[1], row, excluded), target)
			case okB:
				o.single(out, n, row, arms[1], b, o.hasReference(idx, arms[0], row, excluded), target)
			}
		}
	}
	return out
}

// arms resolves both arms of an L node, LEAD first.
func (o *Optimizer) arms(n model.JunctionNode, chains map[string]model.WallChain) ([2]arm, bool) {
	var out [2]arm
	for i, a := range n.Arms {
		c, ok := chains[a.ChainID]
		if !ok {
			return out, false
		}
		out[i] = arm{chain: c, atEnd: !a.AtStart, dir: geometry.Unit(a.OutwardAngle)}
	}
	for i := range out {
		other := out[1-i].dir
		face := model.FacePositive
		if face.Normal(out[i].chain).Dot(other) <= 0 {
			face = model.FaceNegative
		}
		out[i].face = face
		out[i].inside = face.Normal(out[i].chain)
		out[i].role = model.RoleSeat
		if out[i].chain.ID == n.Primary {
			out[i].role = model.RoleLead
		}
	}
	if out[1].role == model.RoleLead {
		out[0], out[1] = out[1], out[0]
	}
	return out, out[0].role == model.RoleLead
}

// target returns, per arm, the distance from the node to the point where the
// two interior face lines meet.
func (o *Optimizer) target(arms [2]arm) ([2]float64, bool) {
	h := o.Module.InteriorFaceOffset()
	uA, uB := arms[0].dir, arms[1].dir
	nA, nB := arms[0].inside, arms[1].inside

	// node + h·nA + s·uA = node + h·nB + t·uB
	A := mat.NewDense(2, 2, []float64{
		uA.X, -uB.X,
		uA.Y, -uB.Y,
	})
	b := mat.NewVecDense(2, []float64{h * (nB.X - nA.X), h * (nB.Y - nA.Y)})
	var x mat.VecDense
	if err := x.SolveVec(A, b); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return [2]float64{}, false
		}
	}
	s, t := x.AtVec(0), x.AtVec(1)
	if math.IsNaN(s) || math.IsNaN(t) || math.IsInf(s, 0) || math.IsInf(t, 0) {
		return [2]float64{}, false
	}
	return [2]float64{s, t}, true
}

// find returns the interior panel at the node end of the arm in the row.
func (o *Optimizer) find(idx panelIndex, a arm, row int) (candidate, bool) {
	var best candidate
	found := false
	for _, p := range idx[slotKey{a.chain.ID, row, a.face}] {
		if p.Side != model.SideInterior {
			continue
		}
		var gap float64
		if a.atEnd {
			gap = a.chain.Length - p.End
		} else {
			gap = p.Start
		}
		if gap > eps {
			continue
		}
		best = candidate{panel: p, nodeGap: math.Max(0, gap)}
		best.midpoint = best.nodeGap + p.Width()/2
		found = true
		break
	}
	return best, found
}

// hasReference looks for a usable panel on the other arm in the row or the
// rows directly above and below.
func (o *Optimizer) hasReference(idx panelIndex, a arm, row int, excluded map[string]bool) bool {
	for _, r := range []int{row, row - 1, row + 1} {
		if r < 0 {
			continue
		}
		if c, ok := o.find(idx, a, r); ok && !excluded[c.panel.Key] {
			return true
		}
	}
	return false
}

type evaluation struct {
	gap, overlap, edge float64
}

func (o *Optimizer) evaluate(c candidate, units, target float64) evaluation {
	t := o.Module.Tooth()
	edge := c.nodeGap + o.Module.CornerCut() - units*t
	return evaluation{
		gap:     math.Abs(edge - target),
		overlap: math.Max(0, target-edge),
		edge:    edge,
	}
}

// pair scores H1 (LEAD 2.5, SEAT 1.5) against H2 (swapped) and records both
// adjustments.
func (o *Optimizer) pair(out map[string]model.CornerAdjustment, n model.JunctionNode, row int, arms [2]arm, cs [2]candidate, target [2]float64) {
	units := [2][2]float64{
		{model.OffsetLargeTeeth, model.OffsetSmallTeeth},
		{model.OffsetSmallTeeth, model.OffsetLargeTeeth},
	}
	var scores [2]float64
	var evals [2][2]evaluation
	for h := range units {
		for i := range cs {
			evals[h][i] = o.evaluate(cs[i], units[h][i], target[i])
			scores[h] += evals[h][i].gap + overlapWeight*evals[h][i].overlap
		}
		scores[h] += stepWeight * math.Abs(evals[h][0].gap-evals[h][1].gap)
	}

	choice, reason := 0, model.CornerReasonH1
	switch {
	case math.Abs(scores[0]-scores[1]) <= tieThreshold:
		// The panel nearer the node needs the larger clearance.
		switch {
		case cs[1].midpoint < cs[0].midpoint-eps:
			choice, reason = 1, model.CornerReasonTieCloser
		case cs[0].midpoint < cs[1].midpoint-eps:
			choice, reason = 0, model.CornerReasonTieCloser
		default:
			choice, reason = 0, model.CornerReasonTieLead
		}
	case scores[1] < scores[0]:
		choice, reason = 1, model.CornerReasonH2
	}

	for i := range cs {
		ev := evals[choice][i]
		out[cs[i].panel.Key] = o.adjustment(n, row, arms[i], cs[i], units[choice][i], reason, model.CornerDiagnostics{
			ScoreH1:      scores[0],
			ScoreH2:      scores[1],
			Target:       target[i],
			CutEdge:      ev.edge,
			GapError:     ev.gap,
			Overlap:      ev.overlap,
			Step:         math.Abs(evals[choice][0].gap - evals[choice][1].gap),
			HasReference: true,
			NodeDistance: cs[i].midpoint,
		})
	}
}

// single handles a corner where only one arm has an interior panel in the
// row. Without any reference the role default applies.
func (o *Optimizer) single(out map[string]model.CornerAdjustment, n model.JunctionNode, row int, a arm, c candidate, hasRef bool, target [2]float64) {
	t := target[0]
	if a.role == model.RoleSeat {
		t = target[1]
	}
	units := model.OffsetSmallTeeth
	if a.role == model.RoleLead {
		units = model.OffsetLargeTeeth
	}
	reason := model.CornerReasonNoReference
	if hasRef {
		other := model.OffsetLargeTeeth + model.OffsetSmallTeeth - units
		def, alt := o.evaluate(c, units, t), o.evaluate(c, other, t)
		reason = model.CornerReasonH1
		if alt.gap+overlapWeight*alt.overlap < def.gap+overlapWeight*def.overlap-tieThreshold {
			units, reason = other, model.CornerReasonH2
		}
	}
	ev := o.evaluate(c, units, t)
	out[c.panel.Key] = o.adjustment(n, row, a, c, units, reason, model.CornerDiagnostics{
		Target:       t,
		CutEdge:      ev.edge,
		GapError:     ev.gap,
		Overlap:      ev.overlap,
		HasReference: hasRef,
		NodeDistance: c.midpoint,
	})
}

func (o *Optimizer) adjustment(n model.JunctionNode, row int, a arm, c candidate, units float64, reason string, d model.CornerDiagnostics) model.CornerAdjustment {
	return model.CornerAdjustment{
		PanelKey:    c.panel.Key,
		ChainID:     a.chain.ID,
		JunctionID:  n.ID,
		Row:         row,
		Role:        a.role,
		CutLength:   o.Module.CornerCut(),
		Offset:      units * o.Module.Tooth(),
		OffsetUnits: units,
		Reason:      reason,
		Diagnostics: d,
	}
}
