// Package layout places modules and closure pieces along every chain, row by
// row, with junction-aware end caps.
package layout

import (
	"math"

	"github.com/piwi3910/wallplan/internal/model"
)

const eps = 1e-6

// Engine lays out panels for one set of settings.
type Engine struct {
	Settings model.LayoutSettings
}

// New creates a layout engine.
func New(settings model.LayoutSettings) *Engine {
	return &Engine{Settings: settings}
}

// Result holds the placed panels and closures.
type Result struct {
	Panels   []model.Panel
	Closures []model.ClosurePlacement
}

// rowState carries the per-chain, per-row counters and reservations shared
// by both faces.
type rowState struct {
	chain    model.WallChain
	row      int
	slot     int
	closures map[float64]bool // Closure offsets already emitted in this row
}

// Layout fills every chain in every row. Chains are processed in order, then
// rows, then opening-free intervals, then faces with the exterior face first.
// Closures reserve their interval on both faces but are emitted once, from
// the first face.
func (e *Engine) Layout(chains []model.WallChain, junctions []model.JunctionNode, sides map[string]model.ChainSide, openings []model.Opening) Result {
	nodes := make(map[string]*model.JunctionNode, len(junctions))
	for i := range junctions {
		nodes[junctions[i].ID] = &junctions[i]
	}
	byChain := make(map[string][]model.Opening)
	for _, o := range openings {
		byChain[o.ChainID] = append(byChain[o.ChainID], o)
	}

	var res Result
	rows := e.Settings.Rows()
	h := e.Settings.Module.Height
	for _, ch := range chains {
		if ch.Length < eps {
			continue
		}
		side, ok := sides[ch.ID]
		if !ok {
			side = model.ChainSide{ChainID: ch.ID, Classification: model.SideUnresolved, OutsideIsPositivePerp: true}
		}
		faces := faceOrder(side)
		startNode, endNode := nodes[ch.StartNode], nodes[ch.EndNode]

		for row := 0; row < rows; row++ {
			st := &rowState{chain: ch, row: row, closures: make(map[float64]bool)}
			for _, iv := range subtractOpenings(ch.Length, byChain[ch.ID], float64(row)*h, float64(row+1)*h) {
				for fi, face := range faces {
					var head, tail junctionCap
					if iv.lo <= eps {
						head = capFor(startNode, ch, row, face)
					}
					if iv.hi >= ch.Length-eps {
						tail = capFor(endNode, ch, row, face)
					}
					e.fill(st, iv, face, side.FaceSide(face), head, tail, fi == 0, &res)
				}
			}
		}
	}
	return res
}

// fill places the pieces of one interval on one face.
func (e *Engine) fill(st *rowState, iv interval, face model.Face, side model.Side, head, tail junctionCap, emitClosures bool, res *Result) {
	w := e.Settings.Module.ClosureWidth()
	p := e.Settings.Module.Width
	lo, hi := iv.lo, iv.hi

	if hi-lo <= eps {
		return
	}
	if head.kind == capClosure && tail.kind == capClosure && hi-lo < 2*w-eps {
		// Both free ends share a run shorter than two closures.
		half := (hi - lo) / 2
		e.closure(st, lo, half, side, face, head, emitClosures, res)
		e.closure(st, lo+half, half, side, face, tail, emitClosures, res)
		return
	}
	if head.kind == capClosure {
		cw := math.Min(w, hi-lo)
		e.closure(st, lo, cw, side, face, head, emitClosures, res)
		lo += cw
	}
	if tail.kind == capClosure && hi-lo > eps {
		cw := math.Min(w, hi-lo)
		e.closure(st, hi-cw, cw, side, face, tail, emitClosures, res)
		hi -= cw
	}

	r := hi - lo
	if r < e.Settings.MinCut || r <= eps {
		return
	}

	put := func(a, b float64, kind model.PanelKind) {
		e.panel(st, a, b, side, face, kind, res)
	}

	switch {
	case r <= p+eps:
		switch {
		case r < p-eps && head.module():
			put(lo, hi, head.cutKind())
		case r < p-eps && tail.module():
			put(lo, hi, tail.cutKind())
		case r < p-eps:
			put(lo, hi, model.EndCut{Remainder: r})
		case head.kind == capCornerCut:
			put(lo, hi, head.panelKind())
		case tail.kind == capCornerCut:
			put(lo, hi, tail.panelKind())
		default:
			put(lo, hi, model.FullModule{})
		}

	case r >= 2*p-eps:
		put(lo, lo+p, head.panelKind())
		middle := r - 2*p
		n := int(math.Floor(middle/p + eps))
		rem := middle - float64(n)*p
		left, right := (n+1)/2, n/2
		x := lo + p
		for i := 0; i < left; i++ {
			put(x, x+p, model.FullModule{})
			x += p
		}
		if rem > eps {
			put(x, x+rem, model.EndCut{Remainder: rem})
			x += rem
		}
		for i := 0; i < right; i++ {
			put(x, x+p, model.FullModule{})
			x += p
		}
		put(hi-p, hi, tail.panelKind())

	default:
		// One full module and one remainder. The remainder goes to the end
		// without a module cap. With caps on both ends there is no middle, so
		// the two caps split the run and are both cut.
		rem := r - p
		if head.module() && tail.module() {
			mid := lo + r/2
			put(lo, mid, head.cutKind())
			put(mid, hi, tail.cutKind())
			return
		}
		if tail.module() {
			put(lo, lo+rem, model.EndCut{Remainder: rem})
			put(lo+rem, hi, tail.panelKind())
			return
		}
		put(lo, lo+p, head.panelKind())
		put(lo+p, hi, model.EndCut{Remainder: rem})
	}
}

func (e *Engine) panel(st *rowState, a, b float64, side model.Side, face model.Face, kind model.PanelKind, res *Result) {
	key := model.PanelKey(st.chain.ID, st.row, side, st.slot)
	st.slot++
	res.Panels = append(res.Panels, model.Panel{
		Key:     key,
		ChainID: st.chain.ID,
		Row:     st.row,
		Side:    side,
		Face:    face,
		Slot:    st.slot - 1,
		Start:   a,
		End:     b,
		Kind:    kind,
	})
}

// closure emits a closure piece covering [a, a+w] when emit is set and it
// has not been emitted for this row yet.
func (e *Engine) closure(st *rowState, a, w float64, side model.Side, face model.Face, c junctionCap, emit bool, res *Result) {
	if !emit || st.closures[a] {
		return
	}
	st.closures[a] = true
	key := model.PanelKey(st.chain.ID, st.row, side, st.slot)
	e.panel(st, a, a+w, side, face, model.TopoClosure{Reason: c.reason}, res)
	center := a + w/2
	res.Closures = append(res.Closures, model.ClosurePlacement{
		Key:      key,
		ChainID:  st.chain.ID,
		NodeID:   c.junction,
		Row:      st.row,
		Offset:   center,
		Width:    w,
		Position: st.chain.PointAt(center),
		Reason:   c.reason,
	})
}
