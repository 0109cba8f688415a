package layout

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/wallplan/internal/chain"
	"github.com/piwi3910/wallplan/internal/footprint"
	"github.com/piwi3910/wallplan/internal/model"
	"github.com/piwi3910/wallplan/internal/topology"
)

type fixture struct {
	chains    []model.WallChain
	junctions []model.JunctionNode
	sides     map[string]model.ChainSide
}

func build(t *testing.T, segs ...model.WallSegment) fixture {
	t.Helper()
	p, ok := model.FindPreset(model.DefaultPresets(), model.PresetConservative)
	require.True(t, ok)
	res, err := chain.New(p, 1200).Build(segs)
	require.NoError(t, err)
	js := topology.New(p.AngleTolerance()).Classify(res.Junctions)
	fp := footprint.New(p.Snap).Classify(res.Chains, nil)
	return fixture{chains: res.Chains, junctions: js, sides: fp.Sides}
}

func seg(x1, y1, x2, y2 float64) model.WallSegment {
	return model.NewWallSegment(x1, y1, x2, y2, "walls")
}

func rectangle(t *testing.T) fixture {
	return build(t,
		seg(0, 0, 6000, 0),
		seg(6000, 0, 6000, 4000),
		seg(6000, 4000, 0, 4000),
		seg(0, 4000, 0, 0),
	)
}

func (f fixture) layout(openings ...model.Opening) Result {
	return New(model.DefaultSettings()).Layout(f.chains, f.junctions, f.sides, openings)
}

// pieces returns the panels of one chain, row and face in offset order.
func pieces(res Result, chainID string, row int, face model.Face) []model.Panel {
	var out []model.Panel
	for _, p := range res.Panels {
		if p.ChainID == chainID && p.Row == row && p.Face == face {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// assertCovered checks that the panels of every face plus the closures of the
// row tile [0, length] without gaps or overlaps.
func assertCovered(t *testing.T, res Result, c model.WallChain, rows int) {
	t.Helper()
	for row := 0; row < rows; row++ {
		for _, face := range []model.Face{model.FacePositive, model.FaceNegative} {
			type span struct{ a, b float64 }
			var spans []span
			for _, p := range pieces(res, c.ID, row, face) {
				if p.KindName() != model.KindTopoClosure {
					spans = append(spans, span{p.Start, p.End})
				}
			}
			for _, cl := range res.Closures {
				if cl.ChainID == c.ID && cl.Row == row {
					a, b := cl.Interval()
					spans = append(spans, span{a, b})
				}
			}
			sort.Slice(spans, func(i, j int) bool { return spans[i].a < spans[j].a })
			require.NotEmpty(t, spans, "chain %s row %d %s", c.ID, row, face)
			x := 0.0
			for _, s := range spans {
				assert.InDelta(t, x, s.a, 1e-6, "chain %s row %d %s: gap or overlap", c.ID, row, face)
				x = s.b
			}
			assert.InDelta(t, c.Length, x, 1e-6, "chain %s row %d %s: end not covered", c.ID, row, face)
		}
	}
}

// ─── Example rectangle ──────────────────────────────────

func TestLayout_RectangleExample(t *testing.T) {
	f := rectangle(t)
	require.Len(t, f.chains, 4)
	res := f.layout()
	rows := model.DefaultSettings().Rows()
	require.Equal(t, 7, rows)

	for _, c := range f.chains {
		for row := 0; row < rows; row++ {
			for _, face := range []model.Face{model.FacePositive, model.FaceNegative} {
				ps := pieces(res, c.ID, row, face)
				var widths []float64
				for _, p := range ps {
					widths = append(widths, math.Round(p.Width()))
				}
				switch math.Round(c.Length) {
				case 6000:
					assert.Equal(t, []float64{1200, 1200, 1200, 1200, 1200}, widths)
				case 4000:
					assert.Equal(t, []float64{1200, 1200, 400, 1200}, widths)
					assert.Equal(t, model.KindEndCut, ps[2].KindName(), "remainder sits in the middle")
					assert.InDelta(t, 400, ps[2].Kind.(model.EndCut).Remainder, 1e-9)
				default:
					t.Fatalf("unexpected chain length %v", c.Length)
				}
			}
		}
	}
	assert.Empty(t, res.Closures, "a closed loop of corners needs no closures")
	assert.Len(t, res.Panels, 7*2*(5+5+4+4))
	for _, c := range f.chains {
		assertCovered(t, res, c, rows)
	}
}

func TestLayout_CornerInterlock(t *testing.T) {
	f := rectangle(t)
	res := f.layout()

	for _, n := range f.junctions {
		require.Equal(t, model.JunctionL, n.Type)
		for row := 0; row < 2; row++ {
			var exteriorCuts, interiorCuts int
			for _, p := range res.Panels {
				cut, ok := p.Kind.(model.CornerCut)
				if !ok || cut.JunctionID != n.ID || p.Row != row {
					continue
				}
				if p.Side == model.SideExterior {
					exteriorCuts++
				} else {
					interiorCuts++
				}
			}
			assert.Equal(t, 1, exteriorCuts, "junction %s row %d: one outer arm is cut", n.ID, row)
			assert.Equal(t, 2, interiorCuts, "junction %s row %d: both inner arms are cut", n.ID, row)
		}
	}
}

// ─── Invariants ─────────────────────────────────────────

func TestLayout_WidthInvariant(t *testing.T) {
	f := build(t,
		seg(0, 0, 7350, 0),
		seg(7350, 0, 7350, 5130),
		seg(7350, 5130, 0, 5130),
		seg(0, 5130, 0, 0),
		seg(3100, 0, 3100, 5130),
	)
	res := f.layout(model.Opening{ChainID: f.chains[0].ID, Offset: 700, Width: 900, Sill: 0, Height: 2100})
	require.NotEmpty(t, res.Panels)
	for _, p := range res.Panels {
		assert.LessOrEqual(t, p.Width(), 1200+1e-6, "panel %s", p.Key)
		assert.Greater(t, p.Width(), 0.0, "panel %s", p.Key)
	}
}

func TestLayout_FreeWallClosures(t *testing.T) {
	f := build(t, seg(0, 0, 3000, 0))
	res := f.layout()
	rows := model.DefaultSettings().Rows()

	require.Len(t, res.Closures, 2*rows, "one closure per free end per row")
	for _, c := range res.Closures {
		assert.Equal(t, model.ClosureFreeEnd, c.Reason)
		assert.InDelta(t, 150, c.Width, 1e-9)
		assert.Contains(t, []float64{75, 2925}, c.Offset, "closure is inset by half its width")
	}

	c := f.chains[0]
	ps := pieces(res, c.ID, 0, model.FaceNegative)
	if ps[0].KindName() == model.KindTopoClosure {
		ps = pieces(res, c.ID, 0, model.FacePositive)
	}
	var widths []float64
	for _, p := range ps {
		widths = append(widths, math.Round(p.Width()))
	}
	assert.Equal(t, []float64{1200, 300, 1200}, widths)
	assertCovered(t, res, c, rows)
}

func TestLayout_TeeClosures(t *testing.T) {
	f := build(t,
		seg(0, 0, 6000, 0),
		seg(3000, 0, 3000, 3000),
	)
	res := f.layout()
	rows := model.DefaultSettings().Rows()

	byReason := make(map[model.ClosureReason]int)
	for _, c := range res.Closures {
		byReason[c.Reason]++
	}
	assert.Equal(t, 3*rows, byReason[model.ClosureFreeEnd])
	assert.Equal(t, rows, byReason[model.ClosureTee], "the main arms take turns")
	for _, c := range f.chains {
		assertCovered(t, res, c, rows)
	}
}

func TestLayout_ShortFreeWallGetsBothClosures(t *testing.T) {
	f := build(t, seg(0, 0, 250, 0))
	res := f.layout()
	rows := model.DefaultSettings().Rows()

	require.Len(t, res.Closures, 2*rows, "one closure per free end per row")
	for row := 0; row < rows; row++ {
		nodes := make(map[string]bool)
		for _, c := range res.Closures {
			if c.Row != row {
				continue
			}
			assert.Equal(t, model.ClosureFreeEnd, c.Reason)
			assert.InDelta(t, 125, c.Width, 1e-9, "the two closures share the wall")
			nodes[c.NodeID] = true
		}
		assert.Len(t, nodes, 2, "row %d: both ends are closed", row)
	}
	for _, p := range res.Panels {
		assert.Equal(t, model.KindTopoClosure, p.KindName(), "panel %s", p.Key)
	}
	assertCovered(t, res, f.chains[0], rows)
}

func TestLayout_CrossClosures(t *testing.T) {
	f := build(t,
		seg(0, 3000, 6000, 3000),
		seg(3000, 0, 3000, 6000),
	)
	require.Len(t, f.chains, 4)
	var cross model.JunctionNode
	for _, n := range f.junctions {
		if n.Type == model.JunctionX {
			cross = n
		}
	}
	require.Equal(t, model.JunctionX, cross.Type)

	res := f.layout()
	rows := model.DefaultSettings().Rows()

	byReason := make(map[model.ClosureReason]int)
	for _, c := range res.Closures {
		byReason[c.Reason]++
		if c.Reason == model.ClosureCross {
			assert.Equal(t, cross.ID, c.NodeID)
		}
	}
	assert.Equal(t, 4*rows, byReason[model.ClosureFreeEnd])
	assert.Equal(t, 2*rows, byReason[model.ClosureCross], "two arms take the closure in each row")

	for row := 0; row < rows; row++ {
		closed := make(map[string]bool)
		for _, c := range res.Closures {
			if c.Row == row && c.Reason == model.ClosureCross {
				closed[c.ChainID] = true
			}
		}
		assert.Len(t, closed, 2, "row %d", row)
		for _, c := range f.chains {
			assert.Equal(t, (cross.ArmIndex(c.ID)+row)%2 == 0, closed[c.ID], "chain %s row %d", c.ID, row)
		}
	}
	for _, c := range f.chains {
		assertCovered(t, res, c, rows)
	}
}

// ─── Short runs between corners ─────────────────────────

func TestLayout_ShortRunSplitsBetweenCaps(t *testing.T) {
	f := build(t,
		seg(0, 0, 6000, 0),
		seg(6000, 0, 6000, 1800),
		seg(6000, 1800, 0, 1800),
		seg(0, 1800, 0, 0),
	)
	require.Len(t, f.chains, 4)
	res := f.layout()
	rows := model.DefaultSettings().Rows()

	short := 0
	for _, c := range f.chains {
		assertCovered(t, res, c, rows)
		if math.Round(c.Length) != 1800 {
			continue
		}
		short++
		for row := 0; row < rows; row++ {
			for _, face := range []model.Face{model.FacePositive, model.FaceNegative} {
				ps := pieces(res, c.ID, row, face)
				require.Len(t, ps, 2, "chain %s row %d %s", c.ID, row, face)
				head, ok := ps[0].Kind.(model.CornerCut)
				require.True(t, ok, "junction-adjacent piece %s is a cap", ps[0].Key)
				tail, ok := ps[1].Kind.(model.CornerCut)
				require.True(t, ok, "junction-adjacent piece %s is a cap", ps[1].Key)
				assert.Equal(t, c.StartNode, head.JunctionID)
				assert.Equal(t, c.EndNode, tail.JunctionID)
				assert.InDelta(t, 900, ps[0].Width(), 1e-6)
				assert.InDelta(t, 900, ps[1].Width(), 1e-6)
			}
		}
	}
	assert.Equal(t, 2, short)
	for _, p := range res.Panels {
		assert.NotEqual(t, model.KindEndCut, p.KindName(), "panel %s: no run here leaves a middle remainder", p.Key)
	}
}

func TestLayout_SubModuleRunIsCap(t *testing.T) {
	f := build(t,
		seg(0, 0, 6000, 0),
		seg(6000, 0, 6000, 1000),
		seg(6000, 1000, 0, 1000),
		seg(0, 1000, 0, 0),
	)
	res := f.layout()
	for _, c := range f.chains {
		if math.Round(c.Length) != 1000 {
			continue
		}
		for _, face := range []model.Face{model.FacePositive, model.FaceNegative} {
			ps := pieces(res, c.ID, 0, face)
			require.Len(t, ps, 1)
			assert.Equal(t, model.KindCornerCut, ps[0].KindName())
			assert.InDelta(t, 1000, ps[0].Width(), 1e-6)
		}
	}
}

// ─── Openings ───────────────────────────────────────────

func TestLayout_OpeningSubtractsRows(t *testing.T) {
	f := rectangle(t)
	var long model.WallChain
	for _, c := range f.chains {
		if math.Round(c.Length) == 6000 {
			long = c
			break
		}
	}
	door := model.Opening{ChainID: long.ID, Offset: 2000, Width: 900, Sill: 0, Height: 2100}
	res := f.layout(door)

	for _, p := range res.Panels {
		if p.ChainID != long.ID {
			continue
		}
		overlaps := p.Start < 2900-1e-6 && p.End > 2000+1e-6
		if p.Row <= 5 {
			assert.False(t, overlaps, "panel %s crosses the door", p.Key)
		}
	}
	top := pieces(res, long.ID, 6, model.FacePositive)
	assert.Len(t, top, 5, "the row above the door is uninterrupted")
}

func TestSubtractOpenings(t *testing.T) {
	ops := []model.Opening{
		{Offset: 1000, Width: 500, Sill: 900, Height: 1200},
		{Offset: 3000, Width: 800, Sill: 0, Height: 2000},
	}
	assert.Equal(t, []interval{{0, 1000}, {1500, 3000}, {3800, 5000}}, subtractOpenings(5000, ops, 1200, 1600))
	assert.Equal(t, []interval{{0, 3000}, {3800, 5000}}, subtractOpenings(5000, ops, 0, 400))
	assert.Equal(t, []interval{{0, 5000}}, subtractOpenings(5000, ops, 2400, 2800))
}

func TestLayout_SkipsShortInterval(t *testing.T) {
	f := build(t, seg(0, 0, 3000, 0))
	c := f.chains[0]
	// Leaves 200 mm at the start, 150 of which is the closure.
	res := f.layout(model.Opening{ChainID: c.ID, Offset: 200, Width: 900, Sill: 0, Height: 400})
	for _, p := range res.Panels {
		if p.Row == 0 && p.KindName() != model.KindTopoClosure {
			assert.GreaterOrEqual(t, p.Start, 1100.0-1e-6, "panel %s", p.Key)
		}
	}
}

// ─── Identity ───────────────────────────────────────────

func TestLayout_StableKeys(t *testing.T) {
	f := rectangle(t)
	a := f.layout()
	b := f.layout()
	require.Equal(t, a, b)

	seen := make(map[string]bool)
	for _, p := range a.Panels {
		assert.False(t, seen[p.Key], "duplicate key %s", p.Key)
		seen[p.Key] = true
		assert.Equal(t, model.PanelKey(p.ChainID, p.Row, p.Side, p.Slot), p.Key)
	}
}

func TestLayout_Empty(t *testing.T) {
	res := New(model.DefaultSettings()).Layout(nil, nil, nil, nil)
	assert.Empty(t, res.Panels)
	assert.Empty(t, res.Closures)
}
