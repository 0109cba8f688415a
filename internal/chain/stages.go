package chain

import (
	"math"
	"sort"

	"github.com/piwi3910/wallplan/internal/geometry"
	"github.com/piwi3910/wallplan/internal/model"
)

// BridgeLayer tags synthetic segments created by gap bridging.
const BridgeLayer = "bridge"

// seg is a working segment carried through the pipeline stages.
type seg struct {
	a, b  model.Point2D
	src   []int // Contributing input segment indices, sorted
	layer string
}

func (s seg) length() float64 { return s.a.Dist(s.b) }

func (s seg) angle() float64 { return geometry.UndirectedAngle(s.a, s.b) }

// far returns the endpoint of s that is not p.
func (s seg) far(p model.Point2D) model.Point2D {
	if s.a == p {
		return s.b
	}
	return s.a
}

type pkey struct{ x, y float64 }

func keyOf(p model.Point2D) pkey { return pkey{p.X, p.Y} }

func lessPoint(a, b model.Point2D) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

func mergeSrc(lists ...[]int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, l := range lists {
		for _, v := range l {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	sort.Ints(out)
	return out
}

// endpointMap returns, for every endpoint, the indices of segments touching it.
func endpointMap(segs []seg) map[pkey][]int {
	adj := make(map[pkey][]int, 2*len(segs))
	for i, s := range segs {
		adj[keyOf(s.a)] = append(adj[keyOf(s.a)], i)
		adj[keyOf(s.b)] = append(adj[keyOf(s.b)], i)
	}
	return adj
}

// filterNoise drops segments shorter than the noise floor and segments with
// non-finite coordinates.
func filterNoise(input []model.WallSegment, floor float64) ([]seg, int) {
	out := make([]seg, 0, len(input))
	removed := 0
	for i, s := range input {
		if !finite(s.Start) || !finite(s.End) || s.Length() < floor {
			removed++
			continue
		}
		out = append(out, seg{a: s.Start, b: s.End, src: []int{i}, layer: s.Layer})
	}
	return out, removed
}

func finite(p model.Point2D) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// normalize snaps all endpoints to cluster centroids, drops segments that
// collapsed to a point and removes exact duplicates (in either direction).
func normalize(segs []seg, snap float64) ([]seg, int, int) {
	points := make([]model.Point2D, 0, 2*len(segs))
	for _, s := range segs {
		points = append(points, s.a, s.b)
	}
	snapped, _ := geometry.SnapPoints(points, snap)

	type dupKey struct{ lo, hi pkey }
	seen := make(map[dupKey]int)
	out := make([]seg, 0, len(segs))
	collapsed, dups := 0, 0
	for i, s := range segs {
		a, b := snapped[2*i], snapped[2*i+1]
		if a.Dist(b) < geometry.Epsilon {
			collapsed++
			continue
		}
		lo, hi := a, b
		if lessPoint(hi, lo) {
			lo, hi = hi, lo
		}
		k := dupKey{keyOf(lo), keyOf(hi)}
		if j, ok := seen[k]; ok {
			out[j].src = mergeSrc(out[j].src, s.src)
			dups++
			continue
		}
		seen[k] = len(out)
		out = append(out, seg{a: a, b: b, src: s.src, layer: s.layer})
	}
	return out, collapsed, dups
}

// mergeAxisOverlaps unions horizontal (and vertical) segments that lie on the
// same grid line within snap and whose intervals strictly overlap. Touching
// intervals are left for the graph reduction.
func mergeAxisOverlaps(segs []seg, snap, angTol float64) ([]seg, int) {
	var horiz, vert []int
	for i, s := range segs {
		ang := s.angle()
		switch {
		case geometry.AngleDiff(ang, 0) <= angTol:
			horiz = append(horiz, i)
		case geometry.AngleDiff(ang, math.Pi/2) <= angTol:
			vert = append(vert, i)
		}
	}

	replaced := make(map[int]seg)
	absorbed := make(map[int]bool)
	merged := 0
	merged += mergeAxisGroup(segs, horiz, false, snap, replaced, absorbed)
	merged += mergeAxisGroup(segs, vert, true, snap, replaced, absorbed)

	out := make([]seg, 0, len(segs)-merged)
	for i, s := range segs {
		if absorbed[i] {
			continue
		}
		if r, ok := replaced[i]; ok {
			s = r
		}
		out = append(out, s)
	}
	return out, merged
}

type axisInterval struct {
	idx    int
	c      float64 // Constant coordinate
	lo, hi float64
}

func mergeAxisGroup(segs []seg, idxs []int, vertical bool, snap float64, replaced map[int]seg, absorbed map[int]bool) int {
	ivs := make([]axisInterval, 0, len(idxs))
	for _, i := range idxs {
		s := segs[i]
		iv := axisInterval{idx: i}
		if vertical {
			iv.c = (s.a.X + s.b.X) / 2
			iv.lo, iv.hi = math.Min(s.a.Y, s.b.Y), math.Max(s.a.Y, s.b.Y)
		} else {
			iv.c = (s.a.Y + s.b.Y) / 2
			iv.lo, iv.hi = math.Min(s.a.X, s.b.X), math.Max(s.a.X, s.b.X)
		}
		ivs = append(ivs, iv)
	}
	sort.SliceStable(ivs, func(i, j int) bool {
		if ivs[i].c != ivs[j].c {
			return ivs[i].c < ivs[j].c
		}
		return ivs[i].idx < ivs[j].idx
	})

	merged := 0
	for start := 0; start < len(ivs); {
		end := start + 1
		for end < len(ivs) && ivs[end].c-ivs[start].c <= snap {
			end++
		}
		line := append([]axisInterval(nil), ivs[start:end]...)
		sort.SliceStable(line, func(i, j int) bool {
			if line[i].lo != line[j].lo {
				return line[i].lo < line[j].lo
			}
			return line[i].idx < line[j].idx
		})

		for k := 0; k < len(line); {
			group := []axisInterval{line[k]}
			hi := line[k].hi
			m := k + 1
			for m < len(line) && line[m].lo < hi-geometry.Epsilon {
				group = append(group, line[m])
				hi = math.Max(hi, line[m].hi)
				m++
			}
			if len(group) > 1 {
				merged += len(group) - 1
				emitAxisMerge(segs, group, vertical, hi, replaced, absorbed)
			}
			k = m
		}
		start = end
	}
	return merged
}

func emitAxisMerge(segs []seg, group []axisInterval, vertical bool, hi float64, replaced map[int]seg, absorbed map[int]bool) {
	lowest := group[0].idx
	longest := group[0]
	lo := group[0].lo
	var srcs [][]int
	for _, iv := range group {
		if iv.idx < lowest {
			lowest = iv.idx
		}
		if iv.hi-iv.lo > longest.hi-longest.lo {
			longest = iv
		}
		lo = math.Min(lo, iv.lo)
		srcs = append(srcs, segs[iv.idx].src)
	}

	s := seg{src: mergeSrc(srcs...), layer: segs[longest.idx].layer}
	if vertical {
		s.a = model.Point2D{X: longest.c, Y: lo}
		s.b = model.Point2D{X: longest.c, Y: hi}
	} else {
		s.a = model.Point2D{X: lo, Y: longest.c}
		s.b = model.Point2D{X: hi, Y: longest.c}
	}
	for _, iv := range group {
		if iv.idx != lowest {
			absorbed[iv.idx] = true
		}
	}
	replaced[lowest] = s
}

// removeJogs collapses Z-shaped drafting jogs: a short segment whose two ends
// each continue into one longer segment, the two continuing in opposite
// directions along parallel lines. The far vertex of the shorter neighbour is
// moved onto the longer neighbour's line and the three segments become one.
// It returns the new segments, the number of jogs removed and whether the
// iteration cap was reached with jogs left. A limit that is not positive
// derives the cap from the segment count.
func removeJogs(segs []seg, jogMax, angTol float64, limit int) ([]seg, int, bool) {
	if limit <= 0 {
		limit = len(segs) + 1
	}
	removed := 0
	for {
		next, ok := removeFirstJog(segs, jogMax, angTol)
		if !ok {
			return segs, removed, false
		}
		if removed >= limit {
			return segs, removed, true
		}
		segs = next
		removed++
	}
}

func removeFirstJog(segs []seg, jogMax, angTol float64) ([]seg, bool) {
	adj := endpointMap(segs)
	for i, s := range segs {
		l := s.length()
		if l > jogMax {
			continue
		}
		ea, eb := adj[keyOf(s.a)], adj[keyOf(s.b)]
		if len(ea) != 2 || len(eb) != 2 {
			continue
		}
		n1, n2 := otherIndex(ea, i), otherIndex(eb, i)
		if n1 < 0 || n2 < 0 || n1 == n2 {
			continue
		}
		s1, s2 := segs[n1], segs[n2]
		if s1.length() <= l || s2.length() <= l {
			continue
		}
		if geometry.Colinear(s.angle(), s1.angle(), angTol) || !geometry.Colinear(s1.angle(), s2.angle(), angTol) {
			continue
		}
		d1 := s1.far(s.a).Sub(s.a)
		d2 := s2.far(s.b).Sub(s.b)
		if !geometry.Opposite(geometry.AngleOf(d1), geometry.AngleOf(d2), angTol) {
			continue
		}

		long, short := n1, n2
		longJoint, shortJoint := s.a, s.b
		if s2.length() > s1.length() {
			long, short = n2, n1
			longJoint, shortJoint = s.b, s.a
		}
		farLong := segs[long].far(longJoint)
		moved := segs[short].far(shortJoint)
		target := projectOnLine(moved, farLong, longJoint)
		if target.Dist(farLong) < geometry.Epsilon {
			continue
		}

		joined := seg{
			a:     farLong,
			b:     target,
			src:   mergeSrc(segs[long].src, s.src, segs[short].src),
			layer: segs[long].layer,
		}
		out := make([]seg, 0, len(segs)-2)
		for j, o := range segs {
			switch j {
			case i, short:
				continue
			case long:
				out = append(out, joined)
				continue
			}
			if o.a == moved {
				o.a = target
			}
			if o.b == moved {
				o.b = target
			}
			if o.length() < geometry.Epsilon {
				continue
			}
			out = append(out, o)
		}
		return out, true
	}
	return segs, false
}

func otherIndex(ids []int, self int) int {
	for _, id := range ids {
		if id != self {
			return id
		}
	}
	return -1
}

// projectOnLine projects p onto the infinite line through a and b.
func projectOnLine(p, a, b model.Point2D) model.Point2D {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 < geometry.Epsilon {
		return a
	}
	return a.Add(ab.Scale(p.Sub(a).Dot(ab) / l2))
}

type freeEnd struct {
	seg int
	pt  model.Point2D
	dir model.Point2D // Unit vector pointing out of the segment at pt
}

// bridgeGaps joins pairs of free ends that face each other along their own
// segments, are at most gap apart and deviate laterally by at most snap.
// Closest pairs are bridged first and every end is used once.
func bridgeGaps(segs []seg, gap, snap float64) ([]seg, int) {
	adj := endpointMap(segs)
	var ends []freeEnd
	for i, s := range segs {
		l := s.length()
		if l < geometry.Epsilon {
			continue
		}
		if len(adj[keyOf(s.a)]) == 1 {
			ends = append(ends, freeEnd{seg: i, pt: s.a, dir: s.a.Sub(s.b).Scale(1 / l)})
		}
		if len(adj[keyOf(s.b)]) == 1 {
			ends = append(ends, freeEnd{seg: i, pt: s.b, dir: s.b.Sub(s.a).Scale(1 / l)})
		}
	}

	type candidate struct {
		i, j int
		dist float64
	}
	var cands []candidate
	for i := 0; i < len(ends); i++ {
		for j := i + 1; j < len(ends); j++ {
			ei, ej := ends[i], ends[j]
			if ei.seg == ej.seg {
				continue
			}
			g := ej.pt.Sub(ei.pt)
			d := g.Len()
			if d > gap || d < geometry.Epsilon {
				continue
			}
			if g.Dot(ei.dir) <= 0 || math.Abs(ei.dir.Cross(g)) > snap {
				continue
			}
			back := g.Scale(-1)
			if back.Dot(ej.dir) <= 0 || math.Abs(ej.dir.Cross(back)) > snap {
				continue
			}
			cands = append(cands, candidate{i: i, j: j, dist: d})
		}
	}
	sort.SliceStable(cands, func(a, b int) bool {
		return cands[a].dist < cands[b].dist
	})

	used := make(map[int]bool)
	bridged := 0
	for _, c := range cands {
		if used[c.i] || used[c.j] {
			continue
		}
		used[c.i], used[c.j] = true, true
		segs = append(segs, seg{a: ends[c.i].pt, b: ends[c.j].pt, layer: BridgeLayer})
		bridged++
	}
	return segs, bridged
}

// splitIntersections splits segments at crossings and T-touches.
func splitIntersections(segs []seg, snap float64) ([]seg, int) {
	gs := make([]geometry.Segment, len(segs))
	for i, s := range segs {
		gs[i] = geometry.Segment{A: s.a, B: s.b}
	}
	pieces, added := geometry.SplitAll(gs, snap)
	out := make([]seg, len(pieces))
	for i, p := range pieces {
		parent := segs[p.Parent]
		out[i] = seg{a: p.A, b: p.B, src: parent.src, layer: parent.layer}
	}
	return out, added
}
