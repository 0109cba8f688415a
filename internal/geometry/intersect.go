package geometry

import (
	"math"
	"sort"

	"github.com/paulmach/orb"

	"github.com/piwi3910/wallplan/internal/model"
)

// Segment is a directed planar segment.
type Segment struct {
	A model.Point2D
	B model.Point2D
}

// Length returns the segment length.
func (s Segment) Length() float64 {
	return s.A.Dist(s.B)
}

// Bound returns the bounding box of the segment.
func (s Segment) Bound() orb.Bound {
	return Bounds([]model.Point2D{s.A, s.B})
}

// IntersectSegments returns the intersection point of two non-parallel
// segments and its parameters along each, if the segments meet within eps
// (parameter units) of their extents.
func IntersectSegments(a1, a2, b1, b2 model.Point2D, eps float64) (model.Point2D, float64, float64, bool) {
	r := a2.Sub(a1)
	s := b2.Sub(b1)
	denom := r.Cross(s)
	if math.Abs(denom) < Epsilon*math.Max(1, r.Len()*s.Len()) {
		return model.Point2D{}, 0, 0, false
	}
	qp := b1.Sub(a1)
	t := qp.Cross(s) / denom
	u := qp.Cross(r) / denom
	if t < -eps || t > 1+eps || u < -eps || u > 1+eps {
		return model.Point2D{}, 0, 0, false
	}
	return a1.Add(r.Scale(t)), t, u, true
}

// Piece is one part of a split input segment.
type Piece struct {
	Segment
	Parent int // Index of the segment it was cut from
}

// SplitAll splits every segment at true crossings and at T-touches, where an
// endpoint of one segment lands within tol of the interior of another.
// Split points closer than tol to an existing endpoint are ignored. It returns
// the pieces in parent order and the number of pieces added.
func SplitAll(segs []Segment, tol float64) ([]Piece, int) {
	cuts := make([][]float64, len(segs))

	order := make([]int, len(segs))
	for i := range order {
		order[i] = i
	}
	bounds := make([]orb.Bound, len(segs))
	for i, s := range segs {
		bounds[i] = s.Bound().Pad(tol)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return bounds[order[i]].Min[0] < bounds[order[j]].Min[0]
	})

	addCut := func(i int, p model.Point2D) {
		s := segs[i]
		l := s.Length()
		if l < Epsilon {
			return
		}
		t, q := ProjectOnSegment(p, s.A, s.B)
		if q.Dist(s.A) <= tol || q.Dist(s.B) <= tol {
			return
		}
		cuts[i] = append(cuts[i], t)
	}

	// Sweep along x: only pairs whose padded bounds overlap are tested.
	for oi, i := range order {
		for _, j := range order[oi+1:] {
			if bounds[j].Min[0] > bounds[i].Max[0] {
				break
			}
			if !bounds[i].Intersects(bounds[j]) {
				continue
			}
			si, sj := segs[i], segs[j]
			if p, _, _, ok := IntersectSegments(si.A, si.B, sj.A, sj.B, 0); ok {
				addCut(i, p)
				addCut(j, p)
			}
			for _, e := range []model.Point2D{sj.A, sj.B} {
				if DistPointSegment(e, si.A, si.B) <= tol {
					addCut(i, e)
				}
			}
			for _, e := range []model.Point2D{si.A, si.B} {
				if DistPointSegment(e, sj.A, sj.B) <= tol {
					addCut(j, e)
				}
			}
		}
	}

	var pieces []Piece
	added := 0
	for i, s := range segs {
		ts := cuts[i]
		if len(ts) == 0 {
			pieces = append(pieces, Piece{Segment: s, Parent: i})
			continue
		}
		sort.Float64s(ts)
		l := s.Length()
		prevT := 0.0
		prev := s.A
		for _, t := range ts {
			if (t-prevT)*l <= tol {
				continue
			}
			p := s.A.Add(s.B.Sub(s.A).Scale(t))
			pieces = append(pieces, Piece{Segment: Segment{A: prev, B: p}, Parent: i})
			added++
			prev, prevT = p, t
		}
		pieces = append(pieces, Piece{Segment: Segment{A: prev, B: s.B}, Parent: i})
	}
	return pieces, added
}
