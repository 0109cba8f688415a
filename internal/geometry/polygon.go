package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/piwi3910/wallplan/internal/model"
)

// Containment is the result of a point-in-polygon test.
type Containment int

const (
	Outside Containment = iota
	Inside
	OnEdge // Within the tolerance band of the boundary
)

func (c Containment) String() string {
	switch c {
	case Inside:
		return "inside"
	case OnEdge:
		return "on-edge"
	default:
		return "outside"
	}
}

// SignedArea returns the area of an implicitly closed polygon.
// Counter-clockwise polygons have positive area.
func SignedArea(poly []model.Point2D) float64 {
	if len(poly) < 3 {
		return 0
	}
	ring := ToRing(poly)
	area := math.Abs(planar.Area(ring))
	if ring.Orientation() == orb.CW {
		return -area
	}
	return area
}

// EnsureCCW returns the polygon wound counter-clockwise.
func EnsureCCW(poly []model.Point2D) []model.Point2D {
	if SignedArea(poly) >= 0 {
		return poly
	}
	out := make([]model.Point2D, len(poly))
	for i, p := range poly {
		out[len(poly)-1-i] = p
	}
	return out
}

// ToRing converts a polygon into a closed orb ring.
func ToRing(poly []model.Point2D) orb.Ring {
	ring := make(orb.Ring, 0, len(poly)+1)
	for _, p := range poly {
		ring = append(ring, orb.Point{p.X, p.Y})
	}
	if len(poly) > 0 {
		ring = append(ring, orb.Point{poly[0].X, poly[0].Y})
	}
	return ring
}

// Centroid returns the area centroid of the polygon, or the vertex average
// when the polygon has no area.
func Centroid(poly []model.Point2D) model.Point2D {
	if len(poly) == 0 {
		return model.Point2D{}
	}
	c, area := planar.CentroidArea(orb.Polygon{ToRing(poly)})
	if math.Abs(area) < Epsilon {
		var sum model.Point2D
		for _, p := range poly {
			sum = sum.Add(p)
		}
		return sum.Scale(1 / float64(len(poly)))
	}
	return model.Point2D{X: c[0], Y: c[1]}
}

// Bounds returns the bounding box of the points.
func Bounds(points []model.Point2D) orb.Bound {
	if len(points) == 0 {
		return orb.Bound{}
	}
	b := orb.Bound{Min: orb.Point{points[0].X, points[0].Y}, Max: orb.Point{points[0].X, points[0].Y}}
	for _, p := range points[1:] {
		b = b.Extend(orb.Point{p.X, p.Y})
	}
	return b
}

// Perimeter returns the closed boundary length of the polygon.
func Perimeter(poly []model.Point2D) float64 {
	var total float64
	for i := range poly {
		total += poly[i].Dist(poly[(i+1)%len(poly)])
	}
	return total
}

// ProjectOnSegment returns the clamped parameter t of the projection of p on
// segment ab and the projected point.
func ProjectOnSegment(p, a, b model.Point2D) (float64, model.Point2D) {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 < Epsilon {
		return 0, a
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return t, a.Add(ab.Scale(t))
}

// DistPointSegment returns the distance from p to segment ab.
func DistPointSegment(p, a, b model.Point2D) float64 {
	_, q := ProjectOnSegment(p, a, b)
	return p.Dist(q)
}

// PointInPolygon classifies p against an implicitly closed polygon. Points
// within band of any edge are reported as OnEdge so callers can retry at a
// larger offset instead of trusting a noisy boundary.
func PointInPolygon(p model.Point2D, poly []model.Point2D, band float64) Containment {
	n := len(poly)
	if n < 3 {
		return Outside
	}
	for i := 0; i < n; i++ {
		if DistPointSegment(p, poly[i], poly[(i+1)%n]) <= band {
			return OnEdge
		}
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	if inside {
		return Inside
	}
	return Outside
}
