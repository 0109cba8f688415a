package geometry

import (
	"sort"

	"github.com/piwi3910/wallplan/internal/model"
)

// ConvexHull returns the convex hull of the points in counter-clockwise order
// (Andrew's monotone chain). Colinear boundary points are dropped. Fewer than
// three distinct points yield the distinct points themselves.
func ConvexHull(points []model.Point2D) []model.Point2D {
	pts := make([]model.Point2D, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	uniq := pts[:0]
	for i, p := range pts {
		if i > 0 && p.Dist(uniq[len(uniq)-1]) < Epsilon {
			continue
		}
		uniq = append(uniq, p)
	}
	if len(uniq) < 3 {
		return uniq
	}

	cross := func(o, a, b model.Point2D) float64 {
		return a.Sub(o).Cross(b.Sub(o))
	}

	hull := make([]model.Point2D, 0, 2*len(uniq))
	for _, p := range uniq {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(uniq) - 2; i >= 0; i-- {
		p := uniq[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}
