// Package geometry provides the planar primitives the layout pipeline is built
// on: point clustering, angle tests, polygon measures, point-in-polygon and
// segment intersection. All functions are pure except SnapIndex, which is an
// explicitly owned index.
package geometry

import (
	"math"

	"github.com/piwi3910/wallplan/internal/model"
)

// Epsilon is the numeric tolerance for parameter and area comparisons.
const Epsilon = 1e-9

// NormalizeAngle maps an angle to the undirected range [0, π).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, math.Pi)
	if a < 0 {
		a += math.Pi
	}
	if a >= math.Pi-Epsilon {
		a = 0
	}
	return a
}

// NormalizeFull maps an angle to the directed range [0, 2π).
func NormalizeFull(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi-Epsilon {
		a = 0
	}
	return a
}

// AngleOf returns the directed angle of v in [0, 2π).
func AngleOf(v model.Point2D) float64 {
	return NormalizeFull(math.Atan2(v.Y, v.X))
}

// UndirectedAngle returns the direction of the line through a and b in [0, π).
func UndirectedAngle(a, b model.Point2D) float64 {
	return NormalizeAngle(math.Atan2(b.Y-a.Y, b.X-a.X))
}

// AngleDiff returns the circular difference of two undirected angles, in [0, π/2].
func AngleDiff(a, b float64) float64 {
	d := math.Abs(NormalizeAngle(a) - NormalizeAngle(b))
	if d > math.Pi/2 {
		d = math.Pi - d
	}
	return d
}

// Colinear reports whether two direction angles describe the same line
// direction within tol radians. Direction sign is ignored.
func Colinear(a, b, tol float64) bool {
	return AngleDiff(a, b) <= tol
}

// Opposite reports whether two directed angles point in opposite directions
// within tol radians.
func Opposite(a, b, tol float64) bool {
	d := math.Abs(NormalizeFull(a) - NormalizeFull(b))
	return math.Abs(d-math.Pi) <= tol
}

// Unit returns the unit vector at the given angle.
func Unit(a float64) model.Point2D {
	return model.Point2D{X: math.Cos(a), Y: math.Sin(a)}
}
