// Package footprint finds the outer boundary of the building from the chain
// graph and decides which side of every chain faces the exterior.
package footprint

import (
	"math"
	"sort"

	"github.com/piwi3910/wallplan/internal/geometry"
	"github.com/piwi3910/wallplan/internal/model"
)

// halfEdge is one direction of a chain. Half-edges live in an arena and refer
// to each other by index.
type halfEdge struct {
	origin, dest int
	twin         int
	next         int
	angle        float64 // Direction leaving origin, [0, 2π)
	visited      bool
}

type planarGraph struct {
	points []model.Point2D
	edges  []halfEdge
	out    [][]int // Outgoing half-edges per node, sorted counter-clockwise
}

// buildPlanarGraph creates two twin half-edges per chain. Endpoints are
// clustered with the snap tolerance so chains that share a junction share a
// node even when their coordinates differ slightly.
func buildPlanarGraph(chains []model.WallChain, snap float64) *planarGraph {
	idx := geometry.NewSnapIndex(snap)
	g := &planarGraph{}
	type pair struct{ a, b int }
	var pairs []pair
	for _, c := range chains {
		if c.Length < geometry.Epsilon {
			continue
		}
		a := idx.Insert(c.Start)
		b := idx.Insert(c.End)
		if a == b {
			continue
		}
		pairs = append(pairs, pair{a, b})
	}
	g.points = make([]model.Point2D, idx.Len())
	for i := range g.points {
		g.points[i] = idx.Center(i)
	}
	g.out = make([][]int, len(g.points))

	for _, p := range pairs {
		h := len(g.edges)
		g.edges = append(g.edges,
			halfEdge{origin: p.a, dest: p.b, twin: h + 1, next: -1},
			halfEdge{origin: p.b, dest: p.a, twin: h, next: -1},
		)
		g.out[p.a] = append(g.out[p.a], h)
		g.out[p.b] = append(g.out[p.b], h+1)
	}
	for i := range g.edges {
		e := &g.edges[i]
		e.angle = geometry.AngleOf(g.points[e.dest].Sub(g.points[e.origin]))
	}
	for n := range g.out {
		out := g.out[n]
		sort.SliceStable(out, func(i, j int) bool {
			return g.edges[out[i]].angle < g.edges[out[j]].angle
		})
	}
	g.linkNext()
	return g
}

// linkNext applies the right-hand rule: leaving the head of h, take the first
// outgoing half-edge clockwise from the twin of h. The twin itself is used
// only at a dead end.
func (g *planarGraph) linkNext() {
	for h := range g.edges {
		head := g.edges[h].dest
		out := g.out[head]
		twin := g.edges[h].twin
		k := -1
		for i, e := range out {
			if e == twin {
				k = i
				break
			}
		}
		if k < 0 {
			continue
		}
		g.edges[h].next = out[(k-1+len(out))%len(out)]
	}
}

// faces walks every unvisited half-edge and returns the face boundaries with
// at least three distinct vertices and non-zero area, wound counter-clockwise.
// Both bounded rooms and the outline of each connected component are
// returned; the outline walk comes out clockwise and is reversed.
func (g *planarGraph) faces() [][]model.Point2D {
	var out [][]model.Point2D
	limit := len(g.edges) + 1
	for start := range g.edges {
		if g.edges[start].visited {
			continue
		}
		var ring []model.Point2D
		h := start
		for steps := 0; steps < limit; steps++ {
			e := &g.edges[h]
			if e.visited {
				break
			}
			e.visited = true
			ring = append(ring, g.points[e.origin])
			if e.next < 0 {
				break
			}
			h = e.next
		}
		ring = dropRepeats(ring)
		if distinct(ring) < 3 {
			continue
		}
		if math.Abs(geometry.SignedArea(ring)) <= geometry.Epsilon {
			continue
		}
		out = append(out, geometry.EnsureCCW(ring))
	}
	return out
}

func dropRepeats(ring []model.Point2D) []model.Point2D {
	var out []model.Point2D
	for i, p := range ring {
		if i > 0 && p == ring[i-1] {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

func distinct(ring []model.Point2D) int {
	seen := make(map[model.Point2D]bool, len(ring))
	for _, p := range ring {
		seen[p] = true
	}
	return len(seen)
}
