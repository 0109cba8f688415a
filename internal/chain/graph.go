package chain

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/wallplan/internal/geometry"
	"github.com/piwi3910/wallplan/internal/model"
)

// The junction graph is an arena: nodes and edges refer to each other by
// index, and merging marks entries dead instead of rewriting pointers.

type gnode struct {
	pos   model.Point2D
	edges []int
	alive bool
}

type gedge struct {
	a, b  int
	src   []int
	alive bool
}

type graph struct {
	nodes []gnode
	edges []gedge
}

// buildGraph creates one node per distinct (already snapped) endpoint and one
// edge per segment.
func buildGraph(segs []seg) *graph {
	g := &graph{}
	index := make(map[pkey]int)
	nodeFor := func(p model.Point2D) int {
		if id, ok := index[keyOf(p)]; ok {
			return id
		}
		id := len(g.nodes)
		index[keyOf(p)] = id
		g.nodes = append(g.nodes, gnode{pos: p, alive: true})
		return id
	}
	for _, s := range segs {
		a, b := nodeFor(s.a), nodeFor(s.b)
		if a == b {
			continue
		}
		g.addEdge(a, b, s.src)
	}
	return g
}

func (g *graph) addEdge(a, b int, src []int) int {
	id := len(g.edges)
	g.edges = append(g.edges, gedge{a: a, b: b, src: src, alive: true})
	g.nodes[a].edges = append(g.nodes[a].edges, id)
	g.nodes[b].edges = append(g.nodes[b].edges, id)
	return id
}

func (g *graph) detach(n, e int) {
	edges := g.nodes[n].edges
	for i, v := range edges {
		if v == e {
			g.nodes[n].edges = append(edges[:i:i], edges[i+1:]...)
			return
		}
	}
}

func (g *graph) other(e, n int) int {
	if g.edges[e].a == n {
		return g.edges[e].b
	}
	return g.edges[e].a
}

// outward returns the direction of edge e leaving node n, in [0, 2π).
func (g *graph) outward(e, n int) float64 {
	return geometry.AngleOf(g.nodes[g.other(e, n)].pos.Sub(g.nodes[n].pos))
}

// reduce repeatedly merges the two edges of any degree-2 node whose edges
// continue straight through it, until a fixed point. The number of merges is
// capped by limit, or by the node count when limit is not positive; hitting
// the cap returns a valid partially reduced graph and true.
func (g *graph) reduce(angTol float64, limit int) (int, bool) {
	if limit <= 0 {
		limit = 2*len(g.nodes) + 10
	}
	merges := 0
	for changed := true; changed; {
		changed = false
		for n := range g.nodes {
			node := g.nodes[n]
			if !node.alive || len(node.edges) != 2 {
				continue
			}
			e1, e2 := node.edges[0], node.edges[1]
			a, b := g.other(e1, n), g.other(e2, n)
			if a == b {
				continue
			}
			if !geometry.Opposite(g.outward(e1, n), g.outward(e2, n), angTol) {
				continue
			}
			if merges >= limit {
				return merges, true
			}

			src := mergeSrc(g.edges[e1].src, g.edges[e2].src)
			g.edges[e1].alive = false
			g.edges[e2].alive = false
			g.detach(a, e1)
			g.detach(b, e2)
			g.nodes[n].edges = nil
			g.nodes[n].alive = false
			g.addEdge(a, b, src)
			merges++
			changed = true
		}
	}
	return merges, false
}

// extract converts the surviving edges into oriented chains and the surviving
// connected nodes into junctions, with ids assigned in coordinate order.
func (g *graph) extract() ([]model.WallChain, []model.JunctionNode) {
	type pending struct {
		chain model.WallChain
		a, b  int // node indices at Start and End
	}
	var items []pending
	for _, e := range g.edges {
		if !e.alive {
			continue
		}
		start, end := g.nodes[e.a].pos, g.nodes[e.b].pos
		a, b := e.a, e.b
		d := end.Sub(start)
		if d.Len() < geometry.Epsilon {
			continue
		}
		angle := geometry.NormalizeAngle(math.Atan2(d.Y, d.X))
		if geometry.Unit(angle).Dot(d) < 0 {
			start, end = end, start
			a, b = b, a
		}
		items = append(items, pending{
			chain: model.WallChain{
				Segments: e.src,
				Length:   start.Dist(end),
				Angle:    angle,
				Start:    start,
				End:      end,
			},
			a: a,
			b: b,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := items[i].chain, items[j].chain
		if ci.Start != cj.Start {
			return lessPoint(ci.Start, cj.Start)
		}
		return lessPoint(ci.End, cj.End)
	})

	var used []int
	seen := make(map[int]bool)
	for _, it := range items {
		for _, n := range []int{it.a, it.b} {
			if !seen[n] {
				seen[n] = true
				used = append(used, n)
			}
		}
	}
	sort.SliceStable(used, func(i, j int) bool {
		return lessPoint(g.nodes[used[i]].pos, g.nodes[used[j]].pos)
	})
	nodeID := make(map[int]string, len(used))
	junctions := make([]model.JunctionNode, len(used))
	slot := make(map[int]int, len(used))
	for i, n := range used {
		nodeID[n] = fmt.Sprintf("J%d", i+1)
		junctions[i] = model.JunctionNode{ID: nodeID[n], Position: g.nodes[n].pos}
		slot[n] = i
	}

	chains := make([]model.WallChain, len(items))
	for i, it := range items {
		c := it.chain
		c.ID = fmt.Sprintf("C%d", i+1)
		c.StartNode = nodeID[it.a]
		c.EndNode = nodeID[it.b]
		chains[i] = c

		ja := &junctions[slot[it.a]]
		ja.Arms = append(ja.Arms, model.JunctionArm{ChainID: c.ID, OutwardAngle: geometry.NormalizeFull(c.Angle), AtStart: true})
		jb := &junctions[slot[it.b]]
		jb.Arms = append(jb.Arms, model.JunctionArm{ChainID: c.ID, OutwardAngle: geometry.NormalizeFull(c.Angle + math.Pi), AtStart: false})
	}
	for i := range junctions {
		arms := junctions[i].Arms
		sort.SliceStable(arms, func(a, b int) bool {
			if arms[a].OutwardAngle != arms[b].OutwardAngle {
				return arms[a].OutwardAngle < arms[b].OutwardAngle
			}
			return arms[a].ChainID < arms[b].ChainID
		})
	}
	return chains, junctions
}
