package geometry

import (
	"math"

	"github.com/piwi3910/wallplan/internal/model"
)

type cellKey struct{ x, y int64 }

type cluster struct {
	sum    model.Point2D
	count  int
	center model.Point2D
	cell   cellKey
}

// SnapIndex clusters points that lie within a tolerance of each other.
// Buckets are square cells of side tol, so every cluster within tol of a
// query point lives in the query's 3x3 cell neighbourhood. A cluster's
// position is the running centroid of its members.
//
// Lifecycle: create with NewSnapIndex, Insert every point, then Lookup or
// Center. The index is not safe for concurrent use.
type SnapIndex struct {
	tol      float64
	buckets  map[cellKey][]int
	clusters []cluster
}

// NewSnapIndex creates an empty index for the given tolerance (mm).
func NewSnapIndex(tol float64) *SnapIndex {
	if tol <= 0 {
		tol = Epsilon
	}
	return &SnapIndex{
		tol:     tol,
		buckets: make(map[cellKey][]int),
	}
}

func (s *SnapIndex) keyFor(p model.Point2D) cellKey {
	return cellKey{
		x: int64(math.Floor(p.X / s.tol)),
		y: int64(math.Floor(p.Y / s.tol)),
	}
}

// nearest returns the closest cluster within tolerance, lowest id on ties.
func (s *SnapIndex) nearest(p model.Point2D) (int, bool) {
	k := s.keyFor(p)
	best := -1
	bestDist := math.Inf(1)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, id := range s.buckets[cellKey{k.x + dx, k.y + dy}] {
				d := s.clusters[id].center.Dist(p)
				if d > s.tol {
					continue
				}
				if d < bestDist || (d == bestDist && id < best) {
					best = id
					bestDist = d
				}
			}
		}
	}
	return best, best >= 0
}

// Insert adds a point and returns the id of the cluster it joined.
func (s *SnapIndex) Insert(p model.Point2D) int {
	if id, ok := s.nearest(p); ok {
		c := &s.clusters[id]
		c.sum = c.sum.Add(p)
		c.count++
		c.center = c.sum.Scale(1 / float64(c.count))
		if nk := s.keyFor(c.center); nk != c.cell {
			s.removeFromBucket(c.cell, id)
			s.buckets[nk] = append(s.buckets[nk], id)
			c.cell = nk
		}
		return id
	}

	id := len(s.clusters)
	k := s.keyFor(p)
	s.clusters = append(s.clusters, cluster{sum: p, count: 1, center: p, cell: k})
	s.buckets[k] = append(s.buckets[k], id)
	return id
}

func (s *SnapIndex) removeFromBucket(k cellKey, id int) {
	ids := s.buckets[k]
	for i, v := range ids {
		if v == id {
			s.buckets[k] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(s.buckets[k]) == 0 {
		delete(s.buckets, k)
	}
}

// Lookup returns the cluster a point would join without modifying the index.
func (s *SnapIndex) Lookup(p model.Point2D) (int, bool) {
	return s.nearest(p)
}

// Center returns the centroid of a cluster.
func (s *SnapIndex) Center(id int) model.Point2D {
	return s.clusters[id].center
}

// Len returns the number of clusters.
func (s *SnapIndex) Len() int {
	return len(s.clusters)
}

// SnapPoints clusters the given points and returns, for each input point, the
// centroid of its cluster and the cluster id. Points are inserted in order,
// then resolved against the final centroids.
func SnapPoints(points []model.Point2D, tol float64) ([]model.Point2D, []int) {
	idx := NewSnapIndex(tol)
	ids := make([]int, len(points))
	for i, p := range points {
		ids[i] = idx.Insert(p)
	}
	snapped := make([]model.Point2D, len(points))
	for i, id := range ids {
		snapped[i] = idx.Center(id)
	}
	return snapped, ids
}
