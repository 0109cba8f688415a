package footprint

import (
	"math"
	"sort"

	"github.com/piwi3910/wallplan/internal/geometry"
	"github.com/piwi3910/wallplan/internal/model"
)

// Candidate scoring weights.
const (
	weightContains     = 1e6
	weightPerimLength  = 10
	weightPerimCount   = 5000
	penaltyOutside     = 5e5
	maxCandidates      = 5
	outsideFracLimit   = 0.25
	perimeterFracLimit = 0.15
	relaxedOutside     = 0.5
	relaxedPerimeter   = 0.05
)

// Sampling along a chain.
const (
	sampleSpacing     = 500.0
	minSamples        = 3
	maxSamples        = 15
	maxBand           = 5.0
	consistencyOffset = 150.0
)

var probeOffsets = []float64{50, 150, 300, 600}

// Classifier finds the footprint and classifies chain sides.
type Classifier struct {
	Snap float64 // Endpoint clustering radius for the half-edge graph (mm)
}

// New creates a Classifier.
func New(snap float64) *Classifier {
	return &Classifier{Snap: snap}
}

// Result is the footprint and the per-chain side classification.
type Result struct {
	Footprint model.FootprintPolygon
	Sides     map[string]model.ChainSide
	Status    model.SideStatus
	Faces     int // Number of faces found by the walk
}

type candidate struct {
	poly     []model.Point2D
	area     float64
	contains int
	score    float64
	outside  int
	perim    int
}

// Classify resolves the footprint, votes every chain's side and applies the
// consistency pass and manual flips. It never fails: missing or degenerate
// geometry is reported through the status values.
func (c *Classifier) Classify(chains []model.WallChain, flipped map[string]bool) Result {
	res := Result{Sides: make(map[string]model.ChainSide, len(chains))}
	if len(chains) == 0 {
		res.Footprint.Status = model.FootprintNone
		res.Status = model.SideStatusNoWalls
		return res
	}

	g := buildPlanarGraph(chains, c.Snap)
	faces := g.faces()
	res.Faces = len(faces)

	poly, ok := c.pickFootprint(chains, faces)
	status := model.FootprintResolved
	if !ok {
		poly = geometry.ConvexHull(endpoints(chains))
		status = model.FootprintFallbackHull
		if len(poly) < 3 || math.Abs(geometry.SignedArea(poly)) <= geometry.Epsilon {
			poly = nil
			status = model.FootprintNone
		}
	}
	res.Footprint = model.FootprintPolygon{
		Vertices:   poly,
		SignedArea: geometry.SignedArea(poly),
		Status:     status,
	}

	for _, ch := range chains {
		s := classifyChain(ch, poly)
		if s.IsPerimeter() {
			s = consistencyCheck(ch, s, poly)
		}
		if flipped[ch.ID] {
			s = applyFlip(ch, s)
		}
		res.Sides[ch.ID] = s
	}

	res.Status = model.SideStatusOK
	if status != model.FootprintResolved {
		res.Status = model.SideStatusFallback
	}
	for _, s := range res.Sides {
		if s.Classification == model.SideUnresolved {
			res.Status = model.SideStatusUnresolved
			break
		}
	}
	return res
}

// pickFootprint scores the largest faces as outer-boundary candidates and
// returns the best one that passes the sanity thresholds.
func (c *Classifier) pickFootprint(chains []model.WallChain, faces [][]model.Point2D) ([]model.Point2D, bool) {
	if len(faces) == 0 {
		return nil, false
	}
	cands := make([]candidate, len(faces))
	centroids := make([]model.Point2D, len(faces))
	for i, f := range faces {
		centroids[i] = geometry.Centroid(f)
	}
	for i, f := range faces {
		cands[i] = candidate{poly: f, area: geometry.SignedArea(f)}
		for j := range faces {
			if i != j && geometry.PointInPolygon(centroids[j], f, 0) == geometry.Inside {
				cands[i].contains++
			}
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].contains != cands[j].contains {
			return cands[i].contains > cands[j].contains
		}
		return cands[i].area > cands[j].area
	})
	if len(cands) > maxCandidates {
		cands = cands[:maxCandidates]
	}

	for i := range cands {
		cd := &cands[i]
		var perimLen float64
		for _, ch := range chains {
			s := classifyChain(ch, cd.poly)
			switch {
			case s.IsPerimeter():
				cd.perim++
				perimLen += ch.Length
			case s.Classification == model.SideBothOutside:
				cd.outside++
			}
		}
		// Area scores in m².
		cd.score = float64(cd.contains)*weightContains +
			perimLen*weightPerimLength +
			float64(cd.perim)*weightPerimCount +
			cd.area/1e6 -
			float64(cd.outside)*penaltyOutside
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].score > cands[j].score
	})

	n := float64(len(chains))
	for i, cd := range cands {
		outLimit, perimLimit := outsideFracLimit, perimeterFracLimit
		if i == 0 && clearWinner(cands) {
			outLimit, perimLimit = relaxedOutside, relaxedPerimeter
		}
		if float64(cd.outside)/n < outLimit && float64(cd.perim)/n > perimLimit {
			return cd.poly, true
		}
	}
	return nil, false
}

// clearWinner reports whether the best candidate scores at least twice the
// runner-up.
func clearWinner(cands []candidate) bool {
	if len(cands) < 2 {
		return true
	}
	best, next := cands[0].score, cands[1].score
	return best-next >= math.Abs(next)
}

func endpoints(chains []model.WallChain) []model.Point2D {
	pts := make([]model.Point2D, 0, 2*len(chains))
	for _, c := range chains {
		pts = append(pts, c.Start, c.End)
	}
	return pts
}

// sampleCount grows with chain length, one sample per 500 mm within [3, 15].
func sampleCount(length float64) int {
	n := int(math.Ceil(length / sampleSpacing))
	if n < minSamples {
		n = minSamples
	}
	if n > maxSamples {
		n = maxSamples
	}
	return n
}

// vote tests both perpendicular offsets of one sample point, escalating the
// offset while either probe lands on the boundary band.
func vote(p, normal model.Point2D, poly []model.Point2D, v *model.VoteCounts) {
	for _, d := range probeOffsets {
		band := math.Min(d/2, maxBand)
		pos := geometry.PointInPolygon(p.Add(normal.Scale(d)), poly, band)
		neg := geometry.PointInPolygon(p.Sub(normal.Scale(d)), poly, band)
		if pos == geometry.OnEdge || neg == geometry.OnEdge {
			continue
		}
		switch {
		case pos == geometry.Outside && neg == geometry.Inside:
			v.PositiveExterior++
		case pos == geometry.Inside && neg == geometry.Outside:
			v.NegativeExterior++
		case pos == geometry.Inside && neg == geometry.Inside:
			v.Partition++
		default:
			v.BothOutside++
		}
		return
	}
	v.Ambiguous++
}

// classifyChain samples the chain against the polygon and decides by vote.
func classifyChain(ch model.WallChain, poly []model.Point2D) model.ChainSide {
	s := model.ChainSide{ChainID: ch.ID, OutsideIsPositivePerp: true}
	switch {
	case ch.Length < geometry.Epsilon:
		s.Classification = model.SideUnresolved
		s.Reason = model.ReasonZeroLength
	case len(poly) < 3:
		s.Classification = model.SideUnresolved
		s.Reason = model.ReasonNoPolygon
	default:
		n := sampleCount(ch.Length)
		normal := ch.PositivePerp()
		for i := 0; i < n; i++ {
			t := (float64(i) + 0.5) / float64(n)
			vote(ch.PointAt(t*ch.Length), normal, poly, &s.Votes)
		}
		s.Classification, s.Reason = decide(s.Votes)
		if s.Classification == model.SideExteriorNegative {
			s.OutsideIsPositivePerp = false
		}
	}
	s.OutwardNormalAngle = outwardAngle(ch, s.OutsideIsPositivePerp)
	return s
}

// decide applies the majority rule: a category with at least half of all
// samples and no equal rival wins. Otherwise the non-ambiguous plurality wins
// and ties prefer partition, then both-outside, then unresolved.
func decide(v model.VoteCounts) (model.SideClass, string) {
	type cat struct {
		class model.SideClass
		count int
	}
	// Order is the tie preference.
	cats := []cat{
		{model.SidePartition, v.Partition},
		{model.SideBothOutside, v.BothOutside},
		{model.SideExteriorPositive, v.PositiveExterior},
		{model.SideExteriorNegative, v.NegativeExterior},
	}
	best, ties := 0, 0
	for _, c := range cats {
		switch {
		case c.count > best:
			best, ties = c.count, 1
		case c.count == best:
			ties++
		}
	}
	if best == 0 {
		return model.SideUnresolved, model.ReasonBoundaryAmbiguous
	}
	if ties == 1 {
		for _, c := range cats {
			if c.count == best {
				return c.class, ""
			}
		}
	}
	for _, c := range cats[:2] {
		if c.count == best {
			return c.class, ""
		}
	}
	return model.SideUnresolved, model.ReasonMixedVotes
}

// consistencyCheck re-tests a perimeter chain at its midpoint and flips it if
// the supposed exterior side actually lies inside the footprint.
func consistencyCheck(ch model.WallChain, s model.ChainSide, poly []model.Point2D) model.ChainSide {
	n := ch.PositivePerp()
	if !s.OutsideIsPositivePerp {
		n = n.Scale(-1)
	}
	probe := ch.Midpoint().Add(n.Scale(consistencyOffset))
	if geometry.PointInPolygon(probe, poly, maxBand) != geometry.Inside {
		return s
	}
	s = flipSide(ch, s)
	s.Flipped = true
	return s
}

// applyFlip inverts the exterior sense of a manually flipped chain.
func applyFlip(ch model.WallChain, s model.ChainSide) model.ChainSide {
	s = flipSide(ch, s)
	s.Overridden = true
	return s
}

func flipSide(ch model.WallChain, s model.ChainSide) model.ChainSide {
	s.OutsideIsPositivePerp = !s.OutsideIsPositivePerp
	switch s.Classification {
	case model.SideExteriorPositive:
		s.Classification = model.SideExteriorNegative
	case model.SideExteriorNegative:
		s.Classification = model.SideExteriorPositive
	}
	s.OutwardNormalAngle = outwardAngle(ch, s.OutsideIsPositivePerp)
	return s
}

func outwardAngle(ch model.WallChain, positive bool) float64 {
	n := ch.PositivePerp()
	if !positive {
		n = n.Scale(-1)
	}
	return geometry.AngleOf(n)
}
