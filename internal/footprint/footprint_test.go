package footprint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/wallplan/internal/model"
)

func chain(id string, x1, y1, x2, y2 float64) model.WallChain {
	start := model.Point2D{X: x1, Y: y1}
	end := model.Point2D{X: x2, Y: y2}
	return model.WallChain{
		ID:     id,
		Start:  start,
		End:    end,
		Length: start.Dist(end),
		Angle:  math.Atan2(y2-y1, x2-x1),
	}
}

func rectangle() []model.WallChain {
	return []model.WallChain{
		chain("C1", 0, 0, 6000, 0),
		chain("C2", 0, 0, 0, 4000),
		chain("C3", 0, 4000, 6000, 4000),
		chain("C4", 6000, 0, 6000, 4000),
	}
}

// ─── Footprint ──────────────────────────────────────────

func TestClassify_NoWalls(t *testing.T) {
	res := New(5).Classify(nil, nil)
	assert.Equal(t, model.SideStatusNoWalls, res.Status)
	assert.Equal(t, model.FootprintNone, res.Footprint.Status)
	assert.Empty(t, res.Sides)
}

func TestClassify_RectangleRoundtrip(t *testing.T) {
	res := New(5).Classify(rectangle(), nil)
	require.Equal(t, model.SideStatusOK, res.Status)
	assert.Equal(t, model.FootprintResolved, res.Footprint.Status)
	assert.InDelta(t, 24e6, res.Footprint.SignedArea, 1e-3, "footprint must be wound counter-clockwise")

	want := map[string]model.SideClass{
		"C1": model.SideExteriorPositive,
		"C2": model.SideExteriorNegative,
		"C3": model.SideExteriorNegative,
		"C4": model.SideExteriorPositive,
	}
	for id, class := range want {
		s := res.Sides[id]
		assert.Equal(t, class, s.Classification, "chain %s", id)
		assert.True(t, s.IsPerimeter())
		assert.Empty(t, s.Reason)
		assert.False(t, s.Flipped)
	}

	// The exterior normal of the bottom wall points down.
	assert.InDelta(t, 3*math.Pi/2, res.Sides["C1"].OutwardNormalAngle, 1e-9)
	assert.Equal(t, model.SideExterior, res.Sides["C1"].FaceSide(model.FacePositive))
	assert.Equal(t, model.SideInterior, res.Sides["C2"].FaceSide(model.FacePositive))
}

func TestClassify_PartitionWall(t *testing.T) {
	chains := []model.WallChain{
		chain("C1", 0, 0, 3000, 0),
		chain("C2", 3000, 0, 6000, 0),
		chain("C3", 0, 0, 0, 4000),
		chain("C4", 0, 4000, 3000, 4000),
		chain("C5", 3000, 4000, 6000, 4000),
		chain("C6", 6000, 0, 6000, 4000),
		chain("C7", 3000, 0, 3000, 4000),
	}
	res := New(5).Classify(chains, nil)
	require.Equal(t, model.SideStatusOK, res.Status)
	assert.Equal(t, 3, res.Faces, "two rooms and the outline")
	assert.InDelta(t, 24e6, res.Footprint.SignedArea, 1e-3)

	partition := res.Sides["C7"]
	assert.Equal(t, model.SidePartition, partition.Classification)
	assert.Equal(t, model.SideInterior, partition.FaceSide(model.FacePositive))
	assert.Equal(t, model.SideInterior, partition.FaceSide(model.FaceNegative))
	assert.Equal(t, 8, partition.Votes.Partition)

	for _, id := range []string{"C1", "C2", "C3", "C4", "C5", "C6"} {
		assert.True(t, res.Sides[id].IsPerimeter(), "chain %s", id)
	}
}

func TestClassify_OpenCornerFallsBackToHull(t *testing.T) {
	chains := []model.WallChain{
		chain("C1", 0, 0, 6000, 0),
		chain("C2", 0, 0, 0, 4000),
	}
	res := New(5).Classify(chains, nil)
	assert.Equal(t, model.FootprintFallbackHull, res.Footprint.Status)
	assert.Equal(t, model.SideStatusFallback, res.Status)
	assert.Len(t, res.Footprint.Vertices, 3)
	assert.Equal(t, model.SideExteriorPositive, res.Sides["C1"].Classification)
	assert.Equal(t, model.SideExteriorNegative, res.Sides["C2"].Classification)
}

func TestClassify_SingleChainHasNoPolygon(t *testing.T) {
	res := New(5).Classify([]model.WallChain{chain("C1", 0, 0, 6000, 0)}, nil)
	assert.Equal(t, model.FootprintNone, res.Footprint.Status)
	assert.Equal(t, model.SideStatusUnresolved, res.Status)
	s := res.Sides["C1"]
	assert.Equal(t, model.SideUnresolved, s.Classification)
	assert.Equal(t, model.ReasonNoPolygon, s.Reason)
	assert.True(t, s.OutsideIsPositivePerp)
}

func TestClassify_ManualFlip(t *testing.T) {
	res := New(5).Classify(rectangle(), map[string]bool{"C1": true})
	s := res.Sides["C1"]
	assert.Equal(t, model.SideExteriorNegative, s.Classification)
	assert.False(t, s.OutsideIsPositivePerp)
	assert.True(t, s.Overridden)
	assert.InDelta(t, math.Pi/2, s.OutwardNormalAngle, 1e-9)

	assert.False(t, res.Sides["C2"].Overridden)
}

func TestClassify_Deterministic(t *testing.T) {
	a := New(5).Classify(rectangle(), nil)
	b := New(5).Classify(rectangle(), nil)
	assert.Equal(t, a, b)
}

// ─── Voting ─────────────────────────────────────────────

func TestDecide(t *testing.T) {
	tests := []struct {
		name   string
		votes  model.VoteCounts
		class  model.SideClass
		reason string
	}{
		{"majority", model.VoteCounts{PositiveExterior: 3, NegativeExterior: 1}, model.SideExteriorPositive, ""},
		{"half wins", model.VoteCounts{NegativeExterior: 2, Ambiguous: 2}, model.SideExteriorNegative, ""},
		{"all ambiguous", model.VoteCounts{Ambiguous: 4}, model.SideUnresolved, model.ReasonBoundaryAmbiguous},
		{"exterior tie", model.VoteCounts{PositiveExterior: 2, NegativeExterior: 2}, model.SideUnresolved, model.ReasonMixedVotes},
		{"tie prefers partition", model.VoteCounts{Partition: 2, PositiveExterior: 2}, model.SidePartition, ""},
		{"tie prefers both-outside", model.VoteCounts{BothOutside: 1, NegativeExterior: 1, Ambiguous: 2}, model.SideBothOutside, ""},
		{"plurality", model.VoteCounts{PositiveExterior: 2, Partition: 1, Ambiguous: 3}, model.SideExteriorPositive, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, reason := decide(tt.votes)
			assert.Equal(t, tt.class, class)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestSampleCount_Clamped(t *testing.T) {
	assert.Equal(t, 3, sampleCount(100))
	assert.Equal(t, 8, sampleCount(4000))
	assert.Equal(t, 15, sampleCount(50000))
}

func TestConsistencyCheck_FlipsInvertedPerimeter(t *testing.T) {
	chains := rectangle()
	res := New(5).Classify(chains, nil)
	poly := res.Footprint.Vertices

	wrong := model.ChainSide{
		ChainID:               "C1",
		Classification:        model.SideExteriorNegative,
		OutsideIsPositivePerp: false,
	}
	fixed := consistencyCheck(chains[0], wrong, poly)
	assert.Equal(t, model.SideExteriorPositive, fixed.Classification)
	assert.True(t, fixed.OutsideIsPositivePerp)
	assert.True(t, fixed.Flipped)
}
