package model

// FootprintStatus records how the building outline was obtained.
type FootprintStatus string

const (
	FootprintResolved     FootprintStatus = "resolved"      // A walked face passed the sanity checks
	FootprintFallbackHull FootprintStatus = "fallback-hull" // Convex hull of all chain endpoints
	FootprintNone         FootprintStatus = "none"          // No chains or a degenerate hull
)

// FootprintPolygon is the outer boundary of the building, wound counter-clockwise.
type FootprintPolygon struct {
	Vertices   []Point2D       `json:"vertices"`
	SignedArea float64         `json:"signed_area"`
	Status     FootprintStatus `json:"status"`
}

// SideClass is the per-chain exterior/interior classification.
type SideClass string

const (
	SideExteriorNegative SideClass = "exterior-negative-perp"
	SideExteriorPositive SideClass = "exterior-positive-perp"
	SidePartition        SideClass = "both-interior"
	SideBothOutside      SideClass = "both-outside"
	SideUnresolved       SideClass = "unresolved"
)

// SideStatus is the overall outcome of side classification.
type SideStatus string

const (
	SideStatusOK         SideStatus = "ok"
	SideStatusFallback   SideStatus = "fallback"
	SideStatusUnresolved SideStatus = "unresolved"
	SideStatusNoWalls    SideStatus = "no-walls"
)

// Reason codes for unresolved chains.
const (
	ReasonBoundaryAmbiguous = "boundary-ambiguous"
	ReasonMixedVotes        = "mixed-votes"
	ReasonZeroLength        = "zero-length"
	ReasonNoPolygon         = "no-polygon"
)

// VoteCounts holds the per-sample votes cast for one chain.
type VoteCounts struct {
	PositiveExterior int `json:"positive_exterior"`
	NegativeExterior int `json:"negative_exterior"`
	Partition        int `json:"partition"`
	BothOutside      int `json:"both_outside"`
	Ambiguous        int `json:"ambiguous"`
}

// Total returns the number of samples.
func (v VoteCounts) Total() int {
	return v.PositiveExterior + v.NegativeExterior + v.Partition + v.BothOutside + v.Ambiguous
}

// ChainSide is the side classification of one chain.
type ChainSide struct {
	ChainID               string     `json:"chain_id"`
	Classification        SideClass  `json:"classification"`
	OutsideIsPositivePerp bool       `json:"outside_is_positive_perp"`
	OutwardNormalAngle    float64    `json:"outward_normal_angle"` // Radians, direction of the exterior normal
	Reason                string     `json:"reason,omitempty"`
	Votes                 VoteCounts `json:"votes"`
	Flipped               bool       `json:"flipped,omitempty"`    // Corrected by the consistency pass
	Overridden            bool       `json:"overridden,omitempty"` // Manually flipped
}

// IsPerimeter reports whether exactly one face of the chain is exterior.
func (s ChainSide) IsPerimeter() bool {
	return s.Classification == SideExteriorPositive || s.Classification == SideExteriorNegative
}

// FaceSide returns whether the given face of the chain is exterior or interior.
// Unresolved chains use OutsideIsPositivePerp like perimeter chains.
func (s ChainSide) FaceSide(f Face) Side {
	switch s.Classification {
	case SidePartition:
		return SideInterior
	case SideBothOutside:
		return SideExterior
	}
	if (f == FacePositive) == s.OutsideIsPositivePerp {
		return SideExterior
	}
	return SideInterior
}

// ChainStats holds the chain builder's per-stage diagnostics.
type ChainStats struct {
	Preset            string  `json:"preset"`
	Original          int     `json:"original"`
	NoiseRemoved      int     `json:"noise_removed"`
	CollapsedRemoved  int     `json:"collapsed_removed"` // Segments that snapped to a single point
	DuplicatesRemoved int     `json:"duplicates_removed"`
	OverlapsMerged    int     `json:"overlaps_merged"`
	JogsRemoved       int     `json:"jogs_removed"`
	GapsBridged       int     `json:"gaps_bridged"`
	SplitsAdded       int     `json:"splits_added"`
	NodesReduced      int     `json:"nodes_reduced"`
	Chains            int     `json:"chains"`
	Junctions         int     `json:"junctions"`
	ReductionPct      float64 `json:"reduction_pct"`
	WastePct          float64 `json:"waste_pct"`
	IterationCapHit   bool    `json:"iteration_cap_hit,omitempty"`
}

// PresetRun summarizes one auto-tuning candidate.
type PresetRun struct {
	Preset   string     `json:"preset"`
	Chains   int        `json:"chains"`
	WastePct float64    `json:"waste_pct"`
	Score    float64    `json:"score"`
	Selected bool       `json:"selected"`
	Stats    ChainStats `json:"stats"`
}

// PlanResult holds the full output of one pipeline run.
type PlanResult struct {
	Preset            string                      `json:"preset"`
	Chains            []WallChain                 `json:"chains"`
	Junctions         []JunctionNode              `json:"junctions"`
	OpeningCandidates []OpeningCandidate          `json:"opening_candidates"`
	Footprint         FootprintPolygon            `json:"footprint"`
	SideStatus        SideStatus                  `json:"side_status"`
	Sides             map[string]ChainSide        `json:"sides"`
	Panels            []Panel                     `json:"panels"`
	Closures          []ClosurePlacement          `json:"closures"`
	CornerAdjustments map[string]CornerAdjustment `json:"corner_adjustments"` // Keyed by panel key
	Stats             ChainStats                  `json:"stats"`
	PresetRuns        []PresetRun                 `json:"preset_runs,omitempty"`
	Materials         MaterialsSummary            `json:"materials"`
}

// PanelsByKind groups panels by kind name.
func (r PlanResult) PanelsByKind() map[string][]Panel {
	groups := make(map[string][]Panel)
	for _, p := range r.Panels {
		groups[p.KindName()] = append(groups[p.KindName()], p)
	}
	return groups
}

// ChainByID returns the chain with the given id.
func (r PlanResult) ChainByID(id string) (WallChain, bool) {
	for _, c := range r.Chains {
		if c.ID == id {
			return c, true
		}
	}
	return WallChain{}, false
}

// JunctionByID returns the junction with the given id.
func (r PlanResult) JunctionByID(id string) (JunctionNode, bool) {
	for _, n := range r.Junctions {
		if n.ID == id {
			return n, true
		}
	}
	return JunctionNode{}, false
}
