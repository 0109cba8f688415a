// Package chain consolidates raw wall segments into straight chains and the
// junction graph that connects them.
package chain

import (
	"fmt"
	"math"

	"github.com/piwi3910/wallplan/internal/model"
)

// Result holds the chains, junctions and diagnostics of one build.
type Result struct {
	Chains    []model.WallChain
	Junctions []model.JunctionNode
	Stats     model.ChainStats
}

// Builder runs the chain pipeline under one tolerance preset.
type Builder struct {
	Preset      model.TolerancePreset
	ModuleWidth float64 // Used for the waste figure

	// IterationLimit caps jog removal and colinear reduction. Zero derives
	// the caps from the input size.
	IterationLimit int
}

// New creates a Builder for the given preset and module width.
func New(preset model.TolerancePreset, moduleWidth float64) *Builder {
	return &Builder{Preset: preset, ModuleWidth: moduleWidth}
}

// Build runs noise filtering, snapping, duplicate removal, overlap merging,
// jog removal, gap bridging, intersection splitting and colinear reduction.
// Geometry problems never fail the build; only an invalid preset does.
func (b *Builder) Build(segments []model.WallSegment) (Result, error) {
	p := b.Preset
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	if !(b.ModuleWidth > 0) {
		return Result{}, fmt.Errorf("%w: module width must be positive, got %v", model.ErrInvalidSettings, b.ModuleWidth)
	}
	angTol := p.AngleTolerance()

	stats := model.ChainStats{Preset: p.Name, Original: len(segments)}

	segs, noise := filterNoise(segments, p.NoiseFloor)
	stats.NoiseRemoved = noise

	var collapsed, dups int
	segs, collapsed, dups = normalize(segs, p.Snap)
	stats.CollapsedRemoved += collapsed
	stats.DuplicatesRemoved += dups

	segs, stats.OverlapsMerged = mergeAxisOverlaps(segs, p.Snap, angTol)
	segs, collapsed, dups = normalize(segs, p.Snap)
	stats.CollapsedRemoved += collapsed
	stats.DuplicatesRemoved += dups

	var jogCap bool
	segs, stats.JogsRemoved, jogCap = removeJogs(segs, p.JogMax, angTol, b.IterationLimit)

	segs, stats.GapsBridged = bridgeGaps(segs, p.GapBridge, p.Snap)

	segs, stats.SplitsAdded = splitIntersections(segs, p.Snap)
	segs, collapsed, dups = normalize(segs, p.Snap)
	stats.CollapsedRemoved += collapsed
	stats.DuplicatesRemoved += dups

	g := buildGraph(segs)
	merges, reduceCap := g.reduce(angTol, b.IterationLimit)
	stats.NodesReduced = merges
	stats.IterationCapHit = jogCap || reduceCap

	chains, junctions := g.extract()
	stats.Chains = len(chains)
	stats.Junctions = len(junctions)
	if stats.Original > 0 {
		stats.ReductionPct = (1 - float64(len(chains))/float64(stats.Original)) * 100
	}
	stats.WastePct = WastePct(chains, b.ModuleWidth)

	return Result{Chains: chains, Junctions: junctions, Stats: stats}, nil
}

// ModulesFor returns the number of modules needed to cover a length.
func ModulesFor(length, moduleWidth float64) int {
	if length <= 0 || moduleWidth <= 0 {
		return 0
	}
	return int(math.Ceil(length/moduleWidth - 1e-9))
}

// WastePct returns the unused share of supplied module length, in percent,
// when every chain is covered by whole modules.
func WastePct(chains []model.WallChain, moduleWidth float64) float64 {
	var supplied, unused float64
	for _, c := range chains {
		s := float64(ModulesFor(c.Length, moduleWidth)) * moduleWidth
		supplied += s
		unused += s - c.Length
	}
	if supplied == 0 {
		return 0
	}
	return math.Max(0, unused/supplied*100)
}
