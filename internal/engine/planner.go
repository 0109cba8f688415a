// Package engine runs the full layout pipeline: chain building, junction
// classification, side classification, panel layout, corner optimization and
// the materials summary.
package engine

import (
	"fmt"
	"io"
	"log"

	"github.com/piwi3910/wallplan/internal/chain"
	"github.com/piwi3910/wallplan/internal/corner"
	"github.com/piwi3910/wallplan/internal/footprint"
	"github.com/piwi3910/wallplan/internal/layout"
	"github.com/piwi3910/wallplan/internal/model"
	"github.com/piwi3910/wallplan/internal/topology"
)

// Input is everything one planning run consumes.
type Input struct {
	Segments  []model.WallSegment `json:"segments"`
	Openings  []model.Opening     `json:"openings"`
	Overrides model.Overrides     `json:"overrides"`
}

// Planner runs the pipeline for one configuration.
type Planner struct {
	Settings model.LayoutSettings
	Presets  []model.TolerancePreset
	Logger   *log.Logger
}

// New creates a Planner with the built-in preset table and a silent logger.
func New(settings model.LayoutSettings) *Planner {
	return &Planner{
		Settings: settings,
		Presets:  model.DefaultPresets(),
		Logger:   log.New(io.Discard, "", 0),
	}
}

// Plan recomputes the whole layout from the input. Only invalid settings fail;
// geometric problems are reported through the result's status fields.
func (p *Planner) Plan(in Input) (model.PlanResult, error) {
	if err := p.Settings.Validate(p.Presets); err != nil {
		return model.PlanResult{}, err
	}
	logger := p.logger()

	built, runs, err := p.buildChains(in.Segments)
	if err != nil {
		return model.PlanResult{}, err
	}
	preset, _ := model.FindPreset(p.Presets, built.Stats.Preset)
	if built.Stats.IterationCapHit {
		logger.Printf("[plan] preset %s: iteration cap reached, result is partially reduced", preset.Name)
	}

	angTol := preset.AngleTolerance()
	junctions := topology.New(angTol).Classify(built.Junctions)
	candidates := topology.DetectOpeningCandidates(junctions,
		p.Settings.OpeningMinWidth, p.Settings.OpeningMaxWidth, angTol, preset.Snap)

	sides := footprint.New(preset.Snap).Classify(built.Chains, in.Overrides.FlippedSet())
	switch sides.Status {
	case model.SideStatusFallback:
		logger.Printf("[plan] no closed footprint found, using convex hull")
	case model.SideStatusUnresolved:
		logger.Printf("[plan] some chains have an unresolved side (footprint %s)", sides.Footprint.Status)
	}

	openings := p.knownOpenings(built.Chains, in.Openings, logger)
	placed := layout.New(p.Settings).Layout(built.Chains, junctions, sides.Sides, openings)
	adjustments := corner.New(p.Settings.Module).Optimize(built.Chains, junctions, placed.Panels, in.Overrides.ExcludedSet())

	result := model.PlanResult{
		Preset:            preset.Name,
		Chains:            built.Chains,
		Junctions:         junctions,
		OpeningCandidates: candidates,
		Footprint:         sides.Footprint,
		SideStatus:        sides.Status,
		Sides:             sides.Sides,
		Panels:            placed.Panels,
		Closures:          placed.Closures,
		CornerAdjustments: adjustments,
		Stats:             built.Stats,
		PresetRuns:        runs,
	}
	result.Materials = model.CalculateMaterials(result, p.Settings)

	logger.Printf("[plan] preset=%s chains=%d junctions=%d panels=%d closures=%d waste=%.1f%%",
		result.Preset, len(result.Chains), len(result.Junctions), len(result.Panels),
		len(result.Closures), result.Stats.WastePct)
	return result, nil
}

// buildChains runs auto-tuning or the configured preset.
func (p *Planner) buildChains(segments []model.WallSegment) (chain.Result, []model.PresetRun, error) {
	if p.Settings.Preset == model.PresetAuto {
		return chain.AutoTune(segments, p.Presets, p.Settings.Module.Width)
	}
	preset, ok := model.FindPreset(p.Presets, p.Settings.Preset)
	if !ok {
		return chain.Result{}, nil, fmt.Errorf("%w: unknown preset %q", model.ErrInvalidSettings, p.Settings.Preset)
	}
	res, err := chain.New(preset, p.Settings.Module.Width).Build(segments)
	return res, nil, err
}

// knownOpenings drops openings on chains that do not exist in this run.
func (p *Planner) knownOpenings(chains []model.WallChain, openings []model.Opening, logger *log.Logger) []model.Opening {
	ids := make(map[string]bool, len(chains))
	for _, c := range chains {
		ids[c.ID] = true
	}
	out := make([]model.Opening, 0, len(openings))
	for _, o := range openings {
		if !ids[o.ChainID] {
			logger.Printf("[plan] ignoring opening on unknown chain %q", o.ChainID)
			continue
		}
		if !(o.Width > 0) || !(o.Height > 0) {
			logger.Printf("[plan] ignoring empty opening on chain %q", o.ChainID)
			continue
		}
		out = append(out, o)
	}
	return out
}

func (p *Planner) logger() *log.Logger {
	if p.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return p.Logger
}
