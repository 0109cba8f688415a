package engine

import (
	"fmt"

	"github.com/piwi3910/wallplan/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.LayoutSettings
}

// ComparisonResult holds the plan and computed statistics for a single
// scenario.
type ComparisonResult struct {
	Scenario     ComparisonScenario
	Result       model.PlanResult
	Chains       int
	Modules      int
	Closures     int
	WastePercent float64
	Unresolved   int
	Err          error
}

// CompareScenarios plans the same input under every scenario and returns the
// results in scenario order. A scenario with invalid settings keeps its error
// and does not stop the others.
func (p *Planner) CompareScenarios(scenarios []ComparisonScenario, in Input) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		planner := &Planner{Settings: scenario.Settings, Presets: p.Presets, Logger: p.Logger}
		result, err := planner.Plan(in)
		if err != nil {
			results = append(results, ComparisonResult{Scenario: scenario, Err: err})
			continue
		}

		unresolved := 0
		for _, s := range result.Sides {
			if s.Classification == model.SideUnresolved {
				unresolved++
			}
		}

		results = append(results, ComparisonResult{
			Scenario:     scenario,
			Result:       result,
			Chains:       len(result.Chains),
			Modules:      result.Materials.ModuleCount,
			Closures:     result.Materials.ClosurePieces,
			WastePercent: result.Stats.WastePct,
			Unresolved:   unresolved,
		})
	}

	return results
}

// BuildPresetScenarios generates one scenario per tolerance preset, plus the
// auto-tuned selection first, so the caller can see what each preset would
// have produced.
func BuildPresetScenarios(base model.LayoutSettings, presets []model.TolerancePreset) []ComparisonScenario {
	auto := base
	auto.Preset = model.PresetAuto
	scenarios := []ComparisonScenario{{Name: "Auto", Settings: auto}}

	for _, preset := range presets {
		s := base
		s.Preset = preset.Name
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Preset %s", preset.Name),
			Settings: s,
		})
	}
	return scenarios
}

// ComparePresets plans the input under auto-tuning and every preset.
func (p *Planner) ComparePresets(in Input) []ComparisonResult {
	return p.CompareScenarios(BuildPresetScenarios(p.Settings, p.Presets), in)
}
