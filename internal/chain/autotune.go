package chain

import (
	"fmt"
	"sync"

	"github.com/piwi3910/wallplan/internal/model"
)

// chainCountWeight weighs fragmentation against waste in the preset score.
const chainCountWeight = 0.3

// Score rates a build; lower is better.
func Score(stats model.ChainStats) float64 {
	var frag float64
	if stats.Original > 0 {
		frag = float64(stats.Chains) / float64(stats.Original)
	}
	return stats.WastePct + chainCountWeight*frag
}

// AutoTune builds the segments under every preset and returns the result with
// the lowest score, together with a run summary per preset. The builds run
// concurrently; selection is sequential and ties keep preset order.
func AutoTune(segments []model.WallSegment, presets []model.TolerancePreset, moduleWidth float64) (Result, []model.PresetRun, error) {
	if len(presets) == 0 {
		return Result{}, nil, fmt.Errorf("%w: no presets to evaluate", model.ErrInvalidSettings)
	}

	results := make([]Result, len(presets))
	errs := make([]error, len(presets))
	var wg sync.WaitGroup
	for i, p := range presets {
		wg.Add(1)
		go func(i int, p model.TolerancePreset) {
			defer wg.Done()
			results[i], errs[i] = New(p, moduleWidth).Build(segments)
		}(i, p)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return Result{}, nil, fmt.Errorf("preset %q: %w", presets[i].Name, err)
		}
	}

	best := 0
	runs := make([]model.PresetRun, len(presets))
	for i, r := range results {
		runs[i] = model.PresetRun{
			Preset:   presets[i].Name,
			Chains:   r.Stats.Chains,
			WastePct: r.Stats.WastePct,
			Score:    Score(r.Stats),
			Stats:    r.Stats,
		}
		if runs[i].Score < runs[best].Score {
			best = i
		}
	}
	runs[best].Selected = true
	return results[best], runs, nil
}
