package model

import "math"

// MaterialsSummary holds the quantities needed to order a layout.
type MaterialsSummary struct {
	Rows               int                   `json:"rows"`
	ModuleCount        int                   `json:"module_count"` // Full, corner-cut and end-cut panels
	FullModules        int                   `json:"full_modules"`
	CornerCutModules   int                   `json:"corner_cut_modules"`
	EndCutModules      int                   `json:"end_cut_modules"`
	ClosurePieces      int                   `json:"closure_pieces"`
	ClosuresByReason   map[ClosureReason]int `json:"closures_by_reason"`
	Connectors         map[JunctionType]int  `json:"connectors"` // Fixed connectors by junction type
	ConnectorTotal     int                   `json:"connector_total"`
	StabilizationGrids int                   `json:"stabilization_grids"`
	CornerAdjustments  int                   `json:"corner_adjustments"`
	Offcuts            []Offcut              `json:"offcuts"`
	OffcutLength       float64               `json:"offcut_length"` // mm
	WastePct           float64               `json:"waste_pct"`
}

// connectorsPerRow is the number of fixed connectors a junction needs in each row.
var connectorsPerRow = map[JunctionType]int{
	JunctionEnd: 1,
	JunctionL:   2,
	JunctionT:   3,
	JunctionX:   4,
}

// ConnectorsPerRow returns the fixed connector count for one row of a junction type.
func ConnectorsPerRow(t JunctionType) int {
	return connectorsPerRow[t]
}

// StabilizationRows returns the number of rows topped by a stabilization grid.
func StabilizationRows(rows, interval int) int {
	if interval <= 0 {
		return 0
	}
	return rows / interval
}

// CalculateMaterials aggregates panel, closure, junction and chain counts of a
// plan into an order summary.
func CalculateMaterials(result PlanResult, settings LayoutSettings) MaterialsSummary {
	rows := settings.Rows()
	summary := MaterialsSummary{
		Rows:              rows,
		ClosuresByReason:  map[ClosureReason]int{},
		Connectors:        map[JunctionType]int{},
		CornerAdjustments: len(result.CornerAdjustments),
		WastePct:          result.Stats.WastePct,
	}

	for _, p := range result.Panels {
		switch p.Kind.(type) {
		case CornerCut:
			summary.CornerCutModules++
		case EndCut:
			summary.EndCutModules++
		case TopoClosure:
			// Counted from the closure placements below
		default:
			summary.FullModules++
		}
	}
	summary.ModuleCount = summary.FullModules + summary.CornerCutModules + summary.EndCutModules

	for _, c := range result.Closures {
		summary.ClosurePieces++
		summary.ClosuresByReason[c.Reason]++
	}

	for _, n := range result.Junctions {
		per := ConnectorsPerRow(n.Type)
		if per == 0 {
			continue
		}
		summary.Connectors[n.Type] += per * rows
		summary.ConnectorTotal += per * rows
	}

	// One grid per started module length of each chain on every grid row.
	gridRows := StabilizationRows(rows, settings.StabilizationRowInterval)
	if gridRows > 0 && settings.Module.Width > 0 {
		perLayer := 0
		for _, c := range result.Chains {
			perLayer += int(math.Ceil(c.Length/settings.Module.Width - 1e-9))
		}
		summary.StabilizationGrids = gridRows * perLayer
	}

	summary.Offcuts = DetectOffcuts(result.Panels, settings.Module.Width, settings.MinOffcutLength)
	summary.OffcutLength = TotalOffcutLength(summary.Offcuts)

	return summary
}
