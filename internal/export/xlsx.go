package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/wallplan/internal/model"
)

// Sheet names of the materials workbook.
const (
	SheetSummary  = "Summary"
	SheetPanels   = "Panels"
	SheetClosures = "Closures"
	SheetCorners  = "Corners"
	SheetOffcuts  = "Offcuts"
)

// ExportMaterialsXLSX writes the materials summary and the per-piece lists of
// a plan to an Excel workbook.
func ExportMaterialsXLSX(path string, result model.PlanResult, settings model.LayoutSettings) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetPanels, SheetClosures, SheetCorners, SheetOffcuts} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sheets := map[string][][]interface{}{
		SheetSummary:  summaryRows(result, settings),
		SheetPanels:   panelRows(result),
		SheetClosures: closureRows(result),
		SheetCorners:  cornerRows(result),
		SheetOffcuts:  offcutRows(result),
	}
	for name, rows := range sheets {
		if err := writeRows(f, name, rows, bold); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// writeRows fills a sheet cell by cell and makes the first row bold.
func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return fmt.Errorf("failed to create cell reference: %w", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				return fmt.Errorf("failed to set %s!%s: %w", sheet, cellRef, err)
			}
		}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, headerStyle)
}

func summaryRows(result model.PlanResult, settings model.LayoutSettings) [][]interface{} {
	m := result.Materials
	rows := [][]interface{}{
		{"Item", "Value"},
		{"Preset", result.Preset},
		{"Module width (mm)", settings.Module.Width},
		{"Module height (mm)", settings.Module.Height},
		{"Wall height (mm)", settings.WallHeight},
		{"Rows", m.Rows},
		{"Chains", len(result.Chains)},
		{"Side status", string(result.SideStatus)},
		{"Modules", m.ModuleCount},
		{"Full modules", m.FullModules},
		{"Corner cut modules", m.CornerCutModules},
		{"End cut modules", m.EndCutModules},
		{"Closure pieces", m.ClosurePieces},
	}
	for _, reason := range sortedReasons(m.ClosuresByReason) {
		rows = append(rows, []interface{}{"Closures " + string(reason), m.ClosuresByReason[reason]})
	}
	for _, t := range []model.JunctionType{model.JunctionEnd, model.JunctionL, model.JunctionT, model.JunctionX} {
		if n := m.Connectors[t]; n > 0 {
			rows = append(rows, []interface{}{"Connectors " + string(t), n})
		}
	}
	rows = append(rows,
		[]interface{}{"Connectors total", m.ConnectorTotal},
		[]interface{}{"Stabilization grids", m.StabilizationGrids},
		[]interface{}{"Corner adjustments", m.CornerAdjustments},
		[]interface{}{"Reusable offcuts", len(m.Offcuts)},
		[]interface{}{"Offcut length (mm)", m.OffcutLength},
		[]interface{}{"Chain waste (%)", m.WastePct},
	)
	return rows
}

func panelRows(result model.PlanResult) [][]interface{} {
	rows := [][]interface{}{{"Key", "Label ID", "Chain", "Row", "Side", "Face", "Slot", "Kind", "Start", "End", "Width"}}
	for _, p := range result.Panels {
		rows = append(rows, []interface{}{
			p.Key, PanelUUID(p.Key), p.ChainID, p.Row + 1, string(p.Side), string(p.Face),
			p.Slot, p.KindName(), p.Start, p.End, p.Width(),
		})
	}
	return rows
}

func closureRows(result model.PlanResult) [][]interface{} {
	rows := [][]interface{}{{"Key", "Chain", "Node", "Row", "Reason", "Offset", "Width", "X", "Y"}}
	for _, c := range result.Closures {
		rows = append(rows, []interface{}{
			c.Key, c.ChainID, c.NodeID, c.Row + 1, string(c.Reason), c.Offset, c.Width, c.Position.X, c.Position.Y,
		})
	}
	return rows
}

func cornerRows(result model.PlanResult) [][]interface{} {
	keys := make([]string, 0, len(result.CornerAdjustments))
	for k := range result.CornerAdjustments {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := [][]interface{}{{"Panel", "Chain", "Junction", "Row", "Role", "Offset units", "Offset (mm)", "Cut (mm)", "Reason"}}
	for _, k := range keys {
		a := result.CornerAdjustments[k]
		rows = append(rows, []interface{}{
			a.PanelKey, a.ChainID, a.JunctionID, a.Row + 1, string(a.Role), a.OffsetUnits, a.Offset, a.CutLength, a.Reason,
		})
	}
	return rows
}

func offcutRows(result model.PlanResult) [][]interface{} {
	rows := [][]interface{}{{"ID", "Panel", "Chain", "Row", "Length"}}
	for _, o := range result.Materials.Offcuts {
		rows = append(rows, []interface{}{o.ID, o.PanelKey, o.ChainID, o.Row + 1, o.Length})
	}
	return rows
}

func sortedReasons(m map[model.ClosureReason]int) []model.ClosureReason {
	out := make([]model.ClosureReason, 0, len(m))
	for r := range m {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
