// Package export writes plan results to PDF layout sheets, QR-coded panel
// labels, an Excel materials report, an SVG plan drawing and GeoJSON.
package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/wallplan/internal/model"
)

// kindColor represents an RGB color for a panel kind.
type kindColor struct {
	R, G, B int
}

// kindColors is the color scheme shared by the PDF sheets and the SVG plan.
var kindColors = map[string]kindColor{
	model.KindFull:        {R: 76, G: 175, B: 80},  // green
	model.KindCornerCut:   {R: 255, G: 152, B: 0},  // orange
	model.KindEndCut:      {R: 33, G: 150, B: 243}, // blue
	model.KindTopoClosure: {R: 156, G: 39, B: 176}, // purple
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	stripLabelW  = 40.0 // chain label column on row pages
	stripBarH    = 5.0  // height of one face bar
	stripHeight  = 2*stripBarH + 5.0
)

// ExportPDF generates a PDF with a plan overview page, one layout page per
// module row and a summary page with the materials list.
func ExportPDF(path string, result model.PlanResult, settings model.LayoutSettings) error {
	if len(result.Chains) == 0 {
		return fmt.Errorf("no walls to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderOverviewPage(pdf, result)

	rows := settings.Rows()
	byRow := panelsByRowAndChain(result.Panels)
	for row := 0; row < rows; row++ {
		renderRowPages(pdf, result, settings, row, byRow[row])
	}

	pdf.AddPage()
	renderSummaryPage(pdf, result, settings)

	return pdf.OutputFileAndClose(path)
}

// panelsByRowAndChain groups panels by row, then by chain id.
func panelsByRowAndChain(panels []model.Panel) map[int]map[string][]model.Panel {
	out := make(map[int]map[string][]model.Panel)
	for _, p := range panels {
		if out[p.Row] == nil {
			out[p.Row] = make(map[string][]model.Panel)
		}
		out[p.Row][p.ChainID] = append(out[p.Row][p.ChainID], p)
	}
	return out
}

// renderOverviewPage draws the whole plan: footprint, chains with their
// exterior side marked, and junctions.
func renderOverviewPage(pdf *fpdf.Fpdf, result model.PlanResult) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Plan overview (preset %s)", result.Preset)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Chains: %d | Junctions: %d | Footprint: %s | Sides: %s",
		len(result.Chains), len(result.Junctions), result.Footprint.Status, result.SideStatus)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	min, max := planBounds(result)
	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom
	spanX := math.Max(max.X-min.X, 1)
	spanY := math.Max(max.Y-min.Y, 1)
	scale := math.Min(drawWidth/spanX, drawHeight/spanY)
	offsetX := marginLeft + (drawWidth-spanX*scale)/2

	// Plan Y points up, page Y points down
	toPage := func(p model.Point2D) (float64, float64) {
		return offsetX + (p.X-min.X)*scale, drawAreaTop + (max.Y-p.Y)*scale
	}

	if len(result.Footprint.Vertices) >= 3 {
		pts := make([]fpdf.PointType, len(result.Footprint.Vertices))
		for i, p := range result.Footprint.Vertices {
			x, y := toPage(p)
			pts[i] = fpdf.PointType{X: x, Y: y}
		}
		pdf.SetFillColor(235, 235, 225)
		pdf.SetDrawColor(235, 235, 225)
		pdf.Polygon(pts, "F")
	}

	for _, c := range result.Chains {
		x1, y1 := toPage(c.Start)
		x2, y2 := toPage(c.End)
		pdf.SetDrawColor(60, 60, 60)
		pdf.SetLineWidth(0.8)
		pdf.Line(x1, y1, x2, y2)

		// Tick on the exterior side at the chain midpoint
		if side, ok := result.Sides[c.ID]; ok && side.IsPerimeter() {
			n := c.PositivePerp()
			if !side.OutsideIsPositivePerp {
				n = n.Scale(-1)
			}
			mx, my := toPage(c.Midpoint())
			pdf.SetDrawColor(200, 0, 0)
			pdf.SetLineWidth(0.4)
			pdf.Line(mx, my, mx+n.X*4, my-n.Y*4)
		}

		mx, my := toPage(c.Midpoint())
		pdf.SetFont("Helvetica", "", 7)
		pdf.SetTextColor(0, 0, 0)
		pdf.Text(mx+1, my-1, c.ID)
	}

	for _, n := range result.Junctions {
		x, y := toPage(n.Position)
		switch n.Type {
		case model.JunctionEnd:
			pdf.SetFillColor(156, 39, 176)
		case model.JunctionL:
			pdf.SetFillColor(255, 152, 0)
		default:
			pdf.SetFillColor(33, 150, 243)
		}
		pdf.Circle(x, y, 1.2, "F")
	}
}

// renderRowPages draws one module row as horizontal strips, one per chain,
// with the exterior face above the interior face. Long plans continue on
// further pages.
func renderRowPages(pdf *fpdf.Fpdf, result model.PlanResult, settings model.LayoutSettings, row int, byChain map[string][]model.Panel) {
	maxLen := 0.0
	for _, c := range result.Chains {
		maxLen = math.Max(maxLen, c.Length)
	}
	barWidth := pageWidth - marginLeft - marginRight - stripLabelW
	scale := barWidth / math.Max(maxLen, 1)
	perPage := int((pageHeight - drawAreaTop - marginBottom) / stripHeight)
	if perPage < 1 {
		perPage = 1
	}

	bottom := float64(row) * settings.Module.Height
	for start := 0; start < len(result.Chains); start += perPage {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(marginLeft, marginTop)
		title := fmt.Sprintf("Row %d (%.0f - %.0f mm)", row+1, bottom, bottom+settings.Module.Height)
		pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")
		drawKindLegend(pdf, marginTop+headerHeight)

		y := drawAreaTop
		end := start + perPage
		if end > len(result.Chains) {
			end = len(result.Chains)
		}
		for _, c := range result.Chains[start:end] {
			drawChainStrip(pdf, c, byChain[c.ID], result.CornerAdjustments, scale, y)
			y += stripHeight
		}
	}
}

// drawChainStrip renders the panels of one chain in one row.
func drawChainStrip(pdf *fpdf.Fpdf, c model.WallChain, panels []model.Panel, adjustments map[string]model.CornerAdjustment, scale, y float64) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(stripLabelW, 4, fmt.Sprintf("%s (%.0f mm)", c.ID, c.Length), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(marginLeft, y+stripBarH)
	pdf.CellFormat(stripLabelW, 4, "ext / int", "", 0, "L", false, 0, "")

	x0 := marginLeft + stripLabelW
	pdf.SetDrawColor(180, 180, 180)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x0, y, c.Length*scale, 2*stripBarH, "D")

	for _, p := range panels {
		by := y
		if p.Side == model.SideInterior {
			by += stripBarH
		}
		col := kindColors[p.KindName()]
		px := x0 + p.Start*scale
		pw := p.Width() * scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.2)
		pdf.Rect(px, by, pw, stripBarH, "FD")

		label := fmt.Sprintf("%.0f", p.Width())
		if adj, ok := adjustments[p.Key]; ok {
			label = fmt.Sprintf("%.1fT", adj.OffsetUnits)
		}
		pdf.SetFont("Helvetica", "", 5)
		pdf.SetTextColor(0, 0, 0)
		if lw := pdf.GetStringWidth(label); lw < pw-1 {
			pdf.SetXY(px+(pw-lw)/2, by+0.5)
			pdf.CellFormat(lw, stripBarH-1, label, "", 0, "C", false, 0, "")
		}
	}
}

// drawKindLegend renders color swatches for the panel kinds.
func drawKindLegend(pdf *fpdf.Fpdf, y float64) {
	kinds := []string{model.KindFull, model.KindCornerCut, model.KindEndCut, model.KindTopoClosure}
	pdf.SetFont("Helvetica", "", 7)
	x := marginLeft
	for _, k := range kinds {
		col := kindColors[k]
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(x, y+0.5, 3, 3, "F")
		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(x+4, y)
		w := pdf.GetStringWidth(k) + 2
		pdf.CellFormat(w, 4, k, "", 0, "L", false, 0, "")
		x += w + 8
	}
}

// renderSummaryPage draws the materials list, side classification and settings.
func renderSummaryPage(pdf *fpdf.Fpdf, result model.PlanResult, settings model.LayoutSettings) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Materials Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	m := result.Materials
	items := []struct {
		label string
		value string
	}{
		{"Rows", fmt.Sprintf("%d", m.Rows)},
		{"Modules", fmt.Sprintf("%d", m.ModuleCount)},
		{"  Full", fmt.Sprintf("%d", m.FullModules)},
		{"  Corner cut", fmt.Sprintf("%d", m.CornerCutModules)},
		{"  End cut", fmt.Sprintf("%d", m.EndCutModules)},
		{"Closure pieces", fmt.Sprintf("%d", m.ClosurePieces)},
		{"Connectors", fmt.Sprintf("%d", m.ConnectorTotal)},
		{"Stabilization grids", fmt.Sprintf("%d", m.StabilizationGrids)},
		{"Corner adjustments", fmt.Sprintf("%d", m.CornerAdjustments)},
		{"Reusable offcuts", fmt.Sprintf("%d (%.0f mm)", len(m.Offcuts), m.OffcutLength)},
		{"Chain waste", fmt.Sprintf("%.1f%%", m.WastePct)},
	}
	y = drawKeyValues(pdf, "Overall", items, marginLeft, y)

	// Side classification table on the right half
	x := marginLeft + 130
	ty := marginTop + 18
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(x, ty)
	pdf.CellFormat(100, 7, "Chain Sides", "", 0, "L", false, 0, "")
	ty += 9

	colWidths := []float64{20, 20, 45, 30, 20}
	headers := []string{"Chain", "Length", "Class", "Reason", "Votes"}
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	cx := x
	for i, h := range headers {
		pdf.SetXY(cx, ty)
		pdf.CellFormat(colWidths[i], 5, h, "1", 0, "C", true, 0, "")
		cx += colWidths[i]
	}
	ty += 5

	pdf.SetFont("Helvetica", "", 7)
	maxRows := int((pageHeight - marginBottom - 8 - ty) / 5)
	for i, c := range result.Chains {
		if i >= maxRows {
			pdf.SetXY(x, ty)
			pdf.CellFormat(100, 5, fmt.Sprintf("... %d more chains", len(result.Chains)-i), "", 0, "L", false, 0, "")
			break
		}
		s := result.Sides[c.ID]
		class := string(s.Classification)
		if s.Overridden {
			class += " (manual)"
		}
		cells := []string{c.ID, fmt.Sprintf("%.0f", c.Length), class, s.Reason, fmt.Sprintf("%d", s.Votes.Total())}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		cx = x
		for j, cell := range cells {
			pdf.SetXY(cx, ty)
			pdf.CellFormat(colWidths[j], 5, cell, "1", 0, "C", true, 0, "")
			cx += colWidths[j]
		}
		ty += 5
	}

	// Settings below the materials
	y += 6
	settingsItems := []struct {
		label string
		value string
	}{
		{"Module", fmt.Sprintf("%.0f x %.0f mm", settings.Module.Width, settings.Module.Height)},
		{"Core / panel", fmt.Sprintf("%.0f / %.0f mm", settings.Module.CoreThickness, settings.Module.PanelThickness)},
		{"Tooth", fmt.Sprintf("%.2f mm", settings.Module.Tooth())},
		{"Wall height", fmt.Sprintf("%.0f mm", settings.WallHeight)},
		{"Preset", result.Preset},
	}
	drawKeyValues(pdf, "Settings", settingsItems, marginLeft, y)

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by wallplan", "", 0, "C", false, 0, "")
}

// drawKeyValues renders a titled list of label/value pairs and returns the
// next free y position.
func drawKeyValues(pdf *fpdf.Fpdf, title string, items []struct {
	label string
	value string
}, x, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(x, y)
	pdf.CellFormat(100, 7, title, "", 0, "L", false, 0, "")
	y += 9

	for _, item := range items {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetXY(x+5, y)
		pdf.CellFormat(55, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(50, 6, item.value, "", 0, "L", false, 0, "")
		y += 6
	}
	return y
}

// planBounds returns the bounding box of all chain endpoints.
func planBounds(result model.PlanResult) (min, max model.Point2D) {
	var pts model.Outline
	for _, c := range result.Chains {
		pts = append(pts, c.Start, c.End)
	}
	return pts.BoundingBox()
}
