package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/wallplan/internal/model"
)

// panelNamespace scopes the name-based UUIDs printed on panel labels, so the
// same panel key always gets the same id across runs.
var panelNamespace = uuid.MustParse("6f1c7d2e-4b8a-5e39-9d0f-2a7c51e4b6d3")

// LabelInfo holds the data encoded into each panel label's QR code.
type LabelInfo struct {
	ID          string  `json:"id"`
	Key         string  `json:"key"`
	ChainID     string  `json:"chain"`
	Row         int     `json:"row"`
	Side        string  `json:"side"`
	Kind        string  `json:"kind"`
	Width       float64 `json:"width_mm"`
	Start       float64 `json:"start_mm"`
	End         float64 `json:"end_mm"`
	OffsetUnits float64 `json:"offset_units,omitempty"` // Corner phase offset in teeth
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelPageWidth  = 215.9 // US Letter width in mm
	labelPageHeight = 279.4 // US Letter height in mm
	labelMarginTop  = 12.7  // mm
	labelMarginLeft = 4.8   // mm
	labelWidth      = 66.7  // mm per label
	labelHeight     = 25.4  // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// PanelUUID returns the deterministic label id for a panel key.
func PanelUUID(key string) string {
	return uuid.NewSHA1(panelNamespace, []byte(key)).String()
}

// ExportLabels generates a PDF of QR-coded labels, one per placed panel, on
// an Avery 5160 sheet layout (3 columns x 10 rows on US Letter).
func ExportLabels(path string, result model.PlanResult) error {
	labels := CollectLabelInfos(result)
	if len(labels) == 0 {
		return fmt.Errorf("no panels to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.Key, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	// Light border as cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := "qr_" + info.ID
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, truncate(pdf, info.Key, textW), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	dims := fmt.Sprintf("%s %.0f mm", info.Kind, info.Width)
	pdf.CellFormat(textW, 3.5, dims, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	where := fmt.Sprintf("Row %d %s @ %.0f-%.0f", info.Row+1, info.Side, info.Start, info.End)
	pdf.CellFormat(textW, 3, where, "", 1, "L", false, 0, "")

	if info.OffsetUnits > 0 {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, fmt.Sprintf("Corner offset %.1f teeth", info.OffsetUnits), "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}

// truncate shortens s with an ellipsis until it fits the width.
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}

// CollectLabelInfos extracts label information from a plan in panel order.
func CollectLabelInfos(result model.PlanResult) []LabelInfo {
	labels := make([]LabelInfo, 0, len(result.Panels))
	for _, p := range result.Panels {
		info := LabelInfo{
			ID:      PanelUUID(p.Key),
			Key:     p.Key,
			ChainID: p.ChainID,
			Row:     p.Row,
			Side:    string(p.Side),
			Kind:    p.KindName(),
			Width:   p.Width(),
			Start:   p.Start,
			End:     p.End,
		}
		if adj, ok := result.CornerAdjustments[p.Key]; ok {
			info.OffsetUnits = adj.OffsetUnits
		}
		labels = append(labels, info)
	}
	return labels
}
