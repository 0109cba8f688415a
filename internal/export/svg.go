package export

import (
	"fmt"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"

	"github.com/piwi3910/wallplan/internal/model"
)

// PlanRenderer draws one row of a plan in plan coordinates (1 unit = 1 mm).
type PlanRenderer struct {
	Result     model.PlanResult
	Settings   model.LayoutSettings
	Row        int               // Module row to draw panels for
	Padding    float64           // Border around the plan (mm)
	Resolution canvas.Resolution // PNG output only
}

// NewPlanRenderer creates a renderer for row 0 with a 500 mm border.
func NewPlanRenderer(result model.PlanResult, settings model.LayoutSettings) *PlanRenderer {
	return &PlanRenderer{
		Result:     result,
		Settings:   settings,
		Padding:    500,
		Resolution: canvas.DPMM(0.1),
	}
}

// canvasRenderer is implemented by the svg and rasterizer renderers.
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// RenderSVG writes the plan drawing as SVG.
func (r *PlanRenderer) RenderSVG(w io.Writer) error {
	if len(r.Result.Chains) == 0 {
		return fmt.Errorf("no walls to render")
	}
	min, width, height := r.frame()
	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, min, width, height)
	return svgRenderer.Close()
}

// RenderPNG writes the plan drawing as PNG.
func (r *PlanRenderer) RenderPNG(w io.Writer) error {
	if len(r.Result.Chains) == 0 {
		return fmt.Errorf("no walls to render")
	}
	min, width, height := r.frame()
	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, min, width, height)
	return png.Encode(w, rast)
}

// frame returns the lower-left plan corner and the padded drawing size.
func (r *PlanRenderer) frame() (model.Point2D, float64, float64) {
	min, max := planBounds(r.Result)
	pad := r.Padding + r.Settings.Module.CoreThickness + 2*r.Settings.Module.PanelThickness
	min = model.Point2D{X: min.X - pad, Y: min.Y - pad}
	return min, max.X - min.X + pad, max.Y - min.Y + pad
}

func (r *PlanRenderer) renderToCanvas(renderer canvasRenderer, min model.Point2D, width, height float64) {
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	toCanvas := func(p model.Point2D) (float64, float64) {
		return p.X - min.X, p.Y - min.Y
	}

	// Footprint
	if fp := r.Result.Footprint.Vertices; len(fp) >= 3 {
		floorStyle := canvas.DefaultStyle
		floorStyle.Fill = canvas.Paint{Color: color.RGBA{R: 240, G: 238, B: 228, A: 255}}
		floorStyle.Stroke = canvas.Paint{Color: canvas.Transparent}

		cp := &canvas.Path{}
		for i, p := range fp {
			x, y := toCanvas(p)
			if i == 0 {
				cp.MoveTo(x, y)
			} else {
				cp.LineTo(x, y)
			}
		}
		cp.Close()
		renderer.RenderPath(cp, floorStyle, canvas.Identity)
	}

	// Wall cores
	coreStyle := canvas.DefaultStyle
	coreStyle.Fill = canvas.Paint{Color: canvas.Transparent}
	coreStyle.Stroke = canvas.Paint{Color: color.RGBA{R: 200, G: 200, B: 200, A: 255}}
	coreStyle.StrokeWidth = r.Settings.Module.CoreThickness
	for _, c := range r.Result.Chains {
		cp := &canvas.Path{}
		cp.MoveTo(toCanvas(c.Start))
		cp.LineTo(toCanvas(c.End))
		renderer.RenderPath(cp, coreStyle, canvas.Identity)
	}

	// Panels of the selected row, offset to their face
	offset := r.Settings.Module.CoreThickness/2 + r.Settings.Module.PanelThickness/2
	for _, p := range r.Result.Panels {
		if p.Row != r.Row {
			continue
		}
		c, ok := r.Result.ChainByID(p.ChainID)
		if !ok {
			continue
		}
		n := p.Face.Normal(c).Scale(offset)
		col := kindColors[p.KindName()]

		panelStyle := canvas.DefaultStyle
		panelStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		panelStyle.Stroke = canvas.Paint{Color: color.RGBA{R: uint8(col.R), G: uint8(col.G), B: uint8(col.B), A: 255}}
		panelStyle.StrokeWidth = r.Settings.Module.PanelThickness

		// Leave a hairline between neighbours
		gap := math.Min(2, p.Width()/4)
		cp := &canvas.Path{}
		cp.MoveTo(toCanvas(c.PointAt(p.Start + gap).Add(n)))
		cp.LineTo(toCanvas(c.PointAt(p.End - gap).Add(n)))
		renderer.RenderPath(cp, panelStyle, canvas.Identity)
	}

	// Closure pieces of the selected row
	closureColor := kindColors[model.KindTopoClosure]
	closureStyle := canvas.DefaultStyle
	closureStyle.Fill = canvas.Paint{Color: color.RGBA{R: uint8(closureColor.R), G: uint8(closureColor.G), B: uint8(closureColor.B), A: 255}}
	closureStyle.Stroke = canvas.Paint{Color: canvas.Transparent}
	for _, cl := range r.Result.Closures {
		if cl.Row != r.Row {
			continue
		}
		x, y := toCanvas(cl.Position)
		side := r.Settings.Module.CoreThickness
		renderer.RenderPath(canvas.Rectangle(side, side).Translate(x-side/2, y-side/2), closureStyle, canvas.Identity)
	}

	// Junctions
	nodeStyle := canvas.DefaultStyle
	nodeStyle.Fill = canvas.Paint{Color: canvas.Black}
	nodeStyle.Stroke = canvas.Paint{Color: canvas.Transparent}
	for _, n := range r.Result.Junctions {
		x, y := toCanvas(n.Position)
		renderer.RenderPath(canvas.Circle(30).Translate(x, y), nodeStyle, canvas.Identity)
	}
}
