package importer

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/JoshVarga/svgparser"

	"github.com/piwi3910/wallplan/internal/model"
)

// ImportSVG imports wall centerlines from an SVG drawing. <line>, <polyline>
// and <polygon> elements become segments; user units are taken as mm. The Y
// axis is flipped so the plan keeps its orientation. The layer of an element
// is the id of its closest enclosing <g>.
func ImportSVG(path string, layers ...string) ImportResult {
	f, err := os.Open(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open SVG file: %v", err)}}
	}
	defer f.Close()
	return ImportSVGFromReader(f, layers...)
}

// ImportSVGFromReader imports wall centerlines from SVG content.
func ImportSVGFromReader(r io.Reader, layers ...string) ImportResult {
	result := ImportResult{}

	root, err := svgparser.Parse(r, false)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot parse SVG: %v", err))
		return result
	}

	w := svgWalker{filter: newLayerFilter(layers), skipped: make(map[string]int)}
	w.walk(root, "")
	result.Segments = w.segments
	result.Warnings = w.warnings
	for _, name := range sortedKeys(w.skipped) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Skipped %d unsupported <%s> elements", w.skipped[name], name))
	}

	if len(result.Segments) == 0 {
		result.Errors = append(result.Errors, "No wall lines found in SVG file")
	}
	return result
}

type svgWalker struct {
	filter   layerFilter
	segments []model.WallSegment
	warnings []string
	skipped  map[string]int
}

func (w *svgWalker) walk(el *svgparser.Element, layer string) {
	if _, ok := el.Attributes["transform"]; ok {
		w.warnings = append(w.warnings,
			fmt.Sprintf("Ignoring transform on <%s> %q", el.Name, el.Attributes["id"]))
	}

	switch el.Name {
	case "svg", "defs", "title", "desc", "metadata", "style":
	case "g":
		if id := el.Attributes["id"]; id != "" {
			layer = id
		}
	case "line":
		if w.filter.accepts(layer) {
			w.line(el, layer)
		}
	case "polyline", "polygon":
		if w.filter.accepts(layer) {
			w.polyline(el, layer, el.Name == "polygon")
		}
	default:
		w.skipped[el.Name]++
	}

	for _, child := range el.Children {
		w.walk(child, layer)
	}
}

func (w *svgWalker) line(el *svgparser.Element, layer string) {
	var v [4]float64
	for i, name := range []string{"x1", "y1", "x2", "y2"} {
		s := strings.TrimSpace(el.Attributes[name])
		if s == "" {
			continue // SVG defaults missing coordinates to 0
		}
		n, err := parseLength(s)
		if err != nil {
			w.warnings = append(w.warnings, fmt.Sprintf("Skipped <line> with invalid %s %q", name, s))
			return
		}
		v[i] = n
	}
	w.segments = append(w.segments, model.NewWallSegment(v[0], -v[1], v[2], -v[3], layer))
}

func (w *svgWalker) polyline(el *svgparser.Element, layer string, closed bool) {
	pts, err := parsePoints(el.Attributes["points"])
	if err != nil {
		w.warnings = append(w.warnings, fmt.Sprintf("Skipped <%s>: %v", el.Name, err))
		return
	}
	segs := polylineSegments(pts, closed, layer)
	if len(segs) == 0 {
		w.warnings = append(w.warnings, fmt.Sprintf("Skipped <%s> with fewer than 2 points", el.Name))
		return
	}
	w.segments = append(w.segments, segs...)
}

// parsePoints reads an SVG points list ("x,y x,y" or "x y x y") into
// vertices with a flipped Y axis.
func parsePoints(s string) ([][]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("odd number of coordinates in %q", s)
	}
	pts := make([][]float64, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		x, err := parseLength(fields[i])
		if err != nil {
			return nil, err
		}
		y, err := parseLength(fields[i+1])
		if err != nil {
			return nil, err
		}
		pts = append(pts, []float64{x, -y})
	}
	return pts, nil
}

// parseLength parses a coordinate, accepting an optional "mm" or "px" suffix.
func parseLength(s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimSuffix(strings.TrimSpace(s), "mm"), "px")
	return strconv.ParseFloat(s, 64)
}
