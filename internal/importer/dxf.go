package importer

import (
	"fmt"
	"strings"

	"github.com/piwi3910/wallplan/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

// ImportDXF imports wall centerlines from a DXF file. Every LINE becomes one
// segment and every LWPOLYLINE contributes one segment per edge, including the
// closing edge when the polyline is closed. When layers is non-empty only
// entities on those layers (case-insensitive) are imported.
func ImportDXF(path string, layers ...string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	filter := newLayerFilter(layers)
	skipped := make(map[string]int)
	for _, ent := range entities {
		layer := entityLayer(ent)
		if !filter.accepts(layer) {
			continue
		}

		switch e := ent.(type) {
		case *entity.Line:
			result.Segments = append(result.Segments,
				model.NewWallSegment(e.Start[0], e.Start[1], e.End[0], e.End[1], layer))

		case *entity.LwPolyline:
			if hasBulge(e.Bulges) {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("LWPOLYLINE on layer %q has arc segments, importing chords", layer))
			}
			segs := polylineSegments(e.Vertices, e.Closed, layer)
			if len(segs) == 0 {
				result.Warnings = append(result.Warnings,
					"Skipped LWPOLYLINE with fewer than 2 vertices")
				continue
			}
			result.Segments = append(result.Segments, segs...)

		default:
			skipped[fmt.Sprintf("%T", ent)]++
		}
	}

	for _, kind := range sortedKeys(skipped) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Skipped %d unsupported %s entities", skipped[kind], strings.TrimPrefix(kind, "*entity.")))
	}

	if len(result.Segments) == 0 {
		if len(layers) > 0 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("No wall lines found on layers %s", strings.Join(layers, ", ")))
		} else {
			result.Errors = append(result.Errors, "No wall lines found in DXF file")
		}
	}
	return result
}

// polylineSegments converts a vertex list into consecutive segments. Vertices
// carry at least X and Y; Z is ignored.
func polylineSegments(vertices [][]float64, closed bool, layer string) []model.WallSegment {
	var pts []model.Point2D
	for _, v := range vertices {
		if len(v) < 2 {
			continue
		}
		pts = append(pts, model.Point2D{X: v[0], Y: v[1]})
	}
	if len(pts) < 2 {
		return nil
	}

	segs := make([]model.WallSegment, 0, len(pts))
	for i := 0; i+1 < len(pts); i++ {
		segs = append(segs, model.WallSegment{Start: pts[i], End: pts[i+1], Layer: layer})
	}
	if closed && len(pts) > 2 {
		segs = append(segs, model.WallSegment{Start: pts[len(pts)-1], End: pts[0], Layer: layer})
	}
	return segs
}

func hasBulge(bulges []float64) bool {
	for _, b := range bulges {
		if b > 1e-9 || b < -1e-9 {
			return true
		}
	}
	return false
}

// entityLayer returns the layer name of an entity, or "" if it has none.
func entityLayer(ent entity.Entity) string {
	l := ent.Layer()
	if l == nil {
		return ""
	}
	return l.Name()
}

// layerFilter accepts every layer when empty.
type layerFilter map[string]bool

func newLayerFilter(layers []string) layerFilter {
	f := make(layerFilter, len(layers))
	for _, l := range layers {
		if l = strings.TrimSpace(l); l != "" {
			f[strings.ToLower(l)] = true
		}
	}
	return f
}

func (f layerFilter) accepts(layer string) bool {
	return len(f) == 0 || f[strings.ToLower(layer)]
}
