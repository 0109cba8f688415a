package export

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/piwi3910/wallplan/internal/model"
)

// Feature kinds written to the "feature" property.
const (
	FeatureChain     = "chain"
	FeatureJunction  = "junction"
	FeatureFootprint = "footprint"
	FeatureClosure   = "closure"
	FeatureOpening   = "opening-candidate"
)

// ToGeoJSON converts the plan geometry to a feature collection in plan
// millimetres: chains as line strings with their side classification,
// junctions and row 0 closures as points, the footprint as a polygon and
// opening candidates as line strings.
func ToGeoJSON(result model.PlanResult) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	if fp := result.Footprint.Vertices; len(fp) >= 3 {
		ring := make(orb.Ring, 0, len(fp)+1)
		for _, p := range fp {
			ring = append(ring, toOrb(p))
		}
		ring = append(ring, toOrb(fp[0]))
		f := geojson.NewFeature(orb.Polygon{ring})
		f.Properties["feature"] = FeatureFootprint
		f.Properties["status"] = string(result.Footprint.Status)
		f.Properties["area"] = result.Footprint.SignedArea
		fc.Append(f)
	}

	for _, c := range result.Chains {
		f := geojson.NewFeature(orb.LineString{toOrb(c.Start), toOrb(c.End)})
		f.ID = c.ID
		f.Properties["feature"] = FeatureChain
		f.Properties["id"] = c.ID
		f.Properties["length"] = c.Length
		f.Properties["start_node"] = c.StartNode
		f.Properties["end_node"] = c.EndNode
		if s, ok := result.Sides[c.ID]; ok {
			f.Properties["classification"] = string(s.Classification)
			f.Properties["outside_is_positive_perp"] = s.OutsideIsPositivePerp
			if s.Reason != "" {
				f.Properties["reason"] = s.Reason
			}
		}
		fc.Append(f)
	}

	for _, n := range result.Junctions {
		f := geojson.NewFeature(toOrb(n.Position))
		f.ID = n.ID
		f.Properties["feature"] = FeatureJunction
		f.Properties["id"] = n.ID
		f.Properties["type"] = string(n.Type)
		f.Properties["degree"] = n.Degree()
		fc.Append(f)
	}

	for _, cl := range result.Closures {
		if cl.Row != 0 {
			continue
		}
		f := geojson.NewFeature(toOrb(cl.Position))
		f.Properties["feature"] = FeatureClosure
		f.Properties["chain"] = cl.ChainID
		f.Properties["node"] = cl.NodeID
		f.Properties["reason"] = string(cl.Reason)
		f.Properties["width"] = cl.Width
		fc.Append(f)
	}

	for _, o := range result.OpeningCandidates {
		f := geojson.NewFeature(orb.LineString{toOrb(o.Start), toOrb(o.End)})
		f.Properties["feature"] = FeatureOpening
		f.Properties["width"] = o.Width
		f.Properties["chain_a"] = o.ChainA
		f.Properties["chain_b"] = o.ChainB
		fc.Append(f)
	}

	return fc
}

// ExportGeoJSON writes the plan geometry to a GeoJSON file.
func ExportGeoJSON(path string, result model.PlanResult) error {
	if len(result.Chains) == 0 {
		return fmt.Errorf("no walls to export")
	}
	data, err := ToGeoJSON(result).MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ExportSVG renders one row of the plan to an SVG file.
func ExportSVG(path string, result model.PlanResult, settings model.LayoutSettings, row int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	r := NewPlanRenderer(result, settings)
	r.Row = row
	if err := r.RenderSVG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func toOrb(p model.Point2D) orb.Point {
	return orb.Point{p.X, p.Y}
}
