package model

import "sort"

// Offcut is the unused part of a module that was cut down to an end-cut piece.
type Offcut struct {
	ID       string  `json:"id"`
	PanelKey string  `json:"panel_key"` // The end-cut panel the offcut came from
	ChainID  string  `json:"chain_id"`
	Row      int     `json:"row"`
	Length   float64 `json:"length"` // mm
}

// DetectOffcuts returns the remainders of end-cut panels that are long enough
// to be reused, longest first. Ties keep panel order.
func DetectOffcuts(panels []Panel, moduleWidth, minLength float64) []Offcut {
	var offcuts []Offcut
	for _, p := range panels {
		if _, ok := p.Kind.(EndCut); !ok {
			continue
		}
		rest := moduleWidth - p.Width()
		if rest < minLength || rest <= 0 {
			continue
		}
		offcuts = append(offcuts, Offcut{
			ID:       p.Key + "/offcut",
			PanelKey: p.Key,
			ChainID:  p.ChainID,
			Row:      p.Row,
			Length:   rest,
		})
	}

	sort.SliceStable(offcuts, func(i, j int) bool {
		return offcuts[i].Length > offcuts[j].Length
	})
	return offcuts
}

// TotalOffcutLength returns the summed offcut length in mm.
func TotalOffcutLength(offcuts []Offcut) float64 {
	var total float64
	for _, o := range offcuts {
		total += o.Length
	}
	return total
}
