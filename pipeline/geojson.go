// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

// FeatureCollection is a GeoJSON document of the visible points.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is one GeoJSON point with its source row as properties.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry holds [lng, lat] coordinates.
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Property names added next to the row values.
const (
	PropertyRow   = "_row"
	PropertyColor = "_color"
)

// GeoJSON renders the visible points. Each feature carries the row cells,
// the row index and the display color.
func (r *Result) GeoJSON() FeatureCollection {
	fc := FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(r.Visible))}

	for i, p := range r.Visible {
		props := make(map[string]any, len(p.Row)+2)
		for k, v := range p.Row {
			props[k] = v
		}

		props[PropertyRow] = p.Index
		if i < len(r.Colors) {
			props[PropertyColor] = r.Colors[i]
		}

		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			Geometry:   Geometry{Type: "Point", Coordinates: []float64{p.Lng, p.Lat}},
			Properties: props,
		})
	}

	return fc
}
