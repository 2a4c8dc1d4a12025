// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package points

import (
	"github.com/golang/geo/s2"
	"github.com/jcodagnone/sheetmap/spatial"
)

// Bounds is the box a map view should fit to show every point. When the
// points straddle the antimeridian West is greater than East.
type Bounds struct {
	South  float64       `json:"south"`
	West   float64       `json:"west"`
	North  float64       `json:"north"`
	East   float64       `json:"east"`
	Center spatial.Point `json:"center"`
}

// BoundsOf returns the smallest box holding every point, and false when there
// are none.
func BoundsOf(pts []Point) (Bounds, bool) {
	if len(pts) == 0 {
		return Bounds{}, false
	}

	rect := s2.EmptyRect()
	for _, p := range pts {
		rect = rect.AddPoint(s2.LatLngFromDegrees(p.Lat, p.Lng))
	}

	lo, hi, center := rect.Lo(), rect.Hi(), rect.Center()

	return Bounds{
		South:  lo.Lat.Degrees(),
		West:   lo.Lng.Degrees(),
		North:  hi.Lat.Degrees(),
		East:   hi.Lng.Degrees(),
		Center: spatial.Point{Lat: center.Lat.Degrees(), Lng: center.Lng.Degrees()},
	}, true
}
