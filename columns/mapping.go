// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

// Package columns decides which headers of a dataset hold the latitude and
// the longitude, asking an optional oracle first and falling back to name
// matching.
package columns

// Mapping names the headers that hold each coordinate. Both may be the same
// header when a single cell carries "lat, lng". The zero value means there is
// no mapping yet.
type Mapping struct {
	Lat string `json:"lat_column"`
	Lng string `json:"lng_column"`
}

// IsEmpty reports whether either side is missing, in which case no points can
// be built.
func (m Mapping) IsEmpty() bool {
	return m.Lat == "" || m.Lng == ""
}

// IsCombined reports whether both coordinates come from the same column.
func (m Mapping) IsCombined() bool {
	return !m.IsEmpty() && m.Lat == m.Lng
}

// Swap exchanges the latitude and longitude columns.
func (m Mapping) Swap() Mapping {
	return Mapping{Lat: m.Lng, Lng: m.Lat}
}

// Resolve blanks any side that does not name one of headers. A mapping kept
// across a schema change degrades to "no points" instead of failing.
func (m Mapping) Resolve(headers []string) Mapping {
	return Mapping{
		Lat: keepIfPresent(m.Lat, headers),
		Lng: keepIfPresent(m.Lng, headers),
	}
}

// Within reports whether both sides are non-empty and literally present in
// headers.
func (m Mapping) Within(headers []string) bool {
	return !m.IsEmpty() && m.Resolve(headers) == m
}

func keepIfPresent(name string, headers []string) string {
	for _, h := range headers {
		if h == name {
			return name
		}
	}

	return ""
}
