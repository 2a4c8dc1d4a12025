// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package points

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jcodagnone/sheetmap/columns"
	"github.com/jcodagnone/sheetmap/sheet"
	"github.com/jcodagnone/sheetmap/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSeparateColumns(t *testing.T) {
	rows := []sheet.Row{
		{"name": "Valletta", "lat": "35,8989", "lng": "14.5146"},
		{"name": "Montevideo", "lat": "34.9011 S", "lng": "56.1645 W"},
		{"name": "missing", "lat": "", "lng": "14.5"},
		{"name": "absent", "lat": "35.1"},
		{"name": "text", "lat": "north", "lng": "14.5"},
		{"name": "placeholder", "lat": "0", "lng": "0,0"},
		{"name": "out of range", "lat": "135", "lng": "14.5"},
		{"name": "numbers", "lat": 36.04, "lng": 14.24},
	}

	pts, stats := BuildWithStats(rows, columns.Mapping{Lat: "lat", Lng: "lng"})

	want := []Point{
		{Point: spatial.Point{Lat: 35.8989, Lng: 14.5146}, Index: 0, Row: rows[0]},
		{Point: spatial.Point{Lat: -34.9011, Lng: -56.1645}, Index: 1, Row: rows[1]},
		{Point: spatial.Point{Lat: 36.04, Lng: 14.24}, Index: 7, Row: rows[7]},
	}

	if diff := cmp.Diff(want, pts); diff != "" {
		t.Errorf("BuildWithStats mismatch (-expected +got):\n%s", diff)
	}

	assert.Equal(t, Stats{Rows: 8, Points: 3, Missing: 2, Unparsable: 1, OutOfRange: 1, NullIsland: 1}, stats)
	assert.Equal(t, 5, stats.Dropped())
}

func TestReadPointRanges(t *testing.T) {
	mapping := columns.Mapping{Lat: "lat", Lng: "lng"}

	tests := []struct {
		lat, lng string
		expected DropReason
	}{
		{"90", "180", Kept},
		{"90 S", "180 W", Kept},
		{"0", "14.5", Kept},
		{"35.8", "0", Kept},
		{"90.0001", "14.5", DropOutOfRange},
		{"35.8", "180.5 W", DropOutOfRange},
		{"0", "0", DropNullIsland},
		{"0 S", "0,0", DropNullIsland},
	}

	for _, tc := range tests {
		t.Run(tc.lat+"/"+tc.lng, func(t *testing.T) {
			_, reason := readPoint(sheet.Row{"lat": tc.lat, "lng": tc.lng}, mapping)
			assert.Equal(t, tc.expected, reason)
		})
	}
}

func TestBuildCombinedColumn(t *testing.T) {
	rows := []sheet.Row{
		{"gps": "35.8,14.4"},
		{"gps": "35.8; 14.4; 12"},
		{"gps": "35.8"},
		{"gps": "   "},
		{"other": "35.8,14.4"},
		{"gps": "-34.9 -56.16"},
	}

	pts := Build(rows, columns.Mapping{Lat: "gps", Lng: "gps"})
	require.Len(t, pts, 3)

	assert.Equal(t, spatial.Point{Lat: 35.8, Lng: 14.4}, pts[0].Point)
	assert.Equal(t, 0, pts[0].Index)
	assert.Equal(t, spatial.Point{Lat: 35.8, Lng: 14.4}, pts[1].Point)
	assert.Equal(t, spatial.Point{Lat: -34.9, Lng: -56.16}, pts[2].Point)
	assert.Equal(t, 5, pts[2].Index)
}

func TestBuildIncompleteMapping(t *testing.T) {
	rows := []sheet.Row{{"lat": "35.8", "lng": "14.4"}}

	for _, m := range []columns.Mapping{{}, {Lat: "lat"}, {Lng: "lng"}} {
		pts, stats := BuildWithStats(rows, m)
		assert.NotNil(t, pts)
		assert.Empty(t, pts)
		assert.Equal(t, 1, stats.Dropped())
	}
}

func TestBuildStaleMapping(t *testing.T) {
	headers := []string{"lat", "lng"}
	rows := []sheet.Row{{"lat": "35.8", "lng": "14.4"}}

	stale := columns.Mapping{Lat: "Latitude", Lng: "lng"}
	assert.Empty(t, Build(rows, stale.Resolve(headers)))
	assert.Empty(t, Build(rows, stale))
}

func TestBuildInvariants(t *testing.T) {
	cells := []any{"0", "-0", "90", "-90.0001", "180", "180.5", "48,85", "14,4,2", "1e2", "S 200", "W 91", "NULL", 0, 90.0, -180.0, "", "  12 ", "0,0001"}

	var rows []sheet.Row

	for _, lat := range cells {
		for _, lng := range cells {
			rows = append(rows, sheet.Row{"a": lat, "b": lng})
		}
	}

	first := Build(rows, columns.Mapping{Lat: "a", Lng: "b"})
	require.NotEmpty(t, first)

	for _, p := range first {
		assert.True(t, p.Lat >= -90 && p.Lat <= 90, p)
		assert.True(t, p.Lng >= -180 && p.Lng <= 180, p)
		assert.False(t, p.Lat == 0 && p.Lng == 0, p)
	}

	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1].Index, first[i].Index, "row order is kept")
	}

	second := Build(rows, columns.Mapping{Lat: "a", Lng: "b"})
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Build is not idempotent (-first +second):\n%s", diff)
	}
}

func TestBuildKeepsDuplicates(t *testing.T) {
	rows := []sheet.Row{{"c": "1,2"}, {"c": "1,2"}}

	assert.Len(t, Build(rows, columns.Mapping{Lat: "c", Lng: "c"}), 2)
}
