// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package style

import (
	"testing"

	"github.com/jcodagnone/sheetmap/points"
	"github.com/jcodagnone/sheetmap/sheet"
	"github.com/jcodagnone/sheetmap/spatial"
	"github.com/stretchr/testify/assert"
)

func samplePoints() []points.Point {
	return []points.Point{
		{Point: spatial.Point{Lat: 1, Lng: 1}, Index: 0, Row: sheet.Row{"kind": "bar"}},
		{Point: spatial.Point{Lat: 2, Lng: 2}, Index: 1, Row: sheet.Row{"kind": "museum"}},
		{Point: spatial.Point{Lat: 3, Lng: 3}, Index: 2, Row: sheet.Row{}},
		{Point: spatial.Point{Lat: 4, Lng: 4}, Index: 3, Row: sheet.Row{"kind": "bar"}},
	}
}

func indexes(pts []points.Point) []int {
	out := make([]int, len(pts))
	for i, p := range pts {
		out[i] = p.Index
	}

	return out
}

func TestSelectionApply(t *testing.T) {
	pts := samplePoints()

	assert.Equal(t, []int{0, 3}, indexes(Selection{Column: "kind", Values: []string{"bar"}}.Apply(pts)))
	assert.Equal(t, []int{1, 2}, indexes(Selection{Column: "kind", Values: []string{"museum", ""}}.Apply(pts)))
	assert.Empty(t, Selection{Column: "kind", Values: []string{"zoo"}}.Apply(pts))
}

func TestSelectionInactive(t *testing.T) {
	pts := samplePoints()

	assert.Equal(t, pts, Selection{}.Apply(pts))
	assert.Equal(t, pts, Selection{Column: "kind"}.Apply(pts))
	assert.Equal(t, pts, Selection{Values: []string{"bar"}}.Apply(pts))
}

func TestSelectionLeavesPointsUntouched(t *testing.T) {
	pts := samplePoints()

	_ = Selection{Column: "kind", Values: []string{"museum"}}.Apply(pts)
	assert.Equal(t, samplePoints(), pts)
}

func TestDisplayColor(t *testing.T) {
	pts := samplePoints()
	rule := Apply([]sheet.Row{{"kind": "bar"}, {"kind": "museum"}}, "kind", []string{"red", "green"})

	assert.Equal(t, "red", DisplayColor(pts[0], rule, false))
	assert.Equal(t, HighlightColor, DisplayColor(pts[0], rule, true))
	assert.Equal(t, "green", DisplayColor(pts[1], rule, false))
	assert.Equal(t, DefaultColor, DisplayColor(pts[2], rule, false), "value unknown to the rule")
	assert.Equal(t, DefaultColor, DisplayColor(pts[1], nil, false))
	assert.Equal(t, HighlightColor, DisplayColor(pts[1], nil, true))
}
