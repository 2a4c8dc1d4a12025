// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package style

import (
	"github.com/jcodagnone/sheetmap/points"
	"github.com/jcodagnone/sheetmap/sheet"
)

// Selection is the set of categories of Column currently shown. It narrows a
// view of the points and never changes the points themselves.
type Selection struct {
	Column string   `json:"column"`
	Values []string `json:"values"`
}

// IsActive reports whether the selection filters anything.
func (s Selection) IsActive() bool {
	return s.Column != "" && len(s.Values) > 0
}

// Matches reports whether row belongs to a selected category. An inactive
// selection matches every row.
func (s Selection) Matches(row sheet.Row) bool {
	if !s.IsActive() {
		return true
	}

	v := CellValue(row, s.Column)
	for _, want := range s.Values {
		if v == want {
			return true
		}
	}

	return false
}

// Apply returns the points whose row matches, in their original order.
func (s Selection) Apply(pts []points.Point) []points.Point {
	if !s.IsActive() {
		return pts
	}

	out := make([]points.Point, 0, len(pts))

	for _, p := range pts {
		if s.Matches(p.Row) {
			out = append(out, p)
		}
	}

	return out
}
