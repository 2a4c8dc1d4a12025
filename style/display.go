// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package style

import "github.com/jcodagnone/sheetmap/points"

// Marker colors used outside of any category.
const (
	DefaultColor   = "#3388ff"
	HighlightColor = "#ff2d55"
)

// DisplayColor is the color a point is drawn with. The selected point is
// always highlighted; otherwise its category color applies, or DefaultColor
// when there is no rule or the value is unknown to it.
func DisplayColor(p points.Point, rule *Rule, selected bool) string {
	if selected {
		return HighlightColor
	}

	if c, ok := rule.ColorFor(p.Row); ok {
		return c
	}

	return DefaultColor
}
