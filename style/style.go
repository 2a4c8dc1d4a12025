// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

// Package style colors points by the value of a categorical column and
// narrows the displayed points to selected categories.
package style

import (
	"github.com/jcodagnone/sheetmap/sheet"
)

// DefaultPalette is used when no palette is given.
var DefaultPalette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

// Rule maps every value seen in a column to a color.
type Rule struct {
	Column string            `json:"column"`
	Colors map[string]string `json:"colors"`
	// Values are the distinct values in order of first appearance.
	Values []string `json:"values"`
}

// Apply builds the rule for column from scratch. Values get palette colors
// in order of first appearance, wrapping around when there are more values
// than colors. AutoPalette gives every value its own generated color. An
// empty column means no styling and returns nil.
func Apply(rows []sheet.Row, column string, palette []string) *Rule {
	if column == "" {
		return nil
	}

	values := DistinctValues(rows, column)

	switch {
	case IsAuto(palette):
		palette = GeneratePalette(len(values))
	case len(palette) == 0:
		palette = DefaultPalette
	}

	colors := make(map[string]string, len(values))

	for i, v := range values {
		colors[v] = palette[i%len(palette)]
	}

	return &Rule{Column: column, Colors: colors, Values: values}
}

// ColorFor returns the color of the category of row.
func (r *Rule) ColorFor(row sheet.Row) (string, bool) {
	if r == nil {
		return "", false
	}

	c, ok := r.Colors[CellValue(row, r.Column)]

	return c, ok
}

// DistinctValues lists the values of column in order of first appearance.
// Rows without the column contribute the empty string.
func DistinctValues(rows []sheet.Row, column string) []string {
	seen := make(map[string]bool)
	values := []string{}

	for _, row := range rows {
		v := CellValue(row, column)
		if seen[v] {
			continue
		}

		seen[v] = true
		values = append(values, v)
	}

	return values
}

// CellValue is the category of row in column: its stringified value, or
// the empty string when missing.
func CellValue(row sheet.Row, column string) string {
	v, _ := row.String(column)

	return v
}
