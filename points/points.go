// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

// Package points builds validated geographic points out of spreadsheet rows.
package points

import (
	"strings"

	"github.com/jcodagnone/sheetmap/columns"
	"github.com/jcodagnone/sheetmap/coords"
	"github.com/jcodagnone/sheetmap/sheet"
	"github.com/jcodagnone/sheetmap/spatial"
)

// Point is a plottable location and the row it was read from. Points are
// rebuilt whenever the rows or the mapping change, never edited.
type Point struct {
	spatial.Point
	// Index is the position of the source row in the dataset.
	Index int       `json:"index"`
	Row   sheet.Row `json:"row"`
}

// DropReason says why a row produced no point.
type DropReason int

const (
	// Kept the row produced a point.
	Kept DropReason = iota
	// DropMissing a coordinate cell is absent or blank.
	DropMissing
	// DropUnparsable a coordinate cell holds no number.
	DropUnparsable
	// DropOutOfRange latitude or longitude is outside its range.
	DropOutOfRange
	// DropNullIsland the row is the (0,0) placeholder.
	DropNullIsland
)

// Stats counts what happened to every row of a build.
type Stats struct {
	Rows       int `json:"rows"`
	Points     int `json:"points"`
	Missing    int `json:"missing"`
	Unparsable int `json:"unparsable"`
	OutOfRange int `json:"out_of_range"`
	NullIsland int `json:"null_island"`
}

// Dropped is the number of rows that produced no point.
func (s Stats) Dropped() int {
	return s.Rows - s.Points
}

func (s *Stats) add(reason DropReason) {
	s.Rows++

	switch reason {
	case Kept:
		s.Points++
	case DropMissing:
		s.Missing++
	case DropUnparsable:
		s.Unparsable++
	case DropOutOfRange:
		s.OutOfRange++
	case DropNullIsland:
		s.NullIsland++
	}
}

// Build returns one point per row holding a valid coordinate pair, in row
// order. Rows that fail are skipped silently, and an incomplete mapping
// yields no points.
func Build(rows []sheet.Row, mapping columns.Mapping) []Point {
	pts, _ := BuildWithStats(rows, mapping)

	return pts
}

// BuildWithStats is Build also counting why rows were dropped.
func BuildWithStats(rows []sheet.Row, mapping columns.Mapping) ([]Point, Stats) {
	var stats Stats

	if mapping.IsEmpty() {
		stats.Rows = len(rows)
		stats.Missing = len(rows)

		return []Point{}, stats
	}

	pts := make([]Point, 0, len(rows))

	for i, row := range rows {
		p, reason := readPoint(row, mapping)
		stats.add(reason)

		if reason == Kept {
			pts = append(pts, Point{Point: p, Index: i, Row: row})
		}
	}

	return pts, stats
}

func readPoint(row sheet.Row, mapping columns.Mapping) (spatial.Point, DropReason) {
	var (
		p      spatial.Point
		reason DropReason
	)

	if mapping.IsCombined() {
		p, reason = readCombined(row, mapping.Lat)
	} else {
		p, reason = readSeparate(row, mapping)
	}

	if reason != Kept {
		return p, reason
	}

	switch {
	case p.Plottable():
		return p, Kept
	case !p.InRange():
		return p, DropOutOfRange
	default:
		return p, DropNullIsland
	}
}

func readCombined(row sheet.Row, column string) (spatial.Point, DropReason) {
	cell, ok := row.String(column)
	if !ok || strings.TrimSpace(cell) == "" {
		return spatial.Point{}, DropMissing
	}

	lat, lng, ok := coords.NormalizePair(cell)
	if !ok {
		return spatial.Point{}, DropUnparsable
	}

	return spatial.Point{Lat: lat, Lng: lng}, Kept
}

func readSeparate(row sheet.Row, mapping columns.Mapping) (spatial.Point, DropReason) {
	latCell, latOk := row[mapping.Lat]
	lngCell, lngOk := row[mapping.Lng]

	if !latOk || !lngOk || isBlank(latCell) || isBlank(lngCell) {
		return spatial.Point{}, DropMissing
	}

	lat, latOk := coords.NormalizeValue(latCell)
	lng, lngOk := coords.NormalizeValue(lngCell)

	if !latOk || !lngOk {
		return spatial.Point{}, DropUnparsable
	}

	return spatial.Point{Lat: lat, Lng: lng}, Kept
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}

	s, ok := v.(string)

	return ok && strings.TrimSpace(s) == ""
}
