// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline composes column detection, point building, filtering and
// styling. Every run recomputes everything from the raw rows.
package pipeline

import (
	"context"
	"log"

	"github.com/jcodagnone/sheetmap/columns"
	"github.com/jcodagnone/sheetmap/points"
	"github.com/jcodagnone/sheetmap/sheet"
	"github.com/jcodagnone/sheetmap/style"
)

// NoSelection marks that no point is selected.
const NoSelection = -1

// Options are the user choices applied on top of a dataset.
type Options struct {
	// Mapping, when any side is set, overrides column detection.
	Mapping     columns.Mapping
	StyleColumn string
	Palette     []string
	Filter      style.Selection
	// Selected is the row index of the highlighted point, or NoSelection.
	Selected int
}

// Result is everything a view needs to draw a dataset.
type Result struct {
	Detection columns.Detection
	// Points are all the points built from the dataset.
	Points []points.Point
	Stats  points.Stats
	// Visible are the points that pass the filter, and Colors their display
	// colors, index by index.
	Visible []points.Point
	Colors  []string
	Rule    *style.Rule
	Bounds  *points.Bounds
}

// Pipeline runs datasets through the mapper, builder, filter and styler.
type Pipeline struct {
	Mapper *columns.Mapper
}

// New creates a Pipeline. mapper may be nil to use the heuristic with the
// default candidates.
func New(mapper *columns.Mapper) *Pipeline {
	if mapper == nil {
		mapper = columns.NewMapper(nil, columns.DefaultCandidates())
	}

	return &Pipeline{Mapper: mapper}
}

// Run processes ds with opts.
func (p *Pipeline) Run(ctx context.Context, ds *sheet.Dataset, opts Options) *Result {
	res := &Result{}

	if ds == nil {
		res.Points, res.Visible, res.Colors = []points.Point{}, []points.Point{}, []string{}

		return res
	}

	res.Detection = p.Detect(ctx, ds, opts.Mapping)
	res.Points, res.Stats = points.BuildWithStats(ds.Rows, res.Detection.Mapping)

	if res.Stats.Dropped() > 0 {
		log.Printf("🧹 %d of %d rows without a usable coordinate (missing=%d unparsable=%d out_of_range=%d null_island=%d)",
			res.Stats.Dropped(), res.Stats.Rows, res.Stats.Missing, res.Stats.Unparsable,
			res.Stats.OutOfRange, res.Stats.NullIsland)
	}

	res.Rule = style.Apply(ds.Rows, opts.StyleColumn, opts.Palette)
	res.Visible = opts.Filter.Apply(res.Points)

	res.Colors = make([]string, len(res.Visible))
	for i, pt := range res.Visible {
		res.Colors[i] = style.DisplayColor(pt, res.Rule, opts.Selected != NoSelection && pt.Index == opts.Selected)
	}

	if b, ok := points.BoundsOf(res.Visible); ok {
		res.Bounds = &b
	}

	return res
}

// Detect returns the mapping to use: the user's, restricted to the current
// headers, or the mapper's guess.
func (p *Pipeline) Detect(ctx context.Context, ds *sheet.Dataset, manual columns.Mapping) columns.Detection {
	if manual.Lat != "" || manual.Lng != "" {
		return columns.Detection{Mapping: manual.Resolve(ds.Headers), Source: columns.SourceManual}
	}

	return p.Mapper.Detect(ctx, ds.Headers, ds.Sample(columns.MaxSampleSize))
}
