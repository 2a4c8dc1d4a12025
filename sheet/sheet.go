// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

// Package sheet models tabular data exported from a spreadsheet and knows how
// to read it from files and URLs.
package sheet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// ErrEmptyDataset is returned when a source yields no headers or no rows.
var ErrEmptyDataset = errors.New("dataset is empty")

// Row is one record of a dataset keyed by header name. Values are strings or
// numbers (float64, int) depending on the source.
type Row map[string]any

// String returns the stringified cell for column, and whether the row has it.
func (r Row) String(column string) (string, bool) {
	v, ok := r[column]
	if !ok || v == nil {
		return "", false
	}

	return cast.ToString(v), true
}

// Float returns the cell for column as a number, when it is one or parses as one.
func (r Row) Float(column string) (float64, bool) {
	v, ok := r[column]
	if !ok || v == nil {
		return 0, false
	}

	if s, isString := v.(string); isString {
		v = strings.TrimSpace(s)
		if v == "" {
			return 0, false
		}
	}

	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}

	return f, true
}

// Dataset is the unit the rest of the system works on: a fixed header schema
// and the rows that follow it. Header names are unique.
type Dataset struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// NewDataset builds a dataset from a header record and raw string records.
// Blank and duplicated header names are made unique, short records leave the
// trailing columns out of the row, and blank records are dropped.
func NewDataset(header []string, records [][]string) *Dataset {
	headers := UniqueHeaders(header)
	rows := make([]Row, 0, len(records))

	for _, record := range records {
		if isBlank(record) {
			continue
		}

		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = cleanCell(record[i])
			}
		}

		rows = append(rows, row)
	}

	return &Dataset{Headers: headers, Rows: rows}
}

// Validate checks the dataset is usable: at least one header, one row, and
// unique header names.
func (d *Dataset) Validate() error {
	if d == nil || len(d.Headers) == 0 || len(d.Rows) == 0 {
		return ErrEmptyDataset
	}

	seen := make(map[string]struct{}, len(d.Headers))
	for _, h := range d.Headers {
		if _, dup := seen[h]; dup {
			return fmt.Errorf("duplicated header %q", h)
		}

		seen[h] = struct{}{}
	}

	return nil
}

// HasHeader reports whether name is one of the dataset headers.
func (d *Dataset) HasHeader(name string) bool {
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}

	return false
}

// Sample returns up to n leading rows.
func (d *Dataset) Sample(n int) []Row {
	if n > len(d.Rows) {
		n = len(d.Rows)
	}

	if n < 0 {
		n = 0
	}

	return d.Rows[:n]
}

// UniqueHeaders cleans header names, naming blank ones after their position
// and suffixing repeated ones with their occurrence number.
func UniqueHeaders(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))

	for i, h := range header {
		h = cleanCell(h)
		if h == "" {
			h = fmt.Sprintf("Column %d", i+1)
		}

		name := h
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s (%d)", h, n)
		}

		used[name] = true
		out[i] = name
	}

	return out
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if cleanCell(cell) != "" {
			return false
		}
	}

	return true
}

func cleanCell(v string) string {
	v = strings.TrimPrefix(v, "\ufeff")

	return strings.TrimSpace(v)
}
