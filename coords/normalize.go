// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

// Package coords turns raw spreadsheet cells into signed decimal degrees.
//
// The parser is intentionally forgiving: users type coordinates with
// direction letters, European decimal commas, degree signs and units, and the
// sheets we read have relied on this exact behavior for years.
package coords

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

var (
	// keeps digits, dots and minus signs
	strayCharsRegex = regexp.MustCompile(`[^0-9.\-]`)
	// longest leading decimal number, the way a lenient float parser reads it
	leadingNumberRegex = regexp.MustCompile(`^-?(?:\d+(?:\.\d*)?|\.\d+)`)
	// separators accepted between latitude and longitude in a single cell
	combinedSeparatorRegex = regexp.MustCompile(`[,;\s]+`)
)

// nullMarkers are cell contents that mean "no value" once case is ignored.
var nullMarkers = []string{"null", "undefined"}

// Normalize parses a single coordinate token. The boolean is false when the
// token carries no usable value; that is never an error.
//
// Sign rules are a compatibility constraint and must not be made smarter:
//   - an S or W anywhere in the token makes it negative (lexical containment,
//     so "South 12" and "12 SW" both qualify);
//   - any other direction letter (N, E) makes it positive, overriding a
//     literal minus, so "-12.5 N" is +12.5. This is containment too, so the
//     E of "-12.5 deg" and the N of "-14.5 Long" also count;
//   - without direction letters a leading minus makes it negative.
func Normalize(raw string) (float64, bool) {
	token := strings.TrimSpace(raw)
	if token == "" || isNullMarker(token) {
		return 0, false
	}

	negative := isNegative(token)

	if commas := strings.Count(token, ","); commas > 0 && !strings.Contains(token, ".") {
		if commas > 1 {
			// "14,4,2" is a list or a thousands grouping, not a coordinate
			return 0, false
		}

		token = strings.Replace(token, ",", ".", 1)
	}

	cleaned := strayCharsRegex.ReplaceAllString(token, "")

	v, ok := parseLeadingFloat(cleaned)
	if !ok {
		return 0, false
	}

	if negative {
		return -math.Abs(v), true
	}

	return math.Abs(v), true
}

// NormalizeValue is Normalize for arbitrary cell values. Numbers are taken as
// they are, only rejecting NaN and infinities; everything else goes through
// its string form.
func NormalizeValue(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return finite(cast.ToFloat64(n))
	case string:
		return Normalize(n)
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return 0, false
	}

	return Normalize(s)
}

// SplitCombined splits a cell holding both coordinates, such as
// "35.8, 14.4" or "35.8;14.4", into its non-empty parts.
func SplitCombined(cell string) []string {
	var parts []string

	for _, p := range combinedSeparatorRegex.Split(strings.TrimSpace(cell), -1) {
		if p != "" {
			parts = append(parts, p)
		}
	}

	return parts
}

// NormalizePair parses a combined cell: the first part is the latitude and
// the second the longitude. Both must be present.
func NormalizePair(cell string) (lat, lng float64, ok bool) {
	parts := SplitCombined(cell)
	if len(parts) < 2 {
		return 0, 0, false
	}

	lat, latOk := Normalize(parts[0])
	lng, lngOk := Normalize(parts[1])

	return lat, lng, latOk && lngOk
}

func isNullMarker(token string) bool {
	for _, m := range nullMarkers {
		if strings.EqualFold(token, m) {
			return true
		}
	}

	return false
}

func isNegative(token string) bool {
	upper := strings.ToUpper(token)
	if strings.ContainsAny(upper, "SW") {
		return true
	}

	if strings.ContainsAny(upper, "NE") {
		return false
	}

	return strings.HasPrefix(token, "-")
}

func parseLeadingFloat(s string) (float64, bool) {
	m := leadingNumberRegex.FindString(s)
	if m == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(strings.TrimSuffix(m, "."), 64)
	if err != nil {
		return 0, false
	}

	return finite(v)
}

func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}
