// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package columns

import "github.com/jcodagnone/sheetmap/utils/textutils"

// Heuristic picks the coordinate columns by name alone. Per axis, the first
// rule that matches wins: sentinel name, contained fragment, exact short
// name, then position (latitude takes the first header, longitude the second
// or, failing that, the first). Non-empty headers always yield a complete
// mapping; no headers yield the zero Mapping.
func Heuristic(headers []string, c Candidates) Mapping {
	if len(headers) == 0 {
		return Mapping{}
	}

	lat := matchAxis(headers, c.Lat)
	if lat == "" {
		lat = headers[0]
	}

	lng := matchAxis(headers, c.Lng)
	if lng == "" {
		lng = headers[0]
		if len(headers) > 1 {
			lng = headers[1]
		}
	}

	return Mapping{Lat: lat, Lng: lng}
}

func matchAxis(headers []string, axis AxisCandidates) string {
	if h := findHeader(headers, axis.Sentinels, textutils.EqualFolded); h != "" {
		return h
	}

	if h := findHeader(headers, axis.Contains, textutils.ContainsFolded); h != "" {
		return h
	}

	return findHeader(headers, axis.Names, textutils.EqualFolded)
}

// findHeader returns the first header, in header order, that matches any of
// the candidates.
func findHeader(headers, candidates []string, match func(header, candidate string) bool) string {
	for _, h := range headers {
		for _, c := range candidates {
			if match(h, c) {
				return h
			}
		}
	}

	return ""
}
