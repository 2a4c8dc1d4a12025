// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package style

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// AutoPalette asks for a generated palette with one color per distinct value.
const AutoPalette = "auto"

// IsAuto reports whether palette is the AutoPalette request.
func IsAuto(palette []string) bool {
	return len(palette) == 1 && palette[0] == AutoPalette
}

// GeneratePalette returns n colors with evenly spaced hues, for columns with
// more categories than DefaultPalette has colors.
func GeneratePalette(n int) []string {
	if n <= 0 {
		return nil
	}

	out := make([]string, n)
	for i := range out {
		out[i] = colorful.Hsv(360*float64(i)/float64(n), 0.65, 0.85).Hex()
	}

	return out
}

// ParsePalette validates user supplied colors and normalizes them to
// lowercase "#rrggbb". Entries may omit the leading '#'. A lone "auto" is
// kept as AutoPalette.
func ParsePalette(specs []string) ([]string, error) {
	if len(specs) == 1 && strings.EqualFold(strings.TrimSpace(specs[0]), AutoPalette) {
		return []string{AutoPalette}, nil
	}

	out := make([]string, 0, len(specs))

	for _, s := range specs {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}

		if !strings.HasPrefix(s, "#") {
			s = "#" + s
		}

		c, err := colorful.Hex(s)
		if err != nil {
			return nil, fmt.Errorf("invalid palette color %q: %w", s, err)
		}

		out = append(out, c.Hex())
	}

	return out, nil
}
