// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package columns

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// AxisCandidates lists, by precedence, how a header is recognized for one
// coordinate axis. Matching ignores case and accents.
type AxisCandidates struct {
	// Sentinels are exact header names used by known sheet templates.
	Sentinels []string `json:"sentinels"`
	// Contains are fragments a header may contain, like "latitude".
	Contains []string `json:"contains"`
	// Names are exact short names, like "lat".
	Names []string `json:"names"`
}

// Candidates configures header detection. Sheets in the wild disagree on
// naming, so every list here is deployment configuration.
type Candidates struct {
	Lat AxisCandidates `json:"lat"`
	Lng AxisCandidates `json:"lng"`
	// Synonyms are hints handed to the oracle.
	Synonyms []string `json:"synonyms"`
}

// DefaultCandidates returns the built-in detection lists.
func DefaultCandidates() Candidates {
	return Candidates{
		Lat: AxisCandidates{
			Sentinels: []string{"Latitude N"},
			Contains:  []string{"latitude"},
			Names:     []string{"lat"},
		},
		Lng: AxisCandidates{
			Sentinels: []string{"Latitude E"},
			Contains:  []string{"longitude", "long", "lng"},
		},
		Synonyms: []string{"lat", "gps", "y", "x", "long", "coordinates"},
	}
}

// LoadCandidates reads candidates from a JSON file. Lists left out of the
// file keep their defaults, so a file may override a single one.
func LoadCandidates(path string) (Candidates, error) {
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 - path is provided by the user
	if err != nil {
		return Candidates{}, fmt.Errorf("reading candidates: %w", err)
	}

	var c Candidates
	if err := json.Unmarshal(data, &c); err != nil {
		return Candidates{}, fmt.Errorf("parsing candidates %s: %w", filepath.Base(path), err)
	}

	return c.WithDefaults(), nil
}

// WithDefaults fills nil lists from DefaultCandidates. An explicit empty list
// is kept, which disables that rule.
func (c Candidates) WithDefaults() Candidates {
	defaults := DefaultCandidates()

	return Candidates{
		Lat: AxisCandidates{
			Sentinels: pickStrings(c.Lat.Sentinels, defaults.Lat.Sentinels),
			Contains:  pickStrings(c.Lat.Contains, defaults.Lat.Contains),
			Names:     pickStrings(c.Lat.Names, defaults.Lat.Names),
		},
		Lng: AxisCandidates{
			Sentinels: pickStrings(c.Lng.Sentinels, defaults.Lng.Sentinels),
			Contains:  pickStrings(c.Lng.Contains, defaults.Lng.Contains),
			Names:     pickStrings(c.Lng.Names, defaults.Lng.Names),
		},
		Synonyms: pickStrings(c.Synonyms, defaults.Synonyms),
	}
}

// sentinels returns every sentinel name, latitude first.
func (c Candidates) sentinels() []string {
	out := make([]string, 0, len(c.Lat.Sentinels)+len(c.Lng.Sentinels))
	out = append(out, c.Lat.Sentinels...)

	return append(out, c.Lng.Sentinels...)
}

func pickStrings(custom, fallback []string) []string {
	if custom == nil {
		return cloneStrings(fallback)
	}

	return cloneStrings(custom)
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}

	out := make([]string, len(values))
	copy(out, values)

	return out
}
