// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package columns

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCandidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.json")
	content := `{
  "lat": {"sentinels": ["Latitud S"], "names": []},
  "synonyms": ["latitud", "longitud"]
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	got, err := LoadCandidates(path)
	require.NoError(t, err)

	defaults := DefaultCandidates()
	expected := Candidates{
		Lat: AxisCandidates{
			Sentinels: []string{"Latitud S"},
			Contains:  defaults.Lat.Contains,
			Names:     []string{},
		},
		Lng:      defaults.Lng,
		Synonyms: []string{"latitud", "longitud"},
	}

	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("LoadCandidates mismatch (-expected +got):\n%s", diff)
	}
}

func TestLoadCandidatesErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCandidates(filepath.Join(dir, "missing.json"))
	require.Error(t, err)

	path := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err = LoadCandidates(path)
	require.Error(t, err)
}

func TestDefaultCandidatesAreCopies(t *testing.T) {
	c := DefaultCandidates()
	c.Lat.Sentinels[0] = "changed"

	assert.Equal(t, "Latitude N", DefaultCandidates().Lat.Sentinels[0])

	d := c.WithDefaults()
	d.Lat.Sentinels[0] = "again"
	assert.Equal(t, "changed", c.Lat.Sentinels[0])
}
