// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package columns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMappingResolve(t *testing.T) {
	headers := []string{"Site", "Lat", "Lng"}

	assert.Equal(t, Mapping{Lat: "Lat", Lng: "Lng"}, Mapping{Lat: "Lat", Lng: "Lng"}.Resolve(headers))
	assert.Equal(t, Mapping{Lat: "Lat"}, Mapping{Lat: "Lat", Lng: "Longitude"}.Resolve(headers))
	assert.Equal(t, Mapping{}, Mapping{Lat: "lat", Lng: "lng"}.Resolve(headers), "matching is literal")
	assert.Equal(t, Mapping{}, Mapping{Lat: "Lat", Lng: "Lng"}.Resolve(nil))
}

func TestMappingPredicates(t *testing.T) {
	assert.True(t, Mapping{}.IsEmpty())
	assert.True(t, Mapping{Lat: "a"}.IsEmpty())
	assert.False(t, Mapping{Lat: "a", Lng: "b"}.IsEmpty())

	assert.True(t, Mapping{Lat: "gps", Lng: "gps"}.IsCombined())
	assert.False(t, Mapping{}.IsCombined())
	assert.False(t, Mapping{Lat: "a", Lng: "b"}.IsCombined())

	assert.True(t, Mapping{Lat: "a", Lng: "b"}.Within([]string{"b", "a"}))
	assert.False(t, Mapping{Lat: "a", Lng: "c"}.Within([]string{"b", "a"}))
	assert.False(t, Mapping{}.Within([]string{""}))
}

func TestMappingSwap(t *testing.T) {
	m := Mapping{Lat: "x", Lng: "y"}

	assert.Equal(t, Mapping{Lat: "y", Lng: "x"}, m.Swap())
	assert.Equal(t, m, m.Swap().Swap())
}
