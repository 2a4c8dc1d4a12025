// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package sheet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderFetchCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		_, _ = w.Write([]byte("lat,lng\n35.9,14.5\n"))
	}))
	defer srv.Close()

	ds, err := NewLoader(srv.Client()).Load(context.Background(), srv.URL+"/export")
	require.NoError(t, err)
	assert.Equal(t, []string{"lat", "lng"}, ds.Headers)
	assert.Equal(t, []Row{{"lat": "35.9", "lng": "14.5"}}, ds.Rows)
}

func TestLoaderFetchLatin1(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv; charset=iso-8859-1")
		// "Latitúd" in ISO-8859-1
		_, _ = w.Write([]byte("Latit\xfad,Long\n1,2\n"))
	}))
	defer srv.Close()

	ds, err := NewLoader(srv.Client()).Load(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []string{"Latitúd", "Long"}, ds.Headers)
}

func TestLoaderFetchFormatFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("a\tb\n1\t2\n"))
	}))
	defer srv.Close()

	ds, err := NewLoader(srv.Client()).Load(context.Background(), srv.URL+"/pub?output=tsv")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ds.Headers)
}

func TestLoaderTransportFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			w.Header().Set("Content-Type", "text/csv")

			return
		}

		http.NotFound(w, r)
	}))
	defer srv.Close()

	loader := NewLoader(srv.Client())

	_, err := loader.Load(context.Background(), srv.URL+"/missing.csv")
	require.Error(t, err)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.True(t, IsTransportError(err))

	_, err = loader.Load(context.Background(), srv.URL+"/empty")
	require.ErrorIs(t, err, ErrEmptyDataset)
	assert.False(t, IsTransportError(err))

	_, err = loader.Load(context.Background(), "")
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffname,coords\nA,\"35.8,14.4\"\n"), 0o600))

	ds, err := NewLoader(nil).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "coords"}, ds.Headers)
	assert.Equal(t, "35.8,14.4", ds.Rows[0]["coords"])

	_, err = LoadFile(filepath.Join(dir, "nope.csv"))
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
}

func TestGoogleSheetsExportURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			"https://docs.google.com/spreadsheets/d/1AbC_d-9/edit#gid=123",
			"https://docs.google.com/spreadsheets/d/1AbC_d-9/export?format=csv&gid=123",
		},
		{
			"https://docs.google.com/spreadsheets/d/1AbC/edit?usp=sharing",
			"https://docs.google.com/spreadsheets/d/1AbC/export?format=csv",
		},
		{
			"https://docs.google.com/spreadsheets/d/1AbC/view?gid=7",
			"https://docs.google.com/spreadsheets/d/1AbC/export?format=csv&gid=7",
		},
		{
			"https://docs.google.com/spreadsheets/d/e/2PACX-1/pub?output=csv",
			"https://docs.google.com/spreadsheets/d/e/2PACX-1/pub?output=csv",
		},
		{
			"https://example.com/spreadsheets/d/1AbC/edit",
			"https://example.com/spreadsheets/d/1AbC/edit",
		},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, GoogleSheetsExportURL(tc.input))
		})
	}
}
