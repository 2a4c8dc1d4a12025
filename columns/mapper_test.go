// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package columns

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jcodagnone/sheetmap/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedSuggester(m Mapping, err error) Suggester {
	return SuggesterFunc(func(context.Context, Request) (Mapping, error) {
		return m, err
	})
}

func TestIdentifyEmptyHeaders(t *testing.T) {
	called := false
	mapper := NewMapper(SuggesterFunc(func(context.Context, Request) (Mapping, error) {
		called = true

		return Mapping{Lat: "a", Lng: "b"}, nil
	}), DefaultCandidates())

	assert.Equal(t, Mapping{}, mapper.Identify(context.Background(), []string{}, []sheet.Row{}))
	assert.False(t, called)
}

func TestIdentifyWithoutOracle(t *testing.T) {
	mapper := NewMapper(nil, DefaultCandidates())

	got := mapper.Detect(context.Background(), []string{"Name", "Latitude", "Longitude"}, nil)
	assert.Equal(t, Detection{Mapping: Mapping{Lat: "Latitude", Lng: "Longitude"}, Source: SourceHeuristic}, got)
}

func TestIdentifyOracleAccepted(t *testing.T) {
	mapper := NewMapper(fixedSuggester(Mapping{Lat: "y", Lng: "x"}, nil), DefaultCandidates())

	got := mapper.Detect(context.Background(), []string{"x", "y", "Latitude"}, nil)
	assert.Equal(t, Detection{Mapping: Mapping{Lat: "y", Lng: "x"}, Source: SourceOracle}, got)
}

func TestIdentifyOracleCombinedColumn(t *testing.T) {
	mapper := NewMapper(fixedSuggester(Mapping{Lat: "gps", Lng: "gps"}, nil), DefaultCandidates())

	got := mapper.Identify(context.Background(), []string{"name", "gps"}, nil)
	assert.Equal(t, Mapping{Lat: "gps", Lng: "gps"}, got)
}

func TestIdentifyOracleFallsThrough(t *testing.T) {
	headers := []string{"Site", "Latitude N", "Latitude E"}
	heuristic := Mapping{Lat: "Latitude N", Lng: "Latitude E"}

	tests := []struct {
		name      string
		suggester Suggester
	}{
		{"unknown header", fixedSuggester(Mapping{Lat: "Latitude N", Lng: "Longitude"}, nil)},
		{"case differs", fixedSuggester(Mapping{Lat: "latitude n", Lng: "latitude e"}, nil)},
		{"empty side", fixedSuggester(Mapping{Lat: "Latitude N"}, nil)},
		{"error", fixedSuggester(Mapping{}, &SuggestionError{Type: ErrorTypeRateLimit, Message: "slow down"})},
		{"plain error", fixedSuggester(Mapping{Lat: "Site", Lng: "Site"}, errors.New("boom"))},
		{"panic", SuggesterFunc(func(context.Context, Request) (Mapping, error) {
			panic("nil map in oracle client")
		})},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mapper := NewMapper(tc.suggester, DefaultCandidates())

			got := mapper.Detect(context.Background(), headers, nil)
			assert.Equal(t, Detection{Mapping: heuristic, Source: SourceHeuristic}, got)
		})
	}
}

func TestFailureKind(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{&SuggestionError{Type: ErrorTypeTimeout, Message: "slow"}, "timed out"},
		{context.DeadlineExceeded, "timed out"},
		{&SuggestionError{Type: ErrorTypeRateLimit, Message: "slow down"}, "is rate limited"},
		{errors.New("429 Too Many Requests"), "is rate limited"},
		{&SuggestionError{Type: ErrorTypeQuotaExceeded, Message: "no more"}, "is out of quota"},
		{&SuggestionError{Type: ErrorTypeRejected, Message: "bad header"}, "failed (rejected)"},
		{&SuggestionError{Type: ErrorTypeUnknown, Message: "boom"}, "failed"},
		{errors.New("boom"), "failed"},
	}

	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.expected, FailureKind(tc.err))
		})
	}
}

func TestSuggestRecoversPanic(t *testing.T) {
	mapper := NewMapper(SuggesterFunc(func(context.Context, Request) (Mapping, error) {
		panic("nil map in oracle client")
	}), DefaultCandidates())

	_, err := mapper.suggest(context.Background(), []string{"a", "b"}, nil)
	require.Error(t, err)

	var sugErr *SuggestionError
	require.ErrorAs(t, err, &sugErr)
	assert.Equal(t, ErrorTypeUnknown, sugErr.Type)
	assert.Contains(t, err.Error(), "nil map in oracle client")
}

func TestIdentifyOracleTimeout(t *testing.T) {
	mapper := NewMapper(SuggesterFunc(func(ctx context.Context, _ Request) (Mapping, error) {
		<-ctx.Done()

		return Mapping{}, ctx.Err()
	}), DefaultCandidates())
	mapper.Timeout = 10 * time.Millisecond

	got := mapper.Identify(context.Background(), []string{"lat", "lng"}, nil)
	assert.Equal(t, Mapping{Lat: "lat", Lng: "lng"}, got)
}

func TestIdentifySampleIsBounded(t *testing.T) {
	var seen Request

	mapper := NewMapper(SuggesterFunc(func(_ context.Context, req Request) (Mapping, error) {
		seen = req

		return Mapping{Lat: "a", Lng: "b"}, nil
	}), DefaultCandidates())
	mapper.SampleSize = 50

	rows := make([]sheet.Row, 12)
	for i := range rows {
		rows[i] = sheet.Row{"a": i, "b": i}
	}

	mapper.Identify(context.Background(), []string{"a", "b"}, rows)
	require.Len(t, seen.Sample, MaxSampleSize)
	assert.Equal(t, []string{"a", "b"}, seen.Headers)
	assert.Equal(t, DefaultCandidates(), seen.Candidates)
}

func TestRequestPrompt(t *testing.T) {
	req := Request{
		Headers:    []string{"Site", "Coordinates"},
		Sample:     []sheet.Row{{"Site": "Valletta", "Coordinates": "35.89,14.51"}},
		Candidates: DefaultCandidates(),
	}

	prompt := req.Prompt()
	assert.Contains(t, prompt, `"Latitude N" / "Latitude E"`)
	assert.Contains(t, prompt, "lat, gps, y, x, long, coordinates")
	assert.Contains(t, prompt, `Headers: ["Site","Coordinates"]`)
	assert.Contains(t, prompt, `"Coordinates":"35.89,14.51"`)
	assert.Contains(t, prompt, "latColumn")
}
