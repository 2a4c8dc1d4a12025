// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package columns

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jcodagnone/sheetmap/sheet"
)

// MaxSampleSize is the most rows ever shown to the oracle.
const MaxSampleSize = 5

// DefaultOracleTimeout bounds the single oracle attempt.
const DefaultOracleTimeout = 15 * time.Second

// Request is what the oracle gets to look at.
type Request struct {
	Headers    []string
	Sample     []sheet.Row
	Candidates Candidates
}

// Prompt renders the natural-language instruction for the oracle.
func (r Request) Prompt() string {
	headers, _ := json.Marshal(r.Headers)
	sample, _ := json.Marshal(r.Sample)

	quoted := make([]string, 0, len(r.Candidates.sentinels()))
	for _, s := range r.Candidates.sentinels() {
		quoted = append(quoted, fmt.Sprintf("%q", s))
	}

	var sb strings.Builder

	sb.WriteString("A spreadsheet was exported with the headers and sample rows below.\n")
	sb.WriteString("Identify the header holding the latitude and the header holding the longitude.\n")

	if len(quoted) > 0 {
		fmt.Fprintf(&sb, "Prefer exact header names such as %s.\n", strings.Join(quoted, " / "))
	}

	if len(r.Candidates.Synonyms) > 0 {
		fmt.Fprintf(&sb, "Otherwise consider synonyms like: %s.\n", strings.Join(r.Candidates.Synonyms, ", "))
	}

	sb.WriteString("If one column holds both coordinates, return it for both.\n")
	sb.WriteString(`Answer only with JSON {"latColumn": "...", "lngColumn": "..."} using the header names verbatim.` + "\n")
	fmt.Fprintf(&sb, "Headers: %s\n", headers)
	fmt.Fprintf(&sb, "Sample rows: %s\n", sample)

	return sb.String()
}

// Suggester is an external oracle able to guess the coordinate columns. Its
// answers are untrusted.
type Suggester interface {
	Suggest(ctx context.Context, req Request) (Mapping, error)
}

// SuggesterFunc adapts a function to the Suggester interface.
type SuggesterFunc func(ctx context.Context, req Request) (Mapping, error)

// Suggest implements Suggester.
func (f SuggesterFunc) Suggest(ctx context.Context, req Request) (Mapping, error) {
	return f(ctx, req)
}

// Source tells where a mapping came from.
type Source string

const (
	// SourceOracle the oracle answer was accepted.
	SourceOracle Source = "oracle"
	// SourceHeuristic name matching decided.
	SourceHeuristic Source = "heuristic"
	// SourceManual the user chose the columns.
	SourceManual Source = "manual"
)

// Detection is a mapping together with its origin.
type Detection struct {
	Mapping Mapping `json:"mapping"`
	Source  Source  `json:"source"`
}

// Mapper identifies coordinate columns: the oracle, when configured, is asked
// once; anything short of a valid answer falls through to Heuristic.
type Mapper struct {
	Suggester  Suggester
	Candidates Candidates
	SampleSize int
	Timeout    time.Duration
}

// NewMapper creates a Mapper with the default sample size and timeout.
// suggester may be nil.
func NewMapper(suggester Suggester, candidates Candidates) *Mapper {
	return &Mapper{
		Suggester:  suggester,
		Candidates: candidates,
		SampleSize: MaxSampleSize,
		Timeout:    DefaultOracleTimeout,
	}
}

// Identify returns the columns to read coordinates from.
func (m *Mapper) Identify(ctx context.Context, headers []string, sample []sheet.Row) Mapping {
	return m.Detect(ctx, headers, sample).Mapping
}

// Detect is Identify also reporting which stage decided.
func (m *Mapper) Detect(ctx context.Context, headers []string, sample []sheet.Row) Detection {
	if len(headers) == 0 {
		return Detection{Source: SourceHeuristic}
	}

	if m.Suggester != nil {
		mapping, err := m.suggest(ctx, headers, sample)
		if err == nil {
			return Detection{Mapping: mapping, Source: SourceOracle}
		}

		log.Printf("⚠️ Column oracle %s, using heuristic: %v", FailureKind(err), err)
	}

	return Detection{Mapping: Heuristic(headers, m.Candidates), Source: SourceHeuristic}
}

// FailureKind describes an oracle failure for logs.
func FailureKind(err error) string {
	switch {
	case IsTimeoutError(err):
		return "timed out"
	case IsRateLimitError(err):
		return "is rate limited"
	case IsQuotaExceededError(err):
		return "is out of quota"
	}

	if t, ok := errorTypeOf(err); ok && t != ErrorTypeUnknown {
		return "failed (" + t.String() + ")"
	}

	return "failed"
}

func (m *Mapper) suggest(ctx context.Context, headers []string, sample []sheet.Row) (mapping Mapping, err error) {
	defer func() {
		if r := recover(); r != nil {
			mapping = Mapping{}
			err = &SuggestionError{
				Type:    ErrorTypeUnknown,
				Message: fmt.Sprintf("oracle panicked: %v", r),
			}
		}
	}()

	size := m.SampleSize
	if size <= 0 || size > MaxSampleSize {
		size = MaxSampleSize
	}

	if len(sample) > size {
		sample = sample[:size]
	}

	timeout := m.Timeout
	if timeout <= 0 {
		timeout = DefaultOracleTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	mapping, err = m.Suggester.Suggest(ctx, Request{
		Headers:    headers,
		Sample:     sample,
		Candidates: m.Candidates,
	})
	if err != nil {
		return Mapping{}, err
	}

	if !mapping.Within(headers) {
		return Mapping{}, &SuggestionError{
			Type:    ErrorTypeRejected,
			Message: fmt.Sprintf("oracle answered lat=%q lng=%q, not among the headers", mapping.Lat, mapping.Lng),
		}
	}

	return mapping, nil
}
