// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils holds the small text helpers shared by the header
// matching and the command line output.
package textutils

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LowerASCIIFolding normalizes a string by removing accents, lowercasing, and trimming spaces.
func LowerASCIIFolding(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.TrimSpace(strings.ToLower(s)),
	)

	return s
}

// EqualFolded compares two strings after LowerASCIIFolding both.
func EqualFolded(a, b string) bool {
	return LowerASCIIFolding(a) == LowerASCIIFolding(b)
}

// ContainsFolded reports whether needle appears in s, ignoring case and accents.
// An empty needle never matches.
func ContainsFolded(s, needle string) bool {
	needle = LowerASCIIFolding(needle)
	if needle == "" {
		return false
	}

	return strings.Contains(LowerASCIIFolding(s), needle)
}

// FormatInt formats an integer with commas for human readability.
func FormatInt(n int64) string {
	in := strconv.FormatInt(n, 10)

	numOfDigits := len(in)
	if n < 0 {
		numOfDigits-- // First character is the - sign (not a digit)
	}

	numOfCommas := (numOfDigits - 1) / 3

	out := make([]byte, len(in)+numOfCommas)
	if n < 0 {
		in, out[0] = in[1:], '-'
	}

	for i, j, k := len(in)-1, len(out)-1, 0; ; i, j = i-1, j-1 {
		out[j] = in[i]
		if i == 0 {
			return string(out)
		}

		if k++; k == 3 {
			j, k = j-1, 0
			out[j] = ','
		}
	}
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}

	return string(r[:n]) + "…"
}
