// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package sheet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"
)

// maxBodySize caps how much of a remote export is read.
const maxBodySize = 64 << 20

// FetchError reports a remote source that could not be retrieved.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
	}

	return fmt.Sprintf("fetching %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err means the dataset could not be
// retrieved at all, as opposed to being retrieved and found unusable.
func IsTransportError(err error) bool {
	var fetchErr *FetchError

	return errors.As(err, &fetchErr) || errors.Is(err, os.ErrNotExist)
}

// Loader reads datasets from local files or http(s) URLs. A single attempt is
// made; callers decide what to do with a failure.
type Loader struct {
	Client *http.Client
}

// NewLoader creates a Loader using client, or http.DefaultClient when nil.
func NewLoader(client *http.Client) *Loader {
	if client == nil {
		client = http.DefaultClient
	}

	return &Loader{Client: client}
}

// Load reads the dataset at location, a file path or an http(s) URL.
func (l *Loader) Load(ctx context.Context, location string) (*Dataset, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("no source given")
	}

	if isURL(location) {
		return l.fetch(ctx, location)
	}

	return LoadFile(location)
}

// LoadFile reads a local export; the format comes from the file extension.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(filepath.Clean(path)) // #nosec G304 - path is provided by the user
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	format := FormatFromPath(path)

	var r io.Reader = f
	if format != FormatXLSX {
		// local exports are utf-8 unless they say otherwise with a BOM
		r, err = charset.NewReader(f, "text/plain; charset=utf-8")
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
		}
	}

	ds, err := Decode(r, format)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}

	return ds, nil
}

func (l *Loader) fetch(ctx context.Context, rawURL string) (*Dataset, error) {
	target := GoogleSheetsExportURL(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}

	req.Header.Set("Accept", "text/csv, text/tab-separated-values, text/html;q=0.8, */*;q=0.5")

	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{URL: target, StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")

	format := FormatFromContentType(contentType)
	if format == FormatUnknown {
		format = formatFromURL(target)
	}

	body := io.LimitReader(resp.Body, maxBodySize)

	var r io.Reader = body
	if format != FormatXLSX {
		r, err = charset.NewReader(body, contentType)
		if err != nil {
			return nil, &FetchError{URL: target, Err: fmt.Errorf("decoding charset: %w", err)}
		}
	}

	ds, err := Decode(r, format)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", target, err)
	}

	return ds, nil
}

func isURL(location string) bool {
	u, err := url.Parse(location)

	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func formatFromURL(rawURL string) Format {
	u, err := url.Parse(rawURL)
	if err != nil {
		return FormatUnknown
	}

	q := u.Query()
	for _, key := range []string{"format", "output"} {
		switch strings.ToLower(q.Get(key)) {
		case "csv":
			return FormatCSV
		case "tsv":
			return FormatTSV
		case "xlsx":
			return FormatXLSX
		case "html":
			return FormatHTML
		}
	}

	return FormatFromPath(u.Path)
}

var (
	googleSheetRegex = regexp.MustCompile(`^/spreadsheets/d/([A-Za-z0-9_-]+)(/(edit|view)?)?$`)
	gidRegex         = regexp.MustCompile(`gid=(\d+)`)
)

// GoogleSheetsExportURL rewrites a Google Sheets edit or view link into its
// CSV export link. Published and export links, and any other URL, are
// returned unchanged.
func GoogleSheetsExportURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host != "docs.google.com" {
		return rawURL
	}

	m := googleSheetRegex.FindStringSubmatch(u.Path)
	if m == nil {
		return rawURL
	}

	export := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv", m[1])

	gid := u.Query().Get("gid")
	if gid == "" {
		if g := gidRegex.FindStringSubmatch(u.Fragment); g != nil {
			gid = g[1]
		}
	}

	if gid != "" {
		export += "&gid=" + gid
	}

	return export
}
