// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package httputils

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dummyRoundTripper records the last request and answers with a canned body.
type dummyRoundTripper struct {
	lastRequest *http.Request
	body        string
}

func (d *dummyRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	d.lastRequest = req

	return &http.Response{
		Status:     "200 OK",
		StatusCode: http.StatusOK,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(d.body)),
	}, nil
}

func TestLoggingRoundTripper(t *testing.T) {
	var logBuffer bytes.Buffer

	lt := &LoggingRoundTripper{
		Transport: &dummyRoundTripper{body: "lat,lng\n1,2"},
		Writer:    &logBuffer,
		DumpBody:  true,
	}

	req, err := http.NewRequest(http.MethodGet, "http://example.com/sheet.csv?key=s3cr3t&gid=0", nil)
	require.NoError(t, err)
	req.Header.Set("X-Goog-Api-Key", "s3cr3t")

	_, err = lt.RoundTrip(req)
	require.NoError(t, err)

	logContent := logBuffer.String()
	assert.Contains(t, logContent, "> GET /sheet.csv?key=***&gid=0")
	assert.Contains(t, logContent, "< RESPONSE: [")
	assert.Contains(t, logContent, "lat,lng")
	assert.NotContains(t, logContent, "s3cr3t")
}

func TestLoggingRoundTripperWithoutWriter(t *testing.T) {
	dummy := &dummyRoundTripper{}
	lt := &LoggingRoundTripper{Transport: dummy}

	req, err := http.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, err)

	_, err = lt.RoundTrip(req)
	require.NoError(t, err)
	assert.Same(t, req, dummy.lastRequest)
}

func TestRedact(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Authorization: Bearer abc", "Authorization: ***"},
		{"x-goog-api-key: abc\r", "x-goog-api-key: ***"},
		{"GET /v1beta/models?key=abc HTTP/1.1", "GET /v1beta/models?key=*** HTTP/1.1"},
		{"Content-Type: text/csv", "Content-Type: text/csv"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, Redact(tc.input))
		})
	}
}

func TestAppendRequestHeadersRoundTripper(t *testing.T) {
	dummy := &dummyRoundTripper{}
	atr := &AppendRequestHeadersRoundTripper{
		Transport: dummy,
		Headers: map[string]string{
			"X-Test-Header": "TestValue",
			"Accept":        "*/*",
		},
	}

	req, err := http.NewRequest(http.MethodPost, "http://example.org", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/csv")

	_, err = atr.RoundTrip(req)
	require.NoError(t, err)

	require.NotNil(t, dummy.lastRequest)
	assert.Equal(t, "TestValue", dummy.lastRequest.Header.Get("X-Test-Header"))
	assert.Equal(t, "text/csv", dummy.lastRequest.Header.Get("Accept"), "explicit headers win")
}

func TestNewClientSetsUserAgent(t *testing.T) {
	var got string

	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	client := NewClient(&ClientOptions{UserAgent: "sheetmap/test"})

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "sheetmap/test", got)
}
