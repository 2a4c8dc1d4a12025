// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package columns

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
)

const (
	// DefaultGeminiModel is used when SHEETMAP_GEMINI_MODEL is not set.
	DefaultGeminiModel = "gemini-2.0-flash"

	// DefaultGeminiBaseURL is the public Generative Language REST endpoint.
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	maxErrorBody = 4 << 10
)

// GeminiSuggester asks a Gemini model for the coordinate columns.
type GeminiSuggester struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiSuggester creates an oracle backed by the Gemini API. An empty
// model selects DefaultGeminiModel and a nil client http.DefaultClient.
func NewGeminiSuggester(apiKey, model string, client *http.Client) *GeminiSuggester {
	if model == "" {
		model = DefaultGeminiModel
	}

	if client == nil {
		client = http.DefaultClient
	}

	return &GeminiSuggester{
		apiKey:     apiKey,
		model:      model,
		baseURL:    DefaultGeminiBaseURL,
		httpClient: client,
	}
}

// NewGeminiSuggesterFromEnv reads the key from GEMINI_API_KEY, falling back
// to Application Default Credentials, and the model from
// SHEETMAP_GEMINI_MODEL.
func NewGeminiSuggesterFromEnv(ctx context.Context, client *http.Client) (*GeminiSuggester, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		var err error

		apiKey, err = APIKeyFromADC(ctx, GeminiKeyDisplayName)
		if err != nil {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set and ADC failed: %w", err)
		}
	}

	return NewGeminiSuggester(apiKey, os.Getenv("SHEETMAP_GEMINI_MODEL"), client), nil
}

// WithBaseURL points the suggester at another endpoint.
func (g *GeminiSuggester) WithBaseURL(baseURL string) *GeminiSuggester {
	g.baseURL = strings.TrimRight(baseURL, "/")

	return g
}

// Model returns the model name in use.
func (g *GeminiSuggester) Model() string {
	return g.model
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		ResponseMimeType string  `json:"responseMimeType"`
		Temperature      float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

type columnAnswer struct {
	LatColumn string `json:"latColumn"`
	LngColumn string `json:"lngColumn"`
}

// Suggest implements Suggester. A single request is made.
func (g *GeminiSuggester) Suggest(ctx context.Context, req Request) (Mapping, error) {
	if g.apiKey == "" {
		return Mapping{}, &SuggestionError{Type: ErrorTypeInvalidRequest, Message: "no Gemini API key configured"}
	}

	payload := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: req.Prompt()}}}},
	}
	payload.GenerationConfig.ResponseMimeType = "application/json"

	body, err := json.Marshal(payload)
	if err != nil {
		return Mapping{}, fmt.Errorf("encoding oracle request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Mapping{}, &SuggestionError{Type: ErrorTypeInvalidRequest, Message: "building oracle request", Err: err}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return Mapping{}, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return Mapping{}, ClassifyHTTPError(resp.StatusCode, string(errBody))
	}

	var gr geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return Mapping{}, &SuggestionError{Type: ErrorTypeInvalidResponse, Message: "decoding oracle response", Err: err}
	}

	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return Mapping{}, &SuggestionError{Type: ErrorTypeInvalidResponse, Message: "oracle returned no candidates"}
	}

	return parseAnswer(gr.Candidates[0].Content.Parts[0].Text)
}

func parseAnswer(text string) (Mapping, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var answer columnAnswer
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &answer); err != nil {
		return Mapping{}, &SuggestionError{Type: ErrorTypeInvalidResponse, Message: "oracle answer is not JSON", Err: err}
	}

	mapping := Mapping{Lat: strings.TrimSpace(answer.LatColumn), Lng: strings.TrimSpace(answer.LngColumn)}
	if mapping.IsEmpty() {
		return Mapping{}, &SuggestionError{Type: ErrorTypeInvalidResponse, Message: "oracle answer misses a column"}
	}

	return mapping, nil
}

func classifyTransportError(err error) *SuggestionError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &SuggestionError{Type: ErrorTypeTimeout, Message: "oracle request timed out", Err: err}
	}

	return &SuggestionError{Type: ErrorTypeNetworkError, Message: "oracle request failed", Err: err}
}
