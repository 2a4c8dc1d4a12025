// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package columns

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// SuggestionError describes why the oracle could not provide a mapping.
// Callers never surface it; it is logged and the heuristic takes over.
type SuggestionError struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType classifies oracle failures.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit too many requests.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded quota exhausted or access denied.
	ErrorTypeQuotaExceeded
	// ErrorTypeTimeout the single attempt ran out of time.
	ErrorTypeTimeout
	// ErrorTypeInvalidRequest the oracle rejected the request.
	ErrorTypeInvalidRequest
	// ErrorTypeInvalidResponse the answer did not have the expected shape.
	ErrorTypeInvalidResponse
	// ErrorTypeRejected the answer named headers that do not exist.
	ErrorTypeRejected
	// ErrorTypeNetworkError the oracle could not be reached.
	ErrorTypeNetworkError
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeRateLimit:
		return "rate_limit"
	case ErrorTypeQuotaExceeded:
		return "quota_exceeded"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypeInvalidRequest:
		return "invalid_request"
	case ErrorTypeInvalidResponse:
		return "invalid_response"
	case ErrorTypeRejected:
		return "rejected"
	case ErrorTypeNetworkError:
		return "network"
	default:
		return "unknown"
	}
}

func (e *SuggestionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *SuggestionError) Unwrap() error {
	return e.Err
}

func errorTypeOf(err error) (ErrorType, bool) {
	var sugErr *SuggestionError
	if errors.As(err, &sugErr) {
		return sugErr.Type, true
	}

	return ErrorTypeUnknown, false
}

// IsRateLimitError reports whether err comes from a rate limit.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	if t, ok := errorTypeOf(err); ok {
		return t == ErrorTypeRateLimit
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429")
}

// IsQuotaExceededError reports whether err comes from an exhausted quota.
func IsQuotaExceededError(err error) bool {
	if err == nil {
		return false
	}

	if t, ok := errorTypeOf(err); ok {
		return t == ErrorTypeQuotaExceeded
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "resource_exhausted") ||
		strings.Contains(errStr, "quota exceeded")
}

// IsTimeoutError reports whether err comes from a timeout.
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}

	if t, ok := errorTypeOf(err); ok {
		return t == ErrorTypeTimeout
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// ClassifyHTTPError turns a non-OK oracle status into a SuggestionError.
func ClassifyHTTPError(statusCode int, body string) *SuggestionError {
	switch statusCode {
	case http.StatusTooManyRequests: // 429
		if strings.Contains(strings.ToLower(body), "quota") {
			return &SuggestionError{
				Type:    ErrorTypeQuotaExceeded,
				Message: "oracle quota exceeded",
			}
		}

		return &SuggestionError{
			Type:    ErrorTypeRateLimit,
			Message: "oracle rate limit reached",
		}
	case http.StatusForbidden, http.StatusUnauthorized: // 403, 401
		return &SuggestionError{
			Type:    ErrorTypeQuotaExceeded,
			Message: "oracle access denied",
		}
	case http.StatusBadRequest, http.StatusNotFound: // 400, 404
		return &SuggestionError{
			Type:    ErrorTypeInvalidRequest,
			Message: fmt.Sprintf("oracle rejected the request (status %d)", statusCode),
		}
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return &SuggestionError{
			Type:    ErrorTypeTimeout,
			Message: fmt.Sprintf("oracle timed out (status %d)", statusCode),
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusInternalServerError:
		return &SuggestionError{
			Type:    ErrorTypeNetworkError,
			Message: fmt.Sprintf("oracle unavailable (status %d)", statusCode),
		}
	default:
		return &SuggestionError{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("oracle HTTP error %d", statusCode),
		}
	}
}
