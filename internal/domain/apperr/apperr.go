// Package apperr defines the error taxonomy shared by the provider clients
// and the dashboard orchestrator, plus the single-slot Notice published to
// the UI-facing state.
package apperr

import (
	"fmt"

	"skycast/internal/errors"
)

// Kind classifies an application error. Info is not a failure; it reuses the
// notification channel for informational messages.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidURL
	KindNetwork
	KindDecoding
	KindGeocodingFailed
	KindInvalidResponse
	KindMissingData
	KindInfo
)

func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid_url"
	case KindNetwork:
		return "network_error"
	case KindDecoding:
		return "decoding_error"
	case KindGeocodingFailed:
		return "geocoding_failed"
	case KindInvalidResponse:
		return "invalid_response"
	case KindMissingData:
		return "missing_data"
	case KindInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Error is a tagged application error.
type Error struct {
	kind       Kind
	message    string
	query      string // set for KindGeocodingFailed
	statusCode int    // set for KindInvalidResponse
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}

	return e.message
}

func (e *Error) Unwrap() error { return e.cause }

// Kind returns the error classification.
func (e *Error) Kind() Kind { return e.kind }

// Query returns the original query for geocoding failures.
func (e *Error) Query() string { return e.query }

// StatusCode returns the provider status code for invalid responses.
func (e *Error) StatusCode() int { return e.statusCode }

// InvalidURL reports a request that could not even be constructed.
func InvalidURL(cause error) *Error {
	return &Error{kind: KindInvalidURL, message: "invalid request URL", cause: cause}
}

// Network reports a transport-level failure.
func Network(cause error) *Error {
	return &Error{kind: KindNetwork, message: "network error", cause: cause}
}

// Decoding reports a malformed provider payload. Never retried.
func Decoding(cause error) *Error {
	return &Error{kind: KindDecoding, message: "malformed response payload", cause: cause}
}

// GeocodingFailed reports that a free-text query could not be resolved.
// cause may be nil when the provider simply returned no results.
func GeocodingFailed(query string, cause error) *Error {
	return &Error{
		kind:    KindGeocodingFailed,
		message: fmt.Sprintf("could not resolve location %q", query),
		query:   query,
		cause:   cause,
	}
}

// InvalidResponse reports a non-2xx provider status.
func InvalidResponse(statusCode int) *Error {
	return &Error{
		kind:       KindInvalidResponse,
		message:    fmt.Sprintf("unexpected provider status %d", statusCode),
		statusCode: statusCode,
	}
}

// MissingData reports an incomplete provider payload.
func MissingData(message string) *Error {
	return &Error{kind: KindMissingData, message: message}
}

// Info carries a non-error informational notice on the error channel.
func Info(message string) *Error {
	return &Error{kind: KindInfo, message: message}
}

// KindOf extracts the Kind from anywhere in err's tree, or KindUnknown.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}

	return KindUnknown
}

// IsRetryable reports whether a weather fetch attempt that failed with err
// may be retried: transport failures and 5xx responses only.
func IsRetryable(err error) bool {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return false
	}
	switch appErr.Kind() {
	case KindNetwork:
		return true
	case KindInvalidResponse:
		return appErr.StatusCode() >= 500 && appErr.StatusCode() <= 599
	default:
		return false
	}
}

// Notice is the single-slot, most-recent-wins notification published on the
// dashboard state. Info notices share the slot with true errors but are
// rendered differently downstream.
type Notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Info    bool   `json:"info"`
}

// NoticeFrom converts any error into a publishable Notice. Errors outside
// the taxonomy are reported as network errors.
func NoticeFrom(err error) *Notice {
	if err == nil {
		return nil
	}

	kind := KindOf(err)
	if kind == KindUnknown {
		kind = KindNetwork
	}

	return &Notice{
		Kind:    kind.String(),
		Message: err.Error(),
		Info:    kind == KindInfo,
	}
}
