// Package errors provides the standardized error taxonomy for the research
// function. Every failure surfaced to a caller is one of the named kinds
// below; the wire envelope stays {"error": ..., "details"?: ...}.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrCodeMissingAPIKey    ErrorCode = "MISSING_API_KEY"
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"

	ErrCodeUpstreamEmptyCandidates ErrorCode = "UPSTREAM_EMPTY_CANDIDATES"
	ErrCodeUpstreamMissingContent  ErrorCode = "UPSTREAM_MISSING_CONTENT"
	ErrCodeUpstreamTimeout         ErrorCode = "UPSTREAM_TIMEOUT"
	ErrCodeUpstreamRequestFailed   ErrorCode = "UPSTREAM_REQUEST_FAILED"
	ErrCodeUpstreamDecodeFailed    ErrorCode = "UPSTREAM_DECODE_FAILED"
	ErrCodeMalformedOutput         ErrorCode = "MALFORMED_STRUCTURED_OUTPUT"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// HTTPStatus maps an error kind to the status code returned to the caller.
func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrCodeUpstreamTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ==========================
// 2. Wire Envelope
// ==========================

// Envelope is the JSON error body sent to callers. Error codes stay
// internal; the caller contract carries only the message and detail text.
type Envelope struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Envelope renders the error into its wire shape.
func (e *StandardError) Envelope() Envelope {
	return Envelope{Error: e.Message, Details: e.Details}
}

// ==========================
// 3. Error Constructors
// ==========================

// NewMissingAPIKeyError reports an absent server credential. Checked before
// any upstream work is attempted.
func NewMissingAPIKeyError() *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingAPIKey,
		Message:   "Server API Key is missing. Set GEMINI_API_KEY environment variable.",
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError reports a missing/undecodable body or an absent prompt.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Missing prompt in request data.",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewMethodNotAllowedError rejects an HTTP method the endpoint does not accept.
func NewMethodNotAllowedError(got, want string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMethodNotAllowed,
		Message:   "Method Not Allowed.",
		Details:   fmt.Sprintf("%s is not supported; use %s", got, want),
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyCandidatesError reports an upstream response with no candidates.
func NewEmptyCandidatesError() *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamEmptyCandidates,
		Message:   "Gemini API returned an empty candidate list.",
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingContentError reports a candidate without the structured-text part.
func NewMissingContentError() *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamMissingContent,
		Message:   "Gemini API failed to return structured JSON content.",
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamTimeoutError reports that the single upstream attempt exceeded
// its time ceiling.
func NewUpstreamTimeoutError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamTimeout,
		Message:   "Gemini API request timed out.",
		Details:   detailOf(err),
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamRequestError reports a transport failure or non-2xx upstream status.
func NewUpstreamRequestError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamRequestFailed,
		Message:   "Gemini API request failed.",
		Details:   detailOf(err),
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamDecodeError reports an undecodable outer response body.
func NewUpstreamDecodeError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamDecodeFailed,
		Message:   "Gemini API returned an unparseable response body.",
		Details:   detailOf(err),
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedOutputError reports inner structured text that failed JSON
// decoding or schema validation (a schema/prompt mismatch), distinct from
// transport-level failures.
func NewMalformedOutputError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedOutput,
		Message:   "Gemini API returned malformed structured content.",
		Details:   detailOf(err),
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError is the final fallback arm for otherwise-unclassified faults.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   fmt.Sprintf("An unexpected server error occurred: %s", detailOf(err)),
		Details:   detailOf(err),
		Timestamp: time.Now().UTC(),
	}
}

// Normalize ensures any error becomes a StandardError without re-wrapping
// already-classified ones, including ones buried in a wrap chain.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

func detailOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
