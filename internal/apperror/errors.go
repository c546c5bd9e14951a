// Package apperror is the error taxonomy of the summarizer pipeline.
//
// Every failure that crosses a component boundary is an *Error carrying a
// Code, so callers can tell retryable collaborator failures (rate limits,
// outages) from fatal ones (bad input, encoding failures) without string
// matching.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// NoChunk marks an error that is not tied to a particular audio chunk.
const NoChunk = -1

// Error is the single structured error type of the pipeline.
type Error struct {
	Code       Code
	Message    string
	ChunkIndex int
	Cause      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.ChunkIndex != NoChunk {
		msg = fmt.Sprintf("%s (chunk %d)", msg, e.ChunkIndex)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Retryable reports whether the failure is transient.
func (e *Error) Retryable() bool { return IsRetryableCode(e.Code) }

// New creates an Error not tied to any chunk.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message, ChunkIndex: NoChunk}
}

// Wrap creates an Error with an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, ChunkIndex: NoChunk, Cause: cause}
}

// --- Constructors ---

func InvalidInput(format string, args ...any) *Error {
	return New(CodeInvalidInput, fmt.Sprintf(format, args...))
}

func AssetIntegrity(format string, args ...any) *Error {
	return New(CodeAssetIntegrity, fmt.Sprintf(format, args...))
}

// Encoding reports that the chunk at index could not be exported.
func Encoding(index int, cause error) *Error {
	return &Error{Code: CodeEncoding, Message: "export audio chunk", ChunkIndex: index, Cause: cause}
}

// TranscriptionFailure reports that the external call for the chunk at index failed.
func TranscriptionFailure(index int, cause error) *Error {
	return &Error{Code: CodeTranscription, Message: "transcribe audio chunk", ChunkIndex: index, Cause: cause}
}

// EmptyOutput reports a degenerate (empty or malformed) response from a service.
func EmptyOutput(service string, cause error) *Error {
	return Wrap(CodeEmptyOutput, fmt.Sprintf("%s returned no usable output", service), cause)
}

func InconsistentFormat(format string, args ...any) *Error {
	return New(CodeInconsistentFormat, fmt.Sprintf(format, args...))
}

func NotFound(resource string, cause error) *Error {
	return Wrap(CodeNotFound, fmt.Sprintf("%s not found", resource), cause)
}

func AccessDenied(resource string, cause error) *Error {
	return Wrap(CodeAccessDenied, fmt.Sprintf("access to %s denied", resource), cause)
}

func ServiceUnavailable(service string, cause error) *Error {
	return Wrap(CodeServiceUnavailable, fmt.Sprintf("%s is temporarily unavailable", service), cause)
}

func RateLimited(service string, cause error) *Error {
	return Wrap(CodeRateLimited, fmt.Sprintf("%s rate limit exceeded", service), cause)
}

func Unauthorized(reason string) *Error {
	return New(CodeUnauthorized, reason)
}

func Internal(cause error) *Error {
	return Wrap(CodeInternal, "unexpected failure", cause)
}

// WithChunk returns a copy of e tagged with a chunk index.
func (e *Error) WithChunk(index int) *Error {
	cp := *e
	cp.ChunkIndex = index
	return &cp
}

// FromHTTPStatus classifies a failed response from a hosted service.
func FromHTTPStatus(service string, status int, cause error) *Error {
	switch {
	case status == http.StatusTooManyRequests:
		return RateLimited(service, cause)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return AccessDenied(service, cause)
	case status == http.StatusNotFound:
		return NotFound(service+" resource", cause)
	case status == http.StatusRequestTimeout || status >= http.StatusInternalServerError:
		return ServiceUnavailable(service, cause)
	case status >= http.StatusBadRequest:
		return Wrap(CodeInvalidInput, fmt.Sprintf("%s rejected the request", service), cause)
	default:
		return ServiceUnavailable(service, cause)
	}
}

// --- Inspection ---

// As returns the outermost *Error in err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Classify returns err unchanged when it already carries a Code and wraps it
// as Internal otherwise, so its text stays out of the failure reason.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	return Internal(err)
}

// CodeOf returns the code of the outermost *Error in the chain, or CodeInternal.
func CodeOf(err error) Code {
	if ae, ok := As(err); ok {
		return ae.Code
	}
	return CodeInternal
}

// Is reports whether any *Error in err's chain has the given code.
func Is(err error, code Code) bool {
	for err != nil {
		if ae, ok := err.(*Error); ok && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// ChunkIndexOf returns the chunk index carried by the first chunk-tagged
// *Error in the chain.
func ChunkIndexOf(err error) (int, bool) {
	for err != nil {
		if ae, ok := err.(*Error); ok && ae.ChunkIndex != NoChunk {
			return ae.ChunkIndex, true
		}
		err = errors.Unwrap(err)
	}
	return NoChunk, false
}

// IsRetryable reports whether the outermost *Error is transient.
func IsRetryable(err error) bool {
	if ae, ok := As(err); ok {
		return ae.Retryable()
	}
	return false
}

// HTTPStatus maps err to the status returned at the HTTP boundary.
func HTTPStatus(err error) int {
	if status, ok := httpStatuses[CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Reason renders err as the single-line failure reason surfaced to CLI and
// HTTP callers.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	ae, ok := As(err)
	if !ok {
		return fmt.Sprintf("%s: %s", CodeInternal, err.Error())
	}
	reason := fmt.Sprintf("%s: %s", ae.Code, ae.Message)
	if ae.ChunkIndex != NoChunk {
		reason = fmt.Sprintf("%s (chunk %d)", reason, ae.ChunkIndex)
	}
	if ae.Cause != nil {
		if inner, ok := As(ae.Cause); ok {
			reason = fmt.Sprintf("%s: %s: %s", reason, inner.Code, inner.Message)
		}
	}
	return reason
}
