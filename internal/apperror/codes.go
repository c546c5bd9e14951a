package apperror

import "net/http"

// Code is a machine-readable failure category.
type Code string

// Pipeline errors
const (
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeAssetIntegrity     Code = "ASSET_INTEGRITY"
	CodeEncoding           Code = "ENCODING_FAILED"
	CodeTranscription      Code = "TRANSCRIPTION_FAILED"
	CodeEmptyOutput        Code = "EMPTY_OUTPUT"
	CodeInconsistentFormat Code = "INCONSISTENT_FORMAT"
)

// Collaborator errors
const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeAccessDenied       Code = "ACCESS_DENIED"
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeRateLimited        Code = "RATE_LIMITED"
)

// Boundary errors
const (
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeInternal     Code = "INTERNAL_ERROR"
)

var retryableCodes = map[Code]bool{
	CodeServiceUnavailable: true,
	CodeRateLimited:        true,
}

var httpStatuses = map[Code]int{
	CodeInvalidInput:       http.StatusBadRequest,
	CodeAssetIntegrity:     http.StatusUnprocessableEntity,
	CodeEncoding:           http.StatusUnprocessableEntity,
	CodeTranscription:      http.StatusBadGateway,
	CodeEmptyOutput:        http.StatusBadGateway,
	CodeInconsistentFormat: http.StatusBadGateway,
	CodeNotFound:           http.StatusNotFound,
	CodeAccessDenied:       http.StatusForbidden,
	CodeServiceUnavailable: http.StatusServiceUnavailable,
	CodeRateLimited:        http.StatusTooManyRequests,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeInternal:           http.StatusInternalServerError,
}

// IsRetryableCode reports whether failures with this code are transient.
func IsRetryableCode(code Code) bool {
	return retryableCodes[code]
}
