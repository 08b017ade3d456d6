package dto

import "net/http"

// General error codes emitted by the HTTP layer itself
const (
	ErrCodeInternal      = "INTERNAL_ERROR"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeTokenExpired  = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid  = "TOKEN_INVALID"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeRateLimited   = "RATE_LIMITED"
	ErrCodeTooLarge      = "REQUEST_TOO_LARGE"
)

// Domain error codes raised by the communication services
const (
	ErrCodeInvalidIdentifier       = "INVALID_IDENTIFIER"
	ErrCodeInvalidTemplatePackage  = "INVALID_TEMPLATE_PACKAGE"
	ErrCodeSsrfBlocked             = "SSRF_BLOCKED"
	ErrCodeRepositoryUnavailable   = "REPOSITORY_UNAVAILABLE"
	ErrCodeMergeFailed             = "MERGE_FAILED"
	ErrCodePublishFailed           = "PUBLISH_FAILED"
	ErrCodeUpstreamDataUnavailable = "UPSTREAM_DATA_UNAVAILABLE"
	ErrCodeTenantMismatch          = "TENANT_MISMATCH"
	ErrCodeFileTooLarge            = "FILE_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:             http.StatusBadRequest,
	ErrCodeValidation:             http.StatusBadRequest,
	ErrCodeInvalidInput:           http.StatusBadRequest,
	ErrCodeInvalidIdentifier:      http.StatusBadRequest,
	ErrCodeInvalidTemplatePackage: http.StatusBadRequest,
	"INVALID_TENANT":              http.StatusBadRequest,
	"INVALID_NAME":                http.StatusBadRequest,
	"INVALID_DESCRIPTION":         http.StatusBadRequest,
	"INVALID_CATEGORY":            http.StatusBadRequest,
	"INVALID_TEMPLATE_TYPE":       http.StatusBadRequest,
	"INVALID_FILE_REF":            http.StatusBadRequest,
	"INVALID_FIELD_KEY":           http.StatusBadRequest,
	"INVALID_FIELD_TYPE":          http.StatusBadRequest,
	"INVALID_SOURCE_PATH":         http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeSsrfBlocked:  http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:       http.StatusNotFound,
	ErrCodeTenantMismatch: http.StatusNotFound,
	ErrCodeAlreadyExists:  http.StatusConflict,

	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeFileTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:  http.StatusTooManyRequests,

	// Downstream failures
	ErrCodeRepositoryUnavailable:   http.StatusBadGateway,
	ErrCodeUpstreamDataUnavailable: http.StatusBadGateway,
	ErrCodeMergeFailed:             http.StatusInternalServerError,
	ErrCodePublishFailed:           http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// PublicErrorCode returns the code shown to callers. Tenant mismatches are
// indistinguishable from missing resources.
func PublicErrorCode(code string) string {
	if code == ErrCodeTenantMismatch {
		return ErrCodeNotFound
	}
	return code
}
