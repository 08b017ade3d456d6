package shared

import "errors"

// Codes shared across the letter domain. Aggregates add their own
// INVALID_<FIELD> codes for validation failures.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeInvalidInput = "INVALID_INPUT"
	CodeUnauthorized = "UNAUTHORIZED"
)

// DomainError is a failure with a stable code and a message safe to show
// callers. Cause is kept for server-side logs and never rendered.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Unwrap() error { return e.Cause }

// Is matches any DomainError carrying the same code, so errors.Is(err,
// ErrNotFound) holds for every not-found variant.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// NewDomainError creates a domain error without a cause
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// WrapDomainError creates a domain error around cause
func WrapDomainError(code, message string, cause error) *DomainError {
	return &DomainError{Code: code, Message: message, Cause: cause}
}

// NotFound is a NOT_FOUND error naming what was missing
func NotFound(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}

// InvalidInput is an INVALID_INPUT error
func InvalidInput(message string) *DomainError {
	return NewDomainError(CodeInvalidInput, message)
}

// AsDomainError finds the first DomainError in err's chain
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Sentinels for errors.Is checks
var (
	ErrNotFound     = NotFound("Resource not found")
	ErrInvalidInput = InvalidInput("Invalid input provided")
	ErrUnauthorized = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
)
