package communication

import "github.com/commhub/backend/internal/domain/shared"

// Error codes raised by the letter generation pipeline
const (
	CodeInvalidIdentifier       = "INVALID_IDENTIFIER"
	CodeInvalidTemplatePackage  = "INVALID_TEMPLATE_PACKAGE"
	CodeSsrfBlocked             = "SSRF_BLOCKED"
	CodeRepositoryUnavailable   = "REPOSITORY_UNAVAILABLE"
	CodeMergeFailed             = "MERGE_FAILED"
	CodePublishFailed           = "PUBLISH_FAILED"
	CodeUpstreamDataUnavailable = "UPSTREAM_DATA_UNAVAILABLE"
	CodeTenantMismatch          = "TENANT_MISMATCH"
)

var (
	ErrInvalidIdentifier       = shared.NewDomainError(CodeInvalidIdentifier, "Identifier must be a 24-character hexadecimal string")
	ErrInvalidTemplatePackage  = shared.NewDomainError(CodeInvalidTemplatePackage, "Template file is not a valid document package")
	ErrSsrfBlocked             = shared.NewDomainError(CodeSsrfBlocked, "Outbound request was blocked")
	ErrRepositoryUnavailable   = shared.NewDomainError(CodeRepositoryUnavailable, "Document repository is unavailable")
	ErrMergeFailed             = shared.NewDomainError(CodeMergeFailed, "Failed to render document")
	ErrPublishFailed           = shared.NewDomainError(CodePublishFailed, "Failed to publish document")
	ErrUpstreamDataUnavailable = shared.NewDomainError(CodeUpstreamDataUnavailable, "Member data is unavailable")
	// ErrTenantMismatch is never surfaced as-is; the HTTP layer reports it as not found.
	ErrTenantMismatch = shared.NewDomainError(CodeTenantMismatch, "Resource not found")
)

// Failure wraps cause under the given pipeline error code, keeping the
// sentinel's caller-facing message.
func Failure(sentinel *shared.DomainError, cause error) *shared.DomainError {
	return shared.WrapDomainError(sentinel.Code, sentinel.Message, cause)
}
