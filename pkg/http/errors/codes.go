package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeMissingField   = "missing_field"

	// Resource errors
	ErrCodeNotFound      = "not_found"
	ErrCodeUnprocessable = "unprocessable"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeUpstreamError      = "upstream_error"
	ErrCodeMethodNotAllowed   = "method_not_allowed"
	ErrCodeFeedDisabled       = "feed_disabled"
)
