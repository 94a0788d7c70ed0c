// Package i18n translates caller-facing messages.
package i18n

// Error message translation keys.
const (
	// ErrKeyInvalidRequest indicates an invalid request.
	ErrKeyInvalidRequest = "error.invalid_request"
	// ErrKeyInvalidRequestBody indicates a body that could not be decoded.
	ErrKeyInvalidRequestBody = "error.invalid_request_body"
	// ErrKeyInternalError indicates an internal server error.
	ErrKeyInternalError = "error.internal_error"
	// ErrKeyAPIKeyRequired indicates that an API key is required.
	ErrKeyAPIKeyRequired = "error.api_key_required"
	// ErrKeyInvalidAPIKey indicates an invalid API key.
	ErrKeyInvalidAPIKey = "error.invalid_api_key"
	// ErrKeyNotFound indicates a resource was not found.
	ErrKeyNotFound = "error.not_found"
	// ErrKeyRateLimitExceeded indicates rate limit exceeded.
	ErrKeyRateLimitExceeded = "error.rate_limit_exceeded"
	// ErrKeyTimeout indicates a request timeout.
	ErrKeyTimeout = "error.timeout"
	// ErrKeyBatchTooLarge indicates a batch above the item limit.
	ErrKeyBatchTooLarge = "error.batch_too_large"
	// ErrKeyUnknownDrug indicates a catalog write for a drug that does not exist.
	ErrKeyUnknownDrug = "error.unknown_drug"
	// ErrKeyServiceUnavailable indicates a dependency is not ready.
	ErrKeyServiceUnavailable = "error.service_unavailable"
)

// KeyForCode returns the translation key of a reconciliation error code.
func KeyForCode(code string) string {
	return "error." + code
}
