package dto

import "net/http"

// Error code constants
// Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeValidation is used for request validation failures
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeInvalidState is used when an operation is invalid for the
	// current state (e.g. triggering a poll on a stopped scheduler)
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeUpstream is used when the remote inventory service fails
	ErrCodeUpstream = "ERR_UPSTREAM"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeUpstream:     http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
