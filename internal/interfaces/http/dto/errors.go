package dto

import (
	"net/http"

	"github.com/propcore/backend/internal/domain/shared"
)

// Transport-level error codes. Domain errors keep the code of their
// shared.DomainError (VALIDATION_ERROR, DUPLICATE_PAYMENT, ...).
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeTimeout         = "TIMEOUT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeTokenExpired:    http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeTimeout:         http.StatusGatewayTimeout,

	// Input problems -> 400
	shared.CodeValidation: http.StatusBadRequest,

	shared.CodeNotFound: http.StatusNotFound,

	// Consistency violations -> 409: the request was well formed but collides
	// with the current state of another record
	shared.CodeConsistency:         http.StatusConflict,
	shared.CodeUnitUnavailable:     http.StatusConflict,
	shared.CodeDuplicateTenant:     http.StatusConflict,
	shared.CodeDuplicatePayment:    http.StatusConflict,
	shared.CodeConcurrencyConflict: http.StatusConflict,

	// Rule violations on the target itself -> 422
	shared.CodeInvalidTransition:   http.StatusUnprocessableEntity,
	shared.CodeActivePaymentsExist: http.StatusUnprocessableEntity,
	shared.CodeActiveTenantsExist:  http.StatusUnprocessableEntity,
	shared.CodeInvalidState:        http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
