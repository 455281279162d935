package shared

import (
	"errors"
	"fmt"
)

// Error codes. The HTTP layer maps these onto status codes.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeConsistency         = "CONSISTENCY_VIOLATION"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeUnitUnavailable     = "UNIT_UNAVAILABLE"
	CodeDuplicateTenant     = "DUPLICATE_TENANT"
	CodeDuplicatePayment    = "DUPLICATE_PAYMENT"
	CodeActivePaymentsExist = "ACTIVE_PAYMENTS_EXIST"
	CodeActiveTenantsExist  = "ACTIVE_TENANTS_EXIST"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeInvalidState        = "INVALID_STATE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Count   int64  `json:"count,omitempty"`
	err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.err
}

// Is matches domain errors by code so that errors.Is works against the sentinels below
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// IsConsistencyViolation reports whether the error belongs to the consistency family:
// duplicate payments, unavailable units, duplicate tenants, invalid transitions and
// lost optimistic-lock races are all rejected by the atomic write.
func (e *DomainError) IsConsistencyViolation() bool {
	switch e.Code {
	case CodeConsistency, CodeUnitUnavailable, CodeDuplicateTenant, CodeDuplicatePayment,
		CodeInvalidTransition, CodeConcurrencyConflict:
		return true
	}
	return false
}

// WithField attaches the offending field name
func (e *DomainError) WithField(field string) *DomainError {
	c := *e
	c.Field = field
	return &c
}

// WithCause attaches the underlying error
func (e *DomainError) WithCause(err error) *DomainError {
	c := *e
	c.err = err
	return &c
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports malformed or out-of-range input on field
func NewValidationError(field, message string) *DomainError {
	return &DomainError{Code: CodeValidation, Message: message, Field: field}
}

// NewNotFoundError reports a missing (or cross-organization) entity
func NewNotFoundError(entity string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", entity)}
}

// NewActivePaymentsExistError blocks an archival while count payments are still open
func NewActivePaymentsExistError(count int64) *DomainError {
	return &DomainError{
		Code:    CodeActivePaymentsExist,
		Message: fmt.Sprintf("tenant has %d outstanding payment(s)", count),
		Count:   count,
	}
}

// NewActiveTenantsExistError blocks an archival while count live tenants remain
func NewActiveTenantsExistError(count int64) *DomainError {
	return &DomainError{
		Code:    CodeActiveTenantsExist,
		Message: fmt.Sprintf("%d active tenant(s) still assigned", count),
		Count:   count,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput        = NewDomainError(CodeValidation, "Invalid input provided")
	ErrConsistency         = NewDomainError(CodeConsistency, "Consistency violation")
	ErrInvalidTransition   = NewDomainError(CodeInvalidTransition, "Status transition not allowed")
	ErrUnitUnavailable     = NewDomainError(CodeUnitUnavailable, "Unit is not available")
	ErrDuplicateTenant     = NewDomainError(CodeDuplicateTenant, "A live tenant with this email already exists")
	ErrDuplicatePayment    = NewDomainError(CodeDuplicatePayment, "A paid payment already exists for this rent month")
	ErrActivePaymentsExist = NewDomainError(CodeActivePaymentsExist, "Outstanding payments exist")
	ErrActiveTenantsExist  = NewDomainError(CodeActiveTenantsExist, "Active tenants exist")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
)

// IsConsistencyViolation reports whether err is any consistency-family domain error
func IsConsistencyViolation(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.IsConsistencyViolation()
	}
	return false
}
