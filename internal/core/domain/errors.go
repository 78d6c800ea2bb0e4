// Package domain defines the core domain model for nonbloat-db.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
//
// Two DomainErrors match under errors.Is when their codes are equal, so
// callers can compare against the sentinel values below regardless of the
// details or cause attached to a particular instance.
type DomainError struct {
	Code    string // Error code (e.g., "NB-KEY-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

var (
	// ErrKeyNotFound indicates the key is not present in the store.
	ErrKeyNotFound = NewDomainError("NB-KEY-4040", "key not found")

	// ErrMalformedData indicates snapshot or log content could not be parsed.
	ErrMalformedData = NewDomainError("NB-DATA-4220", "malformed data")

	// ErrIOFailure indicates an underlying read, write, rename or delete failed.
	ErrIOFailure = NewDomainError("NB-IO-5000", "io failure")

	// ErrClosed indicates the store has already been closed.
	ErrClosed = NewDomainError("NB-STORE-4100", "store is closed")

	// ErrInvalidConfig indicates the store configuration is invalid.
	ErrInvalidConfig = NewDomainError("NB-CONF-4000", "invalid configuration")

	// ErrInvalidValue indicates a value that cannot be stored.
	ErrInvalidValue = NewDomainError("NB-VAL-4001", "invalid value")
)
