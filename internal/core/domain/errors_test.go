package domain

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("NB-TEST-1000", "test message"),
			expected: "[NB-TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("NB-TEST-1001", "test message").WithDetails("extra info"),
			expected: "[NB-TEST-1001] test message: extra info",
		},
		{
			name:     "error with details and cause",
			err:      NewDomainError("NB-TEST-1002", "test message").WithDetails("extra").WithCause(fmt.Errorf("boom")),
			expected: "[NB-TEST-1002] test message: extra: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("NB-TEST-1000", "message 1")
	err2 := NewDomainError("NB-TEST-1000", "message 2")
	err3 := NewDomainError("NB-TEST-1001", "message 1")

	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}
}

func TestDomainError_WrappedCauseStillMatches(t *testing.T) {
	err := fmt.Errorf("write snapshot: %w", ErrIOFailure.WithCause(fs.ErrPermission))

	if !errors.Is(err, ErrIOFailure) {
		t.Error("wrapped error should match ErrIOFailure")
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("wrapped error should match its cause")
	}
	if errors.Is(err, ErrKeyNotFound) {
		t.Error("wrapped error should not match ErrKeyNotFound")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying cause")
	err := NewDomainError("NB-TEST-1000", "wrapper").WithCause(cause)

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	errNoCause := NewDomainError("NB-TEST-1000", "no cause")
	if errors.Unwrap(errNoCause) != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestDomainError_WithDetailsDoesNotMutate(t *testing.T) {
	original := NewDomainError("NB-TEST-1000", "original message")
	withDetails := original.WithDetails("additional details")

	if original.Details != "" {
		t.Error("WithDetails should not modify original error")
	}
	if withDetails.Details != "additional details" {
		t.Errorf("Details = %q, want %q", withDetails.Details, "additional details")
	}
}

func TestIsDomainError(t *testing.T) {
	err := fmt.Errorf("ctx: %w", ErrKeyNotFound.WithDetails("k"))

	if !IsDomainError(err, "") {
		t.Error("IsDomainError(err, \"\") = false, want true")
	}
	if !IsDomainError(err, "NB-KEY-4040") {
		t.Error("IsDomainError(err, NB-KEY-4040) = false, want true")
	}
	if IsDomainError(err, "NB-IO-5000") {
		t.Error("IsDomainError(err, NB-IO-5000) = true, want false")
	}
	if IsDomainError(fmt.Errorf("plain"), "") {
		t.Error("plain error should not be a DomainError")
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := GetErrorCode(ErrMalformedData.WithDetails("line 3")); got != "NB-DATA-4220" {
		t.Errorf("GetErrorCode() = %q, want %q", got, "NB-DATA-4220")
	}
	if got := GetErrorCode(fmt.Errorf("plain")); got != "" {
		t.Errorf("GetErrorCode(plain) = %q, want empty", got)
	}
}
