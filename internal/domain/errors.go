package domain

import (
	"errors"
	"fmt"
)

// Predefined domain errors.
var (
	// ErrNotFound means the referenced session does not exist or has expired.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput means the request was rejected before touching any state.
	ErrInvalidInput = errors.New("invalid input")
	// ErrGenerationFailed means the external generation backend failed or timed out.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrInternal is an unspecified server-side failure.
	ErrInternal = errors.New("internal error")
)

// DomainError pairs a machine-readable code with a user-presentable message
// while wrapping the sentinel that classifies it.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface (used for logs and internal wrapping).
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UserMessage returns the user-facing message without internal detail.
func (e *DomainError) UserMessage() string {
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a not-found error for a named resource.
func NewNotFoundError(resourceType, id string) error {
	return &DomainError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s '%s' not found", resourceType, id),
		Err:     ErrNotFound,
	}
}

// NewInvalidInputError creates a validation error.
func NewInvalidInputError(message string) error {
	return &DomainError{
		Code:    "INVALID_INPUT",
		Message: message,
		Err:     ErrInvalidInput,
	}
}

// NewGenerationError wraps a generation backend failure. The cause stays
// internal; callers only see that generation failed.
func NewGenerationError(err error) error {
	return &DomainError{
		Code:    "GENERATION_FAILED",
		Message: "the assistant could not produce a response",
		Err:     fmt.Errorf("%w: %v", ErrGenerationFailed, err),
	}
}

// NewInternalError wraps an unexpected failure without exposing detail.
func NewInternalError(err error) error {
	return &DomainError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Err:     fmt.Errorf("%w: %v", ErrInternal, err),
	}
}

// IsNotFound reports whether err classifies as not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput reports whether err classifies as a validation failure.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsGenerationFailed reports whether err classifies as a backend failure.
func IsGenerationFailed(err error) bool {
	return errors.Is(err, ErrGenerationFailed)
}

// IsInternalError reports whether err classifies as an internal failure.
func IsInternalError(err error) bool {
	return errors.Is(err, ErrInternal)
}
