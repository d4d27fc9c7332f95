package errors

import (
	"errors"
	"fmt"
)

// Domain-specific error types
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicateEntry indicates a unique constraint violation
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthenticated indicates the caller has no resolved user identity
	ErrUnauthenticated = errors.New("user not authenticated")

	// ErrUpstream indicates the remote mail provider failed
	ErrUpstream = errors.New("upstream provider failure")

	// ErrStorage indicates the local store failed
	ErrStorage = errors.New("storage failure")

	// ErrMessageNotFound indicates the message was not found
	ErrMessageNotFound = errors.New("message not found")

	// ErrSyncAborted indicates a sync run gave up after exhausting retries
	ErrSyncAborted = errors.New("sync aborted after exhausting retries")
)

// Error codes for API responses
const (
	CodeNotFound        = "NOT_FOUND"
	CodeDuplicateEntry  = "DUPLICATE_ENTRY"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeUpstreamError   = "UPSTREAM_ERROR"
	CodeStorageError    = "STORAGE_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
)

// AppError represents an application error with context
type AppError struct {
	Err     error
	Message string
	Code    string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(err error, message string, code string) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Upstream marks err as a remote provider failure while keeping the cause.
func Upstream(message string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", message, ErrUpstream, err)
}

// Storage marks err as a local store failure while keeping the cause.
func Storage(message string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", message, ErrStorage, err)
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrMessageNotFound)
}

// IsUnauthenticated checks if the error is an authentication error
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

// IsUpstream checks if the error came from the remote provider
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}

// IsStorage checks if the error came from the local store
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage)
}

// GetErrorCode returns the appropriate error code for an error
func GetErrorCode(err error) string {
	switch {
	case IsNotFound(err):
		return CodeNotFound
	case errors.Is(err, ErrDuplicateEntry):
		return CodeDuplicateEntry
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case IsUnauthenticated(err):
		return CodeUnauthenticated
	case IsUpstream(err), errors.Is(err, ErrSyncAborted):
		return CodeUpstreamError
	case IsStorage(err):
		return CodeStorageError
	default:
		return CodeInternalError
	}
}
