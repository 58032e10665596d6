package remote

import (
	"errors"
	"fmt"
)

// ErrorCategory is the normalized failure taxonomy for remote calls. The
// orchestrators treat every category the same way (fall back locally); the
// categories drive retry decisions, metrics and logs.
type ErrorCategory string

const (
	// CategoryTimeout: the attempt exceeded its deadline.
	CategoryTimeout ErrorCategory = "timeout"

	// CategoryNetwork: the connection could not be made or was dropped.
	CategoryNetwork ErrorCategory = "network"

	// CategoryServerError: a 5xx or other unexpected non-2xx status.
	CategoryServerError ErrorCategory = "server_error"

	// CategoryClientRejected: a 4xx status. Never retried.
	CategoryClientRejected ErrorCategory = "client_rejected"

	// CategoryBadData: a 2xx response whose body is not usable.
	CategoryBadData ErrorCategory = "bad_data"

	// CategoryCircuitOpen: the breaker is open and either the probe failed or
	// another probe was already in flight.
	CategoryCircuitOpen ErrorCategory = "circuit_open"

	// CategoryCanceled: the caller abandoned the call.
	CategoryCanceled ErrorCategory = "canceled"

	// CategoryInternal: the request could not be built.
	CategoryInternal ErrorCategory = "internal"
)

// Error wraps a remote failure with its category.
type Error struct {
	Category   ErrorCategory
	Endpoint   string
	StatusCode int
	Message    string
	Underlying error
	Retryable  bool
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("remote %s [%s]: %s: %v", e.Endpoint, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("remote %s [%s]: %s", e.Endpoint, e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// NewError creates a categorized error. Timeouts, network failures and server
// errors are retryable; everything else is not.
func NewError(category ErrorCategory, endpoint, message string, underlying error) *Error {
	return &Error{
		Category:   category,
		Endpoint:   endpoint,
		Message:    message,
		Underlying: underlying,
		Retryable: category == CategoryTimeout ||
			category == CategoryNetwork ||
			category == CategoryServerError,
	}
}

func newStatusError(category ErrorCategory, endpoint string, status int, message string) *Error {
	e := NewError(category, endpoint, message, nil)
	e.StatusCode = status
	return e
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Retryable
	}
	return false
}

// GetCategory extracts the category, defaulting to CategoryInternal.
func GetCategory(err error) ErrorCategory {
	var re *Error
	if errors.As(err, &re) {
		return re.Category
	}
	return CategoryInternal
}
