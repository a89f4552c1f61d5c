// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Interval errors
	ErrIntervalMalformed = &Error{Code: "INTERVAL_MALFORMED", Message: "interval is not a <date>_<date> pair"}
	ErrIntervalOrder     = &Error{Code: "INTERVAL_ORDER", Message: "interval start date is after end date"}

	// Lookup errors
	ErrTickerNotFound  = &Error{Code: "TICKER_NOT_FOUND", Message: "ticker not found"}
	ErrSessionNotFound = &Error{Code: "SESSION_NOT_FOUND", Message: "session not found"}
	ErrRouteNotFound   = &Error{Code: "ROUTE_NOT_FOUND", Message: "no route matches location"}

	// Fetch errors
	ErrFetchFailed  = &Error{Code: "FETCH_FAILED", Message: "fetch failed"}
	ErrFetchTimeout = &Error{Code: "FETCH_TIMEOUT", Message: "fetch timeout"}

	// Request errors
	ErrInvalidRequest = &Error{Code: "INVALID_REQUEST", Message: "invalid request"}
	ErrUnauthorized   = &Error{Code: "UNAUTHORIZED", Message: "missing or invalid API key"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)
