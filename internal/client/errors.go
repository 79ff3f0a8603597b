package client

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes client failures.
type ErrorCode int

const (
	ErrorUnknown ErrorCode = iota
	// ErrorNetwork covers transport failures, including cancelled contexts.
	ErrorNetwork
	// ErrorDecode means the response body was not what the endpoint promises.
	ErrorDecode
	// ErrorAPI is a response with status >= 400.
	ErrorAPI
	// ErrorInvalidInput is raised before any request is sent.
	ErrorInvalidInput
)

// String returns the string representation of an ErrorCode.
func (e ErrorCode) String() string {
	switch e {
	case ErrorUnknown:
		return "unknown"
	case ErrorNetwork:
		return "network"
	case ErrorDecode:
		return "decode"
	case ErrorAPI:
		return "api"
	case ErrorInvalidInput:
		return "invalid_input"
	default:
		return fmt.Sprintf("unknown_code_%d", e)
	}
}

// Error is a structured client error with code and context.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the wrapped error for errors.Unwrap support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is matches on Code, so errors.Is(err, &Error{Code: ErrorAPI}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Wrapped: err}
}

func codeOf(err error) ErrorCode {
	var ce *Error
	if !errors.As(err, &ce) {
		return ErrorUnknown
	}
	return ce.Code
}

// IsNetworkError reports whether err is a transport failure.
func IsNetworkError(err error) bool {
	return err != nil && codeOf(err) == ErrorNetwork
}

// IsAPIError reports whether the backend answered with an error status.
func IsAPIError(err error) bool {
	return err != nil && codeOf(err) == ErrorAPI
}

// IsInvalidInput reports whether err was raised before sending a request.
func IsInvalidInput(err error) bool {
	return err != nil && codeOf(err) == ErrorInvalidInput
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Status
	}
	return 0
}
