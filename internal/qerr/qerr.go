package qerr

import (
	"errors"
	"fmt"
)

// Error codes
const (
	CodeTransport    = "TRANSPORT_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeServer       = "SERVER_ERROR"
	CodeEnvelope     = "ENVELOPE_ERROR"
	CodeBadRequest   = "BAD_REQUEST"
)

// Error is the single error type every backend failure is normalized to.
// Status is the HTTP status code when one was received, 0 otherwise.
type Error struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transport wraps a network-level failure (dial, timeout, body read).
func Transport(err error) *Error {
	return &Error{
		Code:    CodeTransport,
		Message: "request failed",
		Err:     err,
	}
}

// Unauthorized reports a 401/403 response.
func Unauthorized(status int, message string) *Error {
	if message == "" {
		message = "not authorized"
	}
	return &Error{Code: CodeUnauthorized, Message: message, Status: status}
}

// NotFound reports a 404 response.
func NotFound(message string) *Error {
	if message == "" {
		message = "resource not found"
	}
	return &Error{Code: CodeNotFound, Message: message, Status: 404}
}

// Validation reports a 4xx response carrying a validation message. For 422
// responses the message is the flattened field-error list.
func Validation(status int, message string) *Error {
	return &Error{Code: CodeValidation, Message: message, Status: status}
}

// Server reports a 5xx response.
func Server(status int, message string) *Error {
	if message == "" {
		message = "server error"
	}
	return &Error{Code: CodeServer, Message: message, Status: status}
}

// Envelope reports a 2xx response whose envelope carried success=false or
// could not be decoded.
func Envelope(message string) *Error {
	if message == "" {
		message = "request was not successful"
	}
	return &Error{Code: CodeEnvelope, Message: message}
}

// BadRequest reports a client-side precondition failure before any request
// was made (missing token, invalid argument).
func BadRequest(message string) *Error {
	return &Error{Code: CodeBadRequest, Message: message}
}

func hasCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsUnauthorized reports whether err is an auth failure.
func IsUnauthorized(err error) bool { return hasCode(err, CodeUnauthorized) }

// IsNotFound reports whether err is a missing-resource failure.
func IsNotFound(err error) bool { return hasCode(err, CodeNotFound) }

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return hasCode(err, CodeValidation) }

// IsTransport reports whether err is a network-level failure.
func IsTransport(err error) bool { return hasCode(err, CodeTransport) }
