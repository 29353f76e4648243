// Package errors defines the service error type shared by all HTTP handlers.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes grouped by the failure taxonomy: configuration, validation,
// upstream, and not-found.
const (
	CodeConfig     = "CONFIG_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeUpstream   = "UPSTREAM_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodeInternal   = "INTERNAL_ERROR"
)

// ServiceError carries an HTTP status alongside a client-safe message.
// Handlers serialize it as {"error": Message, "details": Details}.
type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    any
	Err        error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// WithDetails attaches client-visible detail to the error.
func (e *ServiceError) WithDetails(details any) *ServiceError {
	e.Details = details
	return e
}

// WithCause records the underlying error without exposing it to clients.
func (e *ServiceError) WithCause(err error) *ServiceError {
	e.Err = err
	return e
}

// New constructs a ServiceError with an explicit code and status.
func New(code, message string, status int) *ServiceError {
	return &ServiceError{Code: code, Message: message, HTTPStatus: status}
}

// BadRequest reports a validation failure.
func BadRequest(message string) *ServiceError {
	return New(CodeValidation, message, http.StatusBadRequest)
}

// Unauthorized reports a missing or malformed credential.
func Unauthorized(message string) *ServiceError {
	return New(CodeValidation, message, http.StatusUnauthorized)
}

// NotFound reports a missing resource.
func NotFound(message string) *ServiceError {
	return New(CodeNotFound, message, http.StatusNotFound)
}

// Conflict reports a write rejected by a concurrency check.
func Conflict(message string) *ServiceError {
	return New(CodeConflict, message, http.StatusConflict)
}

// ConfigMissing reports an absent configuration value. Status varies by
// route: some of the original handlers answered 400, the rest 500.
func ConfigMissing(message string, status int) *ServiceError {
	return New(CodeConfig, message, status)
}

// Internal reports a generic server-side failure.
func Internal(message string) *ServiceError {
	return New(CodeInternal, message, http.StatusInternalServerError)
}

// Upstream reports a failed call to an upstream API. The status is the
// one this service answers with, not necessarily the upstream's.
func Upstream(message string, status int) *ServiceError {
	return New(CodeUpstream, message, status)
}

// AsService extracts a *ServiceError from err's chain, or nil.
func AsService(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return nil
}

// Status returns the HTTP status for err, defaulting to 500.
func Status(err error) int {
	if se := AsService(err); se != nil && se.HTTPStatus != 0 {
		return se.HTTPStatus
	}
	return http.StatusInternalServerError
}
