package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeUnauthenticated covers every credential and session failure:
	// bad password, unknown user, rate-limited caller, missing or expired
	// session. They are deliberately indistinguishable to callers.
	ErrCodeUnauthenticated ErrorCode = "unauthenticated"
	// ErrCodeAccessDenied indicates the principal lacks access to the
	// requested cluster. Distinct from authentication failure.
	ErrCodeAccessDenied ErrorCode = "access_denied"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict indicates a conflict with existing data.
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeProviderConfig indicates the selected auth mode is missing its
	// required configuration. Fatal at startup, never per-request.
	ErrCodeProviderConfig ErrorCode = "provider_config"
	// ErrCodeOIDCProtocol indicates a failure talking to or validating the
	// OIDC identity provider. Surfaced to callers as a failed login.
	ErrCodeOIDCProtocol ErrorCode = "oidc_protocol"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError represents a structured application error with a code, message, and
// optional cause. It supports error wrapping and unwrapping for use with
// errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional, for validation errors)
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Unauthenticated creates a new Unauthenticated error.
func Unauthenticated(message string) *AppError {
	return &AppError{Code: ErrCodeUnauthenticated, Message: message}
}

// AccessDenied creates a new AccessDenied error.
func AccessDenied(message string) *AppError {
	return &AppError{Code: ErrCodeAccessDenied, Message: message}
}

// AccessDeniedf creates a new AccessDenied error with formatted message.
func AccessDeniedf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeAccessDenied, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// ProviderConfig creates a new ProviderConfig error.
func ProviderConfig(message string) *AppError {
	return &AppError{Code: ErrCodeProviderConfig, Message: message}
}

// ProviderConfigf creates a new ProviderConfig error with formatted message.
func ProviderConfigf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeProviderConfig, Message: fmt.Sprintf(format, args...)}
}

// OIDCProtocol creates a new OIDCProtocol error wrapping its cause.
func OIDCProtocol(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeOIDCProtocol, Message: message, Cause: cause}
}

// Internal creates a new Internal error wrapping its cause.
func Internal(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message, Cause: cause}
}

// CodeOf extracts the ErrorCode from an error chain. Unrecognized errors map
// to ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether the error chain carries an AppError with the code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
