package errors

import "fmt"

// AppError is an error that knows how to present itself over HTTP.
// Message and Details are client-visible; Cause is for logs only.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets Cause and returns e.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail adds a client-visible detail and returns e.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// WithStatus overrides the status derived from the code and returns e.
func (e *AppError) WithStatus(status int) *AppError {
	e.HTTPStatus = status
	return e
}

// New creates an AppError whose status and retryability follow from code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: code.Status(),
		Retryable:  IsRetryableCode(code),
	}
}

// RateLimited is a client over its allowance.
func RateLimited() *AppError {
	return New(ErrCodeRateLimited, "Too many requests. Please wait a moment and try again.")
}

// Validation is a malformed request; message names what was wrong.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message)
}

// Unauthorized is a rejected credential such as a wrong password.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "Authentication required."
	}
	return New(ErrCodeUnauthorized, reason)
}

// Unauthenticated is a request without a valid session or capability.
// The message equals the code so clients can match either.
func Unauthenticated() *AppError {
	return New(ErrCodeUnauthenticated, string(ErrCodeUnauthenticated))
}

// Configuration is a missing secret or credential. setting is kept in Cause
// only and never sent to clients.
func Configuration(setting string) *AppError {
	return New(ErrCodeConfiguration, "Server configuration error").
		WithCause(fmt.Errorf("missing configuration: %s", setting))
}

// Internal wraps an unexpected failure.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred. Please try again or contact support.").
		WithCause(cause)
}

// ExternalServiceError is a failure of service; the upstream detail stays
// in cause.
func ExternalServiceError(service string, cause error) *AppError {
	return New(ErrCodeExternalService, fmt.Sprintf("The %s service encountered an error. Please try again.", service)).
		WithDetail("service", service).
		WithCause(cause)
}
