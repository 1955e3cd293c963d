package errors

import "net/http"

// ErrorCode is the machine-readable code sent to clients.
type ErrorCode string

const (
	// ErrCodeInvalidInput is a malformed body, path or query parameter.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeRateLimited is a client over its login allowance.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"

	// ErrCodeUnauthorized is a rejected password.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeUnauthenticated is a missing, invalid or expired session.
	// Clients render a login prompt for this code.
	ErrCodeUnauthenticated ErrorCode = "UNAUTHENTICATED"

	// ErrCodeConfiguration is a missing secret or Drive credential.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodeExternalService is any failure of Drive or its token endpoint.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	// ErrCodeTimeout is an upstream call cut short by a deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInternal is anything else.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var codeStatus = map[ErrorCode]int{
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeUnauthenticated: http.StatusUnauthorized,
	ErrCodeConfiguration:   http.StatusInternalServerError,
	ErrCodeExternalService: http.StatusBadGateway,
	ErrCodeTimeout:         http.StatusGatewayTimeout,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// Status returns the HTTP status a code renders with. Unknown codes are 500.
func (c ErrorCode) Status() int {
	if s, ok := codeStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// IsRetryableCode reports whether a client may repeat the request as is.
func IsRetryableCode(code ErrorCode) bool {
	switch code {
	case ErrCodeRateLimited, ErrCodeExternalService, ErrCodeTimeout:
		return true
	default:
		return false
	}
}
