package drive

import (
	"errors"
	"fmt"

	apperrors "github.com/kbukum/drivegate/errors"
	"github.com/kbukum/drivegate/httpclient"
	"github.com/kbukum/drivegate/logger"
)

// ErrEmptyAccessToken is returned when the token endpoint answers 2xx
// without an access_token.
var ErrEmptyAccessToken = errors.New("drive: token response has no access_token")

// UpstreamError is a non-2xx answer from Drive or the token endpoint. Body
// holds at most 64KiB of the response and is for logs only.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       []byte

	cause error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("drive: %s: upstream status %d", e.Op, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error { return e.cause }

// IsUpstream reports whether err carries an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// ToAppError maps a drive error onto the application taxonomy: configuration
// errors pass through, everything else is an upstream failure.
func ToAppError(err error) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	return apperrors.ExternalServiceError("drive", err)
}

func notConfigured(missing []string) *apperrors.AppError {
	return apperrors.Configuration(fmt.Sprintf("%v", missing))
}

// wrapHTTP converts an httpclient failure for op into an UpstreamError when
// a status is known, or a wrapped transport error otherwise.
func wrapHTTP(op string, err error) error {
	if err == nil {
		return nil
	}
	var herr *httpclient.Error
	if errors.As(err, &herr) && herr.StatusCode > 0 {
		return &UpstreamError{Op: op, StatusCode: herr.StatusCode, Body: herr.Body, cause: herr}
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return fmt.Errorf("drive: %s: %w", op, err)
}

// Failure classes reported in the "failure" log field.
const (
	failureConfiguration = "configuration"
	failureCredential    = "credential"
	failureStatus        = "status"
	failureTimeout       = "timeout"
	failureTransport     = "transport"
)

func failureKind(err error) string {
	switch {
	case apperrors.IsAppError(err):
		return failureConfiguration
	case httpclient.IsCredential(err):
		return failureCredential
	case IsUpstream(err):
		return failureStatus
	case httpclient.IsTimeout(err):
		return failureTimeout
	default:
		return failureTransport
	}
}

// failureFields extends logger.ErrorFields with the failure class and
// whether a retry could succeed.
func failureFields(op string, err error) map[string]any {
	fields := logger.ErrorFields(op, err)
	fields["failure"] = failureKind(err)
	fields["temporary"] = httpclient.IsTemporary(err)
	return fields
}
