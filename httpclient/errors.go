package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind says where an outbound request failed.
type Kind int

const (
	// KindStatus means the server answered with a non-2xx status.
	KindStatus Kind = iota
	// KindTransport covers refused connections, DNS failures, resets and
	// truncated bodies.
	KindTransport
	// KindTimeout means a deadline or cancellation cut the request short.
	KindTimeout
	// KindCredential means the TokenSource could not produce a token, so
	// nothing was sent.
	KindCredential
	// KindRequest means the request could not be built.
	KindRequest
)

var kindNames = [...]string{
	KindStatus:     "status",
	KindTransport:  "transport",
	KindTimeout:    "timeout",
	KindCredential: "credential",
	KindRequest:    "request",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Error is returned by Do and DoStream for every failure.
type Error struct {
	Kind Kind
	// StatusCode is set for KindStatus only.
	StatusCode int
	// Body holds the response body of a KindStatus error, capped for streams.
	Body []byte
	// Err is the cause for every other kind.
	Err error
}

func (e *Error) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("httpclient: %s %d %s", e.Kind, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("httpclient: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Temporary reports whether repeating the request could succeed: transport
// failures, timeouts, 429 and 5xx answers.
func (e *Error) Temporary() bool {
	switch e.Kind {
	case KindTransport, KindTimeout:
		return true
	case KindStatus:
		return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
	default:
		return false
	}
}

// statusError returns nil for a 2xx status.
func statusError(code int, body []byte) *Error {
	if code >= 200 && code < 300 {
		return nil
	}
	return &Error{Kind: KindStatus, StatusCode: code, Body: body}
}

func kindError(k Kind, err error) *Error { return &Error{Kind: k, Err: err} }

func requestError(format string, args ...any) *Error {
	return kindError(KindRequest, fmt.Errorf(format, args...))
}

func as(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// KindOf returns the Kind of the *Error in err's chain and false if there
// is none.
func KindOf(err error) (Kind, bool) {
	if e, ok := as(err); ok {
		return e.Kind, true
	}
	return 0, false
}

// StatusCode returns the upstream HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if e, ok := as(err); ok {
		return e.StatusCode
	}
	return 0
}

// IsTimeout reports a KindTimeout error.
func IsTimeout(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindTimeout
}

// IsCredential reports a KindCredential error.
func IsCredential(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindCredential
}

// IsTemporary reports whether err is an *Error whose Temporary is true.
func IsTemporary(err error) bool {
	e, ok := as(err)
	return ok && e.Temporary()
}
