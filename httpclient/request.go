package httpclient

import (
	"io"
	"net/http"
	"net/url"
)

// Request is one outbound call. Path is joined to Config.BaseURL unless it
// is already absolute.
//
// Body may be nil, an io.Reader, []byte, string, url.Values (sent as a
// form) or any other value, which is sent as JSON.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   any
	// Auth replaces Config.Auth for this request when set.
	Auth *AuthConfig
}

// Response is a fully read answer from Do.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool { return r.StatusCode/100 == 2 }

// StreamResponse is a live answer from DoStream. The caller owns Body.
type StreamResponse struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// Close closes Body.
func (r *StreamResponse) Close() error {
	if r.Body == nil {
		return nil
	}
	return r.Body.Close()
}
