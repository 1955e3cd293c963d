package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/kbukum/drivegate/resilience"
)

// errorBodyLimit caps how much of a failed stream is kept on the *Error.
const errorBodyLimit = 64 << 10

// Client sends requests with default headers, pluggable auth and optional
// pacing. Requests are never retried.
type Client struct {
	cfg      Config
	buffered *http.Client
	stream   *http.Client // no overall timeout
	limiter  *resilience.RateLimiter
}

// New validates cfg and builds a Client sharing one transport between
// buffered and streaming calls.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.ResponseHeaderTimeout = cfg.ResponseHeaderTimeout

	c := &Client{
		cfg:      cfg,
		buffered: &http.Client{Transport: tr, Timeout: cfg.Timeout},
		stream:   &http.Client{Transport: tr},
	}
	if cfg.RateLimiter != nil {
		c.limiter = resilience.NewRateLimiter(*cfg.RateLimiter)
	}
	return c, nil
}

// Do sends req and reads the whole body. On a non-2xx status it returns the
// Response together with a KindStatus *Error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.send(ctx, c.buffered, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, kindError(KindTransport, fmt.Errorf("read response body: %w", err))
	}
	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}
	if serr := statusError(resp.StatusCode, body); serr != nil {
		return out, serr
	}
	return out, nil
}

// DoStream sends req and hands back the unread body, which the caller must
// close. On a non-2xx status the body is closed and up to 64KiB of it is
// kept on the returned *Error.
func (c *Client) DoStream(ctx context.Context, req Request) (*StreamResponse, error) {
	resp, err := c.send(ctx, c.stream, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		head, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		resp.Body.Close()
		return nil, statusError(resp.StatusCode, head)
	}
	return &StreamResponse{StatusCode: resp.StatusCode, Header: resp.Header, Body: resp.Body}, nil
}

// Unwrap exposes the buffered *http.Client.
func (c *Client) Unwrap() *http.Client { return c.buffered }

func (c *Client) send(ctx context.Context, hc *http.Client, req Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, kindError(KindTimeout, err)
		}
	}
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	resp, err := hc.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, kindError(KindTimeout, err)
		}
		return nil, kindError(KindTransport, err)
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	body, contentType, err := bodyReader(req.Body)
	if err != nil {
		return nil, requestError("encode body: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.resolve(req.Path), body)
	if err != nil {
		return nil, requestError("create request: %w", err)
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, vs := range req.Query {
			q[k] = vs
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	h := httpReq.Header
	for k, v := range c.cfg.Headers {
		h.Set(k, v)
	}
	for k, vs := range req.Header {
		h[http.CanonicalHeaderKey(k)] = vs
	}
	if contentType != "" && h.Get("Content-Type") == "" {
		h.Set("Content-Type", contentType)
	}

	auth := c.cfg.Auth
	if req.Auth != nil {
		auth = req.Auth
	}
	if err := auth.apply(httpReq); err != nil {
		return nil, err
	}
	return httpReq, nil
}

// resolve joins path to BaseURL unless path is already absolute.
func (c *Client) resolve(path string) string {
	if c.cfg.BaseURL == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func bodyReader(body any) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	case url.Values:
		return strings.NewReader(v.Encode()), "application/x-www-form-urlencoded", nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), "application/json", nil
}
