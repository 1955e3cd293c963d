package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/drivegate/httpclient"
	"github.com/kbukum/drivegate/logger"
	"github.com/kbukum/drivegate/observability"
	"github.com/kbukum/drivegate/resilience"
	"github.com/kbukum/drivegate/version"
)

const (
	listFields     = "nextPageToken, files(id, name, mimeType, size, modifiedTime, thumbnailLink)"
	metadataFields = "id,name,mimeType,size"
	listOrder      = "folder, name"
)

// Operation names used in errors, metrics and logs.
const (
	OpList     = "list"
	OpMetadata = "metadata"
	OpDownload = "download"
)

// Client calls the Drive v3 REST API with a bearer token from a
// CredentialCache. It never retries; a 401 from Drive empties the cache so
// the next call refreshes.
type Client struct {
	cfg     Config
	http    *httpclient.Client
	creds   *CredentialCache
	log     *logger.Logger
	metrics *observability.Metrics
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientMetrics records upstream calls on m.
func WithClientMetrics(m *observability.Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a Drive client that authenticates with creds.
func NewClient(cfg Config, creds *CredentialCache, opts ...ClientOption) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hcfg := httpclient.Config{
		BaseURL:               cfg.BaseURL,
		Timeout:               cfg.Timeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		Auth:                  httpclient.BearerSourceAuth(creds),
		Headers:               map[string]string{"User-Agent": version.UserAgent()},
	}
	if cfg.RequestsPerSecond > 0 {
		rl := resilience.RateLimiterConfig{
			Name:  "drive",
			Rate:  cfg.RequestsPerSecond,
			Burst: int(cfg.RequestsPerSecond) + 1,
		}
		hcfg.RateLimiter = &rl
	}
	hc, err := httpclient.New(hcfg)
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:     cfg,
		http:    hc,
		creds:   creds,
		log:     logger.Get("drive"),
		metrics: observability.DefaultMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Credentials returns the cache backing the client.
func (c *Client) Credentials() *CredentialCache {
	return c.creds
}

// RootID returns the folder id the root alias resolves to.
func (c *Client) RootID() string {
	return c.cfg.resolveFolder(RootAlias)
}

// ListChildren lists one page of the non-trashed children of folderID,
// folders first. folderID "root" resolves to the configured root.
func (c *Client) ListChildren(ctx context.Context, folderID, pageToken string) (list *FileList, err error) {
	id := c.cfg.resolveFolder(folderID)
	ctx, span := observability.StartSpan(ctx, observability.SpanListChildren,
		attribute.String(observability.AttrFolderID, id))
	defer func() { observability.EndSpan(span, err) }()

	query := url.Values{
		"q":                         {fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(id))},
		"fields":                    {listFields},
		"pageSize":                  {strconv.Itoa(c.cfg.PageSize)},
		"supportsAllDrives":         {"true"},
		"includeItemsFromAllDrives": {"true"},
		"orderBy":                   {listOrder},
	}
	if pageToken != "" {
		query.Set("pageToken", pageToken)
	}

	list = &FileList{}
	if err := c.getJSON(ctx, OpList, "/files", query, list); err != nil {
		return nil, err
	}
	if list.Files == nil {
		list.Files = []File{}
	}
	return list, nil
}

// GetMetadata fetches id, name, mimeType and size of one object.
func (c *Client) GetMetadata(ctx context.Context, objectID string) (f *File, err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanGetMetadata,
		attribute.String(observability.AttrObjectID, objectID))
	defer func() { observability.EndSpan(span, err) }()

	f = &File{}
	query := url.Values{
		"fields":            {metadataFields},
		"supportsAllDrives": {"true"},
	}
	if err := c.getJSON(ctx, OpMetadata, "/files/"+pathEscape(objectID), query, f); err != nil {
		return nil, err
	}
	return f, nil
}

// OpenDownload starts streaming the content of objectID. rangeHeader is
// forwarded verbatim when non-empty. The returned body is live; the caller
// must close it.
func (c *Client) OpenDownload(ctx context.Context, objectID, rangeHeader string) (d *Download, err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanOpenDownload,
		attribute.String(observability.AttrObjectID, objectID),
		attribute.String(observability.AttrRange, rangeHeader))
	defer func() { observability.EndSpan(span, err) }()

	req := httpclient.Request{
		Method: http.MethodGet,
		Path:   "/files/" + pathEscape(objectID),
		Query: url.Values{
			"alt":               {"media"},
			"supportsAllDrives": {"true"},
		},
	}
	if rangeHeader != "" {
		req.Header = http.Header{"Range": {rangeHeader}}
	}

	start := time.Now()
	resp, err := c.http.DoStream(ctx, req)
	err = c.upstreamErr(ctx, OpDownload, err)
	status := statusOf(err)
	if resp != nil {
		status = resp.StatusCode
	}
	c.metrics.RecordUpstream(ctx, OpDownload, status, err, time.Since(start))
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int(observability.AttrStatusCode, resp.StatusCode))
	return &Download{StatusCode: resp.StatusCode, Header: resp.Header, Body: resp.Body}, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	start := time.Now()
	resp, err := c.http.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: path, Query: query})
	err = c.upstreamErr(ctx, op, err)
	if err == nil {
		if jerr := json.Unmarshal(resp.Body, out); jerr != nil {
			err = fmt.Errorf("drive: %s: decode response: %w", op, jerr)
		}
	}
	status := statusOf(err)
	if resp != nil {
		status = resp.StatusCode
	}
	c.metrics.RecordUpstream(ctx, op, status, err, time.Since(start))
	return err
}

func (c *Client) upstreamErr(ctx context.Context, op string, err error) error {
	err = wrapHTTP(op, err)
	if err == nil {
		return nil
	}
	if statusOf(err) == http.StatusUnauthorized {
		c.creds.Invalidate()
	}
	c.log.WithContext(ctx).Warn("Drive call failed", failureFields(op, err))
	return err
}

func statusOf(err error) int {
	if ue, ok := err.(*UpstreamError); ok {
		return ue.StatusCode
	}
	return 0
}

// escapeQuery escapes a value for a single-quoted Drive query literal.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

func pathEscape(id string) string {
	return url.PathEscape(id)
}
