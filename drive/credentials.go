package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/drivegate/httpclient"
	"github.com/kbukum/drivegate/logger"
	"github.com/kbukum/drivegate/observability"
	"github.com/kbukum/drivegate/version"
)

// State is the credential slot state.
type State int

const (
	StateEmpty State = iota
	StateValid
)

func (s State) String() string {
	if s == StateValid {
		return "VALID"
	}
	return "EMPTY"
}

// Credential is an upstream access token and its expiry.
type Credential struct {
	AccessToken string
	ExpiresAt   time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// CredentialCache holds one access token obtained from the OAuth refresh
// grant and refreshes it on demand. The mutex guards the slot only; the
// token request runs unlocked, so concurrent callers that both find the
// slot stale each refresh and the last writer wins.
type CredentialCache struct {
	cfg     Config
	http    *httpclient.Client
	now     func() time.Time
	log     *logger.Logger
	metrics *observability.Metrics

	mu          sync.Mutex
	slot        *Credential
	lastErr     error
	lastRefresh time.Time

	refreshes atomic.Int64
}

// CacheOption configures a CredentialCache.
type CacheOption func(*CredentialCache)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) CacheOption {
	return func(c *CredentialCache) { c.now = now }
}

// WithMetrics records refresh attempts on m.
func WithMetrics(m *observability.Metrics) CacheOption {
	return func(c *CredentialCache) { c.metrics = m }
}

// NewCredentialCache creates an empty cache for cfg.
func NewCredentialCache(cfg Config, opts ...CacheOption) (*CredentialCache, error) {
	cfg.ApplyDefaults()
	hc, err := httpclient.New(httpclient.Config{
		Timeout: cfg.Timeout,
		Headers: map[string]string{
			"Accept":     "application/json",
			"User-Agent": version.UserAgent(),
		},
	})
	if err != nil {
		return nil, err
	}
	c := &CredentialCache{
		cfg:     cfg,
		http:    hc,
		now:     time.Now,
		log:     logger.Get("drive"),
		metrics: observability.DefaultMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Token implements httpclient.TokenSource. It returns the cached access
// token while it is fresh and refreshes it otherwise. A failed refresh
// leaves the slot untouched and is not retried.
func (c *CredentialCache) Token(ctx context.Context) (string, error) {
	if tok, ok := c.cached(); ok {
		return tok, nil
	}
	if missing := c.cfg.Missing(); len(missing) > 0 {
		return "", notConfigured(missing)
	}

	cred, err := c.refresh(ctx)
	c.refreshes.Add(1)
	c.metrics.RecordCredentialRefresh(ctx, err)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err
		c.log.WithContext(ctx).Warn("Credential refresh failed", failureFields("refresh", err))
		return "", err
	}
	c.slot = cred
	c.lastErr = nil
	c.lastRefresh = c.now()
	c.log.WithContext(ctx).Debug("Credential refreshed", logger.Fields("expires_at", cred.ExpiresAt))
	return cred.AccessToken, nil
}

// Invalidate empties the slot so the next Token call refreshes.
func (c *CredentialCache) Invalidate() {
	c.mu.Lock()
	c.slot = nil
	c.mu.Unlock()
}

// State reports whether a reusable credential is cached.
func (c *CredentialCache) State() State {
	if _, ok := c.cached(); ok {
		return StateValid
	}
	return StateEmpty
}

// Refreshes returns how many refresh attempts were made.
func (c *CredentialCache) Refreshes() int64 {
	return c.refreshes.Load()
}

// LastError returns the error of the most recent refresh, nil after a
// success.
func (c *CredentialCache) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Configured reports whether the OAuth credentials are present.
func (c *CredentialCache) Configured() bool {
	return c.cfg.Configured()
}

func (c *CredentialCache) cached() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slot == nil || c.slot.AccessToken == "" {
		return "", false
	}
	if !c.now().Before(c.slot.ExpiresAt.Add(-c.cfg.RefreshSkew)) {
		return "", false
	}
	return c.slot.AccessToken, true
}

func (c *CredentialCache) refresh(ctx context.Context) (cred *Credential, err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanCredentialRefresh)
	defer func() { observability.EndSpan(span, err) }()

	start := c.now()
	form := url.Values{
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"refresh_token": {c.cfg.RefreshToken},
		"grant_type":    {"refresh_token"},
	}
	resp, err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   c.cfg.TokenURL,
		Body:   form,
	})
	if resp != nil {
		span.SetAttributes(attribute.Int(observability.AttrStatusCode, resp.StatusCode))
	}
	if err != nil {
		return nil, wrapHTTP("token", err)
	}

	var tr tokenResponse
	if err := json.Unmarshal(resp.Body, &tr); err != nil {
		return nil, fmt.Errorf("drive: token: decode response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, ErrEmptyAccessToken
	}
	// expires_in <= 0 yields an already-stale credential, so the next call
	// refreshes again.
	return &Credential{
		AccessToken: tr.AccessToken,
		ExpiresAt:   start.Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}
