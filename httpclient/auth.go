package httpclient

import (
	"context"
	"net/http"
)

// TokenSource yields a bearer token per request. It may refresh and must be
// safe for concurrent use.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(ctx context.Context) (string, error)

func (f TokenSourceFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// AuthConfig sets the Authorization header. Source, when set, is asked on
// every request; otherwise the static Token is sent.
type AuthConfig struct {
	Token  string
	Source TokenSource
}

// BearerAuth sends a fixed token.
func BearerAuth(token string) *AuthConfig { return &AuthConfig{Token: token} }

// BearerSourceAuth sends whatever src returns.
func BearerSourceAuth(src TokenSource) *AuthConfig { return &AuthConfig{Source: src} }

// apply is a no-op on a nil or empty config. A Source failure becomes a
// KindCredential *Error and nothing is sent.
func (a *AuthConfig) apply(req *http.Request) error {
	if a == nil {
		return nil
	}
	token := a.Token
	if a.Source != nil {
		var err error
		if token, err = a.Source.Token(req.Context()); err != nil {
			return kindError(KindCredential, err)
		}
	}
	if token == "" {
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}
