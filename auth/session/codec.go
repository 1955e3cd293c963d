// Package session issues the browser session used to gate the listing API.
//
// A session is an HS256 JWT carrying {"authenticated": true} with a fixed
// seven day lifetime, delivered as the auth_token cookie after the shared
// access password is presented to a Gate.
package session

import (
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/drivegate/auth/jwt"
	"github.com/kbukum/drivegate/errors"
)

// TTL is the lifetime of a session token and its cookie.
const TTL = 7 * 24 * time.Hour

// Claims is the session token payload.
type Claims struct {
	gojwt.RegisteredClaims
	Authenticated bool `json:"authenticated"`
}

// Stamp implements jwt.Stamper.
func (c *Claims) Stamp(issuedAt, expiresAt time.Time, issuer string) {
	c.IssuedAt = gojwt.NewNumericDate(issuedAt)
	c.ExpiresAt = gojwt.NewNumericDate(expiresAt)
	if issuer != "" {
		c.Issuer = issuer
	}
}

// Codec signs and verifies session tokens. A Codec built without a secret
// refuses to issue and verifies nothing.
type Codec struct {
	svc *jwt.Service[*Claims]
}

// Option configures a Codec.
type Option func(*jwt.Config)

// WithClock overrides time.Now for issuing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *jwt.Config) { c.Now = now }
}

// NewCodec creates a Codec keyed by secret.
func NewCodec(secret string, opts ...Option) *Codec {
	cfg := jwt.Config{Secret: secret, Algorithm: jwt.HS256, TTL: TTL}
	for _, opt := range opts {
		opt(&cfg)
	}
	svc, err := jwt.NewService(cfg, func() *Claims { return &Claims{} })
	if err != nil {
		return &Codec{}
	}
	return &Codec{svc: svc}
}

// Configured reports whether the codec has a signing secret.
func (c *Codec) Configured() bool {
	return c.svc != nil
}

// Issue returns a signed session token valid for TTL.
func (c *Codec) Issue() (string, error) {
	if c.svc == nil {
		return "", errors.Configuration("session secret")
	}
	token, err := c.svc.Sign(&Claims{Authenticated: true})
	if err != nil {
		return "", errors.Internal(err)
	}
	return token, nil
}

// Verify reports whether token is correctly signed with HS256, unexpired and
// asserts authenticated=true.
func (c *Codec) Verify(token string) bool {
	_, err := c.ValidateToken(token)
	return err == nil
}

// ValidateToken implements auth.TokenValidator, returning *Claims.
func (c *Codec) ValidateToken(token string) (any, error) {
	if c.svc == nil {
		return nil, errors.Configuration("session secret")
	}
	if token == "" {
		return nil, errors.Unauthenticated()
	}
	claims, err := c.svc.Parse(token)
	if err != nil {
		return nil, errors.Unauthenticated().WithCause(err)
	}
	if !claims.Authenticated {
		return nil, errors.Unauthenticated()
	}
	return claims, nil
}

// Issue signs a session token with secretKey.
func Issue(secretKey string) (string, error) {
	return NewCodec(secretKey).Issue()
}

// Verify checks token against secretKey.
func Verify(token, secretKey string) bool {
	return NewCodec(secretKey).Verify(token)
}
