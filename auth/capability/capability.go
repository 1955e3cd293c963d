// Package capability issues and validates per-object download capabilities.
//
// A capability is the string
//
//	base64url(json({"id": objectID, "exp": unixMillis})) + "." + base64url(HMAC-SHA256(secret, payloadSegment))
//
// with unpadded URL-safe base64. The MAC covers the ASCII bytes of the
// encoded payload segment, not the decoded JSON. Tokens are stateless and
// cannot be revoked before they expire.
package capability

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Separator joins the payload and signature segments.
const Separator = "."

// DefaultTTL is the lifetime used when none is given.
const DefaultTTL = 24 * time.Hour

// ErrNoSecret is returned when issuing without a signing secret.
var ErrNoSecret = errors.New("capability: signing secret is empty")

var encoding = base64.RawURLEncoding

type payload struct {
	ID  string `json:"id"`
	Exp int64  `json:"exp"`
}

// Codec binds a secret, a lifetime and a clock.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithTTL sets the capability lifetime. Non-positive values keep DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Codec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec creates a Codec signing with secret.
func NewCodec(secret string, opts ...Option) *Codec {
	c := &Codec{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether the codec has a signing secret.
func (c *Codec) Configured() bool {
	return len(c.secret) > 0
}

// TTL returns the lifetime applied by Issue.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue returns a capability for objectID expiring one TTL from now.
func (c *Codec) Issue(objectID string) (string, error) {
	return c.IssueAt(objectID, c.now().Add(c.ttl))
}

// IssueAt returns a capability for objectID expiring at exp.
func (c *Codec) IssueAt(objectID string, exp time.Time) (string, error) {
	if !c.Configured() {
		return "", ErrNoSecret
	}
	raw, err := json.Marshal(payload{ID: objectID, Exp: exp.UnixMilli()})
	if err != nil {
		return "", err
	}
	seg := encoding.EncodeToString(raw)
	return seg + Separator + c.sign(seg), nil
}

// Validate returns the object id carried by token. ok is false for any
// malformed, forged or expired token, without saying which.
func (c *Codec) Validate(token string) (objectID string, ok bool) {
	if !c.Configured() {
		return "", false
	}

	seg, sig, found := strings.Cut(token, Separator)
	if !found || seg == "" || sig == "" {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(c.sign(seg))) {
		return "", false
	}

	raw, err := encoding.DecodeString(seg)
	if err != nil {
		return "", false
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", false
	}
	if p.ID == "" || c.now().UnixMilli() > p.Exp {
		return "", false
	}
	return p.ID, true
}

func (c *Codec) sign(seg string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(seg))
	return encoding.EncodeToString(mac.Sum(nil))
}

// Issue is NewCodec(secret, WithTTL(ttl)).Issue(objectID). A non-positive
// ttl selects DefaultTTL.
func Issue(objectID, secret string, ttl time.Duration) (string, error) {
	return NewCodec(secret, WithTTL(ttl)).Issue(objectID)
}

// Validate is NewCodec(secret).Validate(token) against the wall clock.
func Validate(token, secret string) (objectID string, ok bool) {
	return NewCodec(secret).Validate(token)
}
