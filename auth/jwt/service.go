// Package jwt signs and parses HMAC JWTs for a caller-defined claims type.
//
//	type SessionClaims struct {
//	    jwt.RegisteredClaims
//	    Authenticated bool `json:"authenticated"`
//	}
//
//	svc, err := jwt.NewService(cfg, func() *SessionClaims { return &SessionClaims{} })
//	token, err := svc.Sign(&SessionClaims{Authenticated: true})
//	claims, err := svc.Parse(token)
//
// Parse only accepts the configured algorithm and requires an exp claim.
package jwt

import (
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Stamper is implemented by claims that accept the standard time and
// issuer claims. Sign stamps them before signing.
type Stamper interface {
	Stamp(issuedAt, expiresAt time.Time, issuer string)
}

// Service signs and parses tokens carrying claims of type T.
type Service[T gojwt.Claims] struct {
	cfg       Config
	method    *gojwt.SigningMethodHMAC
	key       []byte
	parser    *gojwt.Parser
	newClaims func() T
}

// NewService validates cfg. newClaims returns an empty T to parse into.
func NewService[T gojwt.Claims](cfg Config, newClaims func() T) (*Service[T], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	method := hmacMethods[cfg.Algorithm]
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{method.Alg()}),
		gojwt.WithTimeFunc(cfg.Now),
		gojwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(cfg.Issuer))
	}
	return &Service[T]{
		cfg:       cfg,
		method:    method,
		key:       []byte(cfg.Secret),
		parser:    gojwt.NewParser(opts...),
		newClaims: newClaims,
	}, nil
}

// Sign stamps iat, exp = iat + TTL and iss on claims implementing Stamper,
// then signs them.
func (s *Service[T]) Sign(claims T) (string, error) {
	if st, ok := any(claims).(Stamper); ok {
		now := s.cfg.Now()
		st.Stamp(now, now.Add(s.cfg.TTL), s.cfg.Issuer)
	}
	return s.sign(claims)
}

func (s *Service[T]) sign(claims T) (string, error) {
	signed, err := gojwt.NewWithClaims(s.method, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature, algorithm, expiry and issuer of token.
func (s *Service[T]) Parse(token string) (T, error) {
	claims := s.newClaims()
	if _, err := s.parser.ParseWithClaims(token, claims, s.keyFunc); err != nil {
		var zero T
		return zero, fmt.Errorf("jwt: %w", err)
	}
	return claims, nil
}

// TTL is the lifetime Sign applies.
func (s *Service[T]) TTL() time.Duration { return s.cfg.TTL }

func (s *Service[T]) keyFunc(*gojwt.Token) (any, error) { return s.key, nil }
