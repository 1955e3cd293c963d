package jwt

import (
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Algorithm is an HMAC JWT algorithm name.
type Algorithm string

const (
	HS256 Algorithm = "HS256"
	HS384 Algorithm = "HS384"
	HS512 Algorithm = "HS512"
)

var hmacMethods = map[Algorithm]*gojwt.SigningMethodHMAC{
	HS256: gojwt.SigningMethodHS256,
	HS384: gojwt.SigningMethodHS384,
	HS512: gojwt.SigningMethodHS512,
}

const defaultTTL = 7 * 24 * time.Hour

// Config keys a Service.
type Config struct {
	Secret    string        `mapstructure:"secret"`
	Algorithm Algorithm     `mapstructure:"algorithm"` // HS256 when empty
	Issuer    string        `mapstructure:"issuer"`    // checked on Parse when set
	TTL       time.Duration `mapstructure:"ttl"`       // 7d when zero

	Now func() time.Time `mapstructure:"-"`
}

func (c *Config) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = HS256
	}
	if c.TTL == 0 {
		c.TTL = defaultTTL
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

func (c *Config) Validate() error {
	if _, ok := hmacMethods[c.Algorithm]; !ok {
		return errors.New("unsupported algorithm " + string(c.Algorithm))
	}
	if c.Secret == "" {
		return errors.New("secret is required")
	}
	if c.TTL < 0 {
		return errors.New("ttl must not be negative")
	}
	return nil
}
