package auth

import (
	"fmt"
	"time"

	"github.com/kbukum/drivegate/auth/capability"
	"github.com/kbukum/drivegate/auth/password"
	"github.com/kbukum/drivegate/auth/session"
)

// Config holds the gateway's secrets and password settings.
//
//	auth:
//	  capability_secret: "..."
//	  capability_ttl: 24h
//	  session_secret: "..."
//	  password: "..."          # or password_hash: "$2b$12$..."
type Config struct {
	// CapabilitySecret signs download capabilities.
	CapabilitySecret string `mapstructure:"capability_secret"`

	// CapabilityTTL is the download link lifetime (default: 24h).
	CapabilityTTL time.Duration `mapstructure:"capability_ttl"`

	// SessionSecret signs session tokens.
	SessionSecret string `mapstructure:"session_secret"`

	// Password is the shared access password compared as plain text.
	Password string `mapstructure:"password"`

	// PasswordHash is a bcrypt or argon2id hash of the access password.
	// When set, Password is ignored.
	PasswordHash string `mapstructure:"password_hash"`

	// Hashing selects the algorithm the CLI uses to produce PasswordHash.
	Hashing password.Config `mapstructure:"hashing"`

	// LoginRate is the sustained number of password attempts allowed per
	// client IP per minute (default: 10).
	LoginRate int `mapstructure:"login_rate"`

	// LoginBurst is the number of attempts allowed back to back (default: 5).
	LoginBurst int `mapstructure:"login_burst"`
}

// ApplyDefaults sets sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.CapabilityTTL <= 0 {
		c.CapabilityTTL = capability.DefaultTTL
	}
	if c.LoginRate <= 0 {
		c.LoginRate = 10
	}
	if c.LoginBurst <= 0 {
		c.LoginBurst = 5
	}
	c.Hashing.ApplyDefaults()
}

// Validate checks settings that are wrong rather than absent. Missing
// secrets are reported per request as configuration errors so that the
// health and info endpoints stay reachable.
func (c *Config) Validate() error {
	if c.PasswordHash != "" && password.Detect(c.PasswordHash) == nil {
		return fmt.Errorf("auth.password_hash: unrecognised hash format")
	}
	if err := c.Hashing.Validate(); err != nil {
		return fmt.Errorf("auth.hashing: %w", err)
	}
	return nil
}

// Missing lists the secrets that are not configured.
func (c *Config) Missing() []string {
	var missing []string
	if c.CapabilitySecret == "" {
		missing = append(missing, "capability_secret")
	}
	if c.SessionSecret == "" {
		missing = append(missing, "session_secret")
	}
	if c.Password == "" && c.PasswordHash == "" {
		missing = append(missing, "password")
	}
	return missing
}

// Describe returns a one-liner for the startup log.
func (c *Config) Describe() string {
	mode := "plain"
	if c.PasswordHash != "" {
		mode = "hashed"
	}
	return fmt.Sprintf("capability_ttl=%s session_ttl=%s password=%s", c.CapabilityTTL, session.TTL, mode)
}
