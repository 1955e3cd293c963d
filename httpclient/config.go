package httpclient

import (
	"errors"
	"time"

	"github.com/kbukum/drivegate/resilience"
)

// Config holds client-wide settings. Zero durations mean 30s.
type Config struct {
	// BaseURL is joined with relative request paths.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// Timeout bounds a Do call including its body.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// ResponseHeaderTimeout is the only deadline DoStream applies itself;
	// the streamed body is bounded by the caller's context.
	ResponseHeaderTimeout time.Duration `yaml:"response_header_timeout" mapstructure:"response_header_timeout"`
	Headers               map[string]string `yaml:"headers" mapstructure:"headers"`

	Auth        *AuthConfig                   `yaml:"-" mapstructure:"-"`
	RateLimiter *resilience.RateLimiterConfig `yaml:"-" mapstructure:"-"` // nil: unpaced
}

func (c *Config) ApplyDefaults() {
	for _, d := range []*time.Duration{&c.Timeout, &c.ResponseHeaderTimeout} {
		if *d <= 0 {
			*d = 30 * time.Second
		}
	}
}

func (c *Config) Validate() error {
	switch {
	case c.Timeout <= 0:
		return errors.New("httpclient: timeout must be positive")
	case c.ResponseHeaderTimeout <= 0:
		return errors.New("httpclient: response_header_timeout must be positive")
	}
	return nil
}
