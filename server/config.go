package server

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/kbukum/drivegate/server/middleware"
	"github.com/kbukum/drivegate/util"
)

// Config is the listener section of the gateway config.
type Config struct {
	Host              string        `yaml:"host" mapstructure:"host"`
	Port              int           `yaml:"port" mapstructure:"port"`
	ReadTimeout       time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" mapstructure:"read_header_timeout"`
	// WriteTimeout covers the whole response body, so anything but 0 cuts
	// long downloads short.
	WriteTimeout    time.Duration         `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout     time.Duration         `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration         `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	MaxBodySize     string                `yaml:"max_body_size" mapstructure:"max_body_size"` // e.g. "1MB"
	CORS            middleware.CORSConfig `yaml:"cors" mapstructure:"cors"`
	// TrustedProxies lists the IPs and CIDRs whose X-Forwarded-For and
	// X-Real-IP headers are believed. Empty means the peer address is the
	// client.
	TrustedProxies []string `yaml:"trusted_proxies" mapstructure:"trusted_proxies"`
}

func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	setDuration(&c.ReadTimeout, 15*time.Second)
	setDuration(&c.ReadHeaderTimeout, 10*time.Second)
	setDuration(&c.IdleTimeout, time.Minute)
	setDuration(&c.ShutdownTimeout, 10*time.Second)
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}

	cors := &c.CORS
	setList(&cors.AllowedOrigins, "*")
	setList(&cors.AllowedMethods, http.MethodGet, http.MethodPost, http.MethodOptions)
	setList(&cors.AllowedHeaders, "Origin", "Content-Type", "Accept", "Range")
	setList(&cors.ExposedHeaders, "Content-Length", "Content-Range", "Accept-Ranges", "Content-Disposition")
}

func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Port)
	}
	for name, d := range map[string]time.Duration{
		"read_timeout":        c.ReadTimeout,
		"read_header_timeout": c.ReadHeaderTimeout,
		"write_timeout":       c.WriteTimeout,
		"idle_timeout":        c.IdleTimeout,
		"shutdown_timeout":    c.ShutdownTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("server.%s must not be negative", name)
		}
	}
	if c.MaxBodySize != "" {
		if _, err := util.ParseSize(c.MaxBodySize); err != nil {
			return fmt.Errorf("server.max_body_size: %w", err)
		}
	}
	for _, p := range c.TrustedProxies {
		if net.ParseIP(p) == nil {
			if _, _, err := net.ParseCIDR(p); err != nil {
				return fmt.Errorf("server.trusted_proxies: %q is neither an IP nor a CIDR", p)
			}
		}
	}
	return nil
}

func setDuration(d *time.Duration, def time.Duration) {
	if *d == 0 {
		*d = def
	}
}

func setList(l *[]string, def ...string) {
	if len(*l) == 0 {
		*l = def
	}
}
