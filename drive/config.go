package drive

import (
	"fmt"
	"net/url"
	"time"
)

const (
	DefaultTokenURL    = "https://oauth2.googleapis.com/token"
	DefaultBaseURL     = "https://www.googleapis.com/drive/v3"
	DefaultPageSize    = 100
	DefaultRefreshSkew = 60 * time.Second
	// RootAlias is the folder id clients use for the configured root.
	RootAlias = "root"
)

// Config holds the Drive OAuth client and listing settings.
type Config struct {
	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	RefreshToken string `yaml:"refresh_token" mapstructure:"refresh_token"`
	// RootID replaces the "root" alias. Empty means the account's My Drive.
	RootID string `yaml:"root_id" mapstructure:"root_id"`

	TokenURL string `yaml:"token_url" mapstructure:"token_url"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	PageSize int    `yaml:"page_size" mapstructure:"page_size"`

	// RefreshSkew is how long before expiry a cached access token stops
	// being reused. Values below 60s are raised to 60s.
	RefreshSkew time.Duration `yaml:"refresh_skew" mapstructure:"refresh_skew"`

	// Timeout bounds JSON calls; ResponseHeaderTimeout bounds the wait for
	// download headers. Download bodies are bounded by the request context.
	Timeout               time.Duration `yaml:"timeout" mapstructure:"timeout"`
	ResponseHeaderTimeout time.Duration `yaml:"response_header_timeout" mapstructure:"response_header_timeout"`

	// RequestsPerSecond paces outbound Drive calls. 0 disables pacing.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.TokenURL == "" {
		c.TokenURL = DefaultTokenURL
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.RefreshSkew < DefaultRefreshSkew {
		c.RefreshSkew = DefaultRefreshSkew
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.ResponseHeaderTimeout <= 0 {
		c.ResponseHeaderTimeout = 30 * time.Second
	}
}

// Validate checks the settings that have no usable fallback. Missing OAuth
// credentials are not an error here: they surface per request as a
// configuration error so the rest of the gateway keeps serving.
func (c *Config) Validate() error {
	if c.PageSize > 1000 {
		return fmt.Errorf("drive.page_size must be at most 1000 (got: %d)", c.PageSize)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("drive.requests_per_second must be non-negative")
	}
	for name, raw := range map[string]string{"drive.token_url": c.TokenURL, "drive.base_url": c.BaseURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL (got: %q)", name, raw)
		}
	}
	return nil
}

// Configured reports whether the OAuth refresh credentials are all present.
func (c *Config) Configured() bool {
	return len(c.Missing()) == 0
}

// Missing lists the absent OAuth settings.
func (c *Config) Missing() []string {
	var out []string
	if c.ClientID == "" {
		out = append(out, "drive.client_id")
	}
	if c.ClientSecret == "" {
		out = append(out, "drive.client_secret")
	}
	if c.RefreshToken == "" {
		out = append(out, "drive.refresh_token")
	}
	return out
}

// resolveFolder maps the root alias onto RootID.
func (c *Config) resolveFolder(folderID string) string {
	if folderID == "" || folderID == RootAlias {
		if c.RootID != "" {
			return c.RootID
		}
		return RootAlias
	}
	return folderID
}
