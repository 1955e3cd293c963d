package gateway

import (
	"fmt"

	"github.com/kbukum/drivegate/auth"
	"github.com/kbukum/drivegate/config"
	"github.com/kbukum/drivegate/drive"
	"github.com/kbukum/drivegate/observability"
	"github.com/kbukum/drivegate/server"
)

// ServiceName is the default service name and config file stem.
const ServiceName = "drivegate"

// Config is the complete drivegate configuration.
//
//	name: drivegate
//	server:
//	  port: 8080
//	auth:
//	  capability_secret: "..."
//	drive:
//	  client_id: "..."
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Auth          auth.Config          `yaml:"auth" mapstructure:"auth"`
	Drive         drive.Config         `yaml:"drive" mapstructure:"drive"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// LegacyEnv maps config keys onto the environment variable names used by
// earlier deployments. They apply only when the key is otherwise unset.
var LegacyEnv = map[string][]string{
	"drive.client_id":        {"CLIENT_ID"},
	"drive.client_secret":    {"CLIENT_SECRET"},
	"drive.refresh_token":    {"REFRESH_TOKEN"},
	"drive.root_id":          {"ROOT_FOLDER_ID"},
	"auth.capability_secret": {"SECRET_KEY"},
	"auth.session_secret":    {"JWT_SECRET"},
	"auth.password":          {"ACCESS_PASSWORD"},
}

// Load reads configuration for ServiceName from config.yml, .env and the
// environment, then applies defaults.
func Load(opts ...config.LoaderOption) (*Config, error) {
	cfg := &Config{}
	opts = append([]config.LoaderOption{config.WithEnvAliases(LegacyEnv)}, opts...)
	if err := config.LoadConfig(ServiceName, cfg, opts...); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills every section's defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Drive.ApplyDefaults()
	c.Observability.ApplyDefaults()
	c.Observability.ServiceName = c.Name
	c.Observability.ServiceVersion = c.Version
	c.Observability.Environment = c.Environment
}

// Validate checks every section. Absent secrets are not errors; see Missing.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Drive.Validate(); err != nil {
		return err
	}
	if err := c.Observability.Validate(); err != nil {
		return err
	}
	return nil
}

// Missing lists every secret or credential that is not configured.
func (c *Config) Missing() []string {
	var missing []string
	for _, m := range c.Auth.Missing() {
		missing = append(missing, "auth."+m)
	}
	return append(missing, c.Drive.Missing()...)
}
