package logger

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Output formats. Pretty is an alias of console.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
	FormatPretty  = "pretty"
)

// Config is the logging section of the service config.
type Config struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	// Output is stdout or stderr.
	Output    string `yaml:"output" mapstructure:"output"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`
	// ServiceName is copied from the service config, not read from the file.
	ServiceName string `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults selects info level console output on stdout. Timestamps are
// always on.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = zerolog.InfoLevel.String()
	}
	if c.Format == "" {
		c.Format = FormatConsole
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	c.Timestamp = true
}

// Validate rejects unknown levels and formats.
func (c *Config) Validate() error {
	if lvl, err := zerolog.ParseLevel(strings.ToLower(c.Level)); err != nil || lvl == zerolog.NoLevel {
		return fmt.Errorf("logging.level %q is not a zerolog level", c.Level)
	}
	switch c.Format {
	case FormatJSON, FormatConsole, FormatPretty:
		return nil
	default:
		return fmt.Errorf("logging.format %q must be json, console or pretty", c.Format)
	}
}
