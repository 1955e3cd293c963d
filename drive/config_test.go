package drive_test

import (
	"testing"
	"time"

	"github.com/kbukum/drivegate/drive"
)

func TestConfigApplyDefaults(t *testing.T) {
	var cfg drive.Config
	cfg.ApplyDefaults()

	if cfg.TokenURL != drive.DefaultTokenURL || cfg.BaseURL != drive.DefaultBaseURL {
		t.Errorf("unexpected endpoints %q %q", cfg.TokenURL, cfg.BaseURL)
	}
	if cfg.PageSize != 100 {
		t.Errorf("PageSize = %d", cfg.PageSize)
	}
	if cfg.RefreshSkew != time.Minute {
		t.Errorf("RefreshSkew = %v", cfg.RefreshSkew)
	}
	if cfg.Timeout <= 0 || cfg.ResponseHeaderTimeout <= 0 {
		t.Error("expected positive timeouts")
	}
}

func TestConfigKeepsLargerSkew(t *testing.T) {
	cfg := drive.Config{RefreshSkew: 5 * time.Minute}
	cfg.ApplyDefaults()
	if cfg.RefreshSkew != 5*time.Minute {
		t.Errorf("RefreshSkew = %v", cfg.RefreshSkew)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*drive.Config)
		wantErr bool
	}{
		{"defaults", func(*drive.Config) {}, false},
		{"page size too large", func(c *drive.Config) { c.PageSize = 1001 }, true},
		{"negative rps", func(c *drive.Config) { c.RequestsPerSecond = -1 }, true},
		{"relative base url", func(c *drive.Config) { c.BaseURL = "/drive/v3" }, true},
		{"bad token url", func(c *drive.Config) { c.TokenURL = "oauth2" }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var cfg drive.Config
			cfg.ApplyDefaults()
			tc.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestConfigMissing(t *testing.T) {
	cfg := drive.Config{ClientID: "id"}
	missing := cfg.Missing()
	if len(missing) != 2 {
		t.Fatalf("expected 2 missing settings, got %v", missing)
	}
	if cfg.Configured() {
		t.Error("expected Configured() false")
	}
	cfg.ClientSecret, cfg.RefreshToken = "s", "r"
	if !cfg.Configured() {
		t.Error("expected Configured() true")
	}
}
