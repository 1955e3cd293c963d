package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/drivegate/auth/password"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"--version"}, strings.NewReader(""), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out.String(), "drivegate ") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRunHelp(t *testing.T) {
	for _, arg := range []string{"--help", "-h"} {
		t.Run(arg, func(t *testing.T) {
			var out bytes.Buffer
			if err := run([]string{arg}, strings.NewReader(""), &out); err != nil {
				t.Fatalf("run: %v", err)
			}
			for _, want := range []string{"Usage:", "--config", "--hash-password", "ACCESS_PASSWORD"} {
				if !strings.Contains(out.String(), want) {
					t.Errorf("help missing %q", want)
				}
			}
		})
	}
}

func TestRunUnknownFlag(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"--nope"}, strings.NewReader(""), &out); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func TestRunGenSecret(t *testing.T) {
	var a, b bytes.Buffer
	if err := run([]string{"--gen-secret"}, strings.NewReader(""), &a); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := run([]string{"--gen-secret"}, strings.NewReader(""), &b); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(strings.TrimSpace(a.String())) < 32 {
		t.Errorf("secret too short: %q", a.String())
	}
	if a.String() == b.String() {
		t.Error("expected distinct secrets")
	}
}

func TestRunHashPassword(t *testing.T) {
	cfgPath := writeFile(t, "config.yml", "auth:\n  hashing:\n    algorithm: bcrypt\n    bcrypt_cost: 4\n")
	envPath := filepath.Join(t.TempDir(), "absent.env")

	var out bytes.Buffer
	args := []string{"--hash-password", "--config", cfgPath, "--env-file", envPath}
	if err := run(args, strings.NewReader("correct horse\n"), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	hash := strings.TrimSpace(out.String())
	h := password.Detect(hash)
	if h == nil {
		t.Fatalf("unrecognised hash %q", hash)
	}
	if err := h.Verify("correct horse", hash); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestRunHashPasswordEmpty(t *testing.T) {
	cfgPath := writeFile(t, "config.yml", "name: drivegate\n")
	args := []string{"--hash-password", "--config", cfgPath, "--env-file", filepath.Join(t.TempDir(), "absent.env")}
	if err := run(args, strings.NewReader("\n"), &bytes.Buffer{}); err == nil {
		t.Error("expected error for empty password")
	}
}
