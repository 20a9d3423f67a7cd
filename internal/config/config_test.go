package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "invitations.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadMergesDefaults(t *testing.T) {
	t.Setenv("PORTAL_TOKEN", "tok-123")

	path := writeConfig(t, `
data_dir: /var/lib/invitations
portal:
  base_url: https://targi.example.com
  token: ${PORTAL_TOKEN}
  role: exhibitor
max_recipients: 500
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.DataDir != "/var/lib/invitations" {
		t.Errorf("expected data_dir from file, got %q", cfg.DataDir)
	}
	if cfg.Portal.Token != "tok-123" {
		t.Errorf("expected env-expanded token, got %q", cfg.Portal.Token)
	}
	if cfg.Portal.Role != "exhibitor" {
		t.Errorf("expected role exhibitor, got %q", cfg.Portal.Role)
	}
	if cfg.Portal.Timeout != 30*time.Second {
		t.Errorf("expected default timeout, got %v", cfg.Portal.Timeout)
	}
	if cfg.Server.Addr != ":8080" || cfg.LogLevel != "info" {
		t.Errorf("expected defaults for server and log level, got %q %q", cfg.Server.Addr, cfg.LogLevel)
	}
	if cfg.MaxRecipients != 500 {
		t.Errorf("expected max_recipients 500, got %d", cfg.MaxRecipients)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("INVITES_PORTAL_URL", "https://env.example.com")
	t.Setenv("INVITES_MAX_RECIPIENTS", "25")
	t.Setenv("INVITES_PORTAL_TIMEOUT", "5s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Portal.BaseURL != "https://env.example.com" {
		t.Errorf("unexpected base url %q", cfg.Portal.BaseURL)
	}
	if cfg.MaxRecipients != 25 {
		t.Errorf("expected 25, got %d", cfg.MaxRecipients)
	}
	if cfg.Portal.Timeout != 5*time.Second {
		t.Errorf("expected 5s, got %v", cfg.Portal.Timeout)
	}
}

func TestLoadInvalidEnv(t *testing.T) {
	t.Setenv("INVITES_MAX_RECIPIENTS", "many")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-numeric max recipients")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error without portal base url")
	}

	cfg.Portal.BaseURL = "https://targi.example.com"
	cfg.Portal.Role = "admin"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown role")
	}

	cfg.Portal.Role = "organizer"
	cfg.WhatsApp.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for whatsapp without organizer phone")
	}

	cfg.WhatsApp.OrganizerPhone = "600100200"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
