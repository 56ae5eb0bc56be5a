package internal

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/iksnae/visual-session/testutil"
)

func TestLoadConfig_File(t *testing.T) {
	t.Setenv(EnvServerURL, "")
	t.Setenv(EnvUsername, "")
	t.Setenv(EnvPassword, "")

	path := testutil.CreateConfigFixture(t, t.TempDir(), `
server_url: https://eyes.example.com
username: sdk-id
password: account-id
timeout: 90s
journal_path: /tmp/j.db
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.ServerURL != "https://eyes.example.com" || cfg.Username != "sdk-id" || cfg.Password != "account-id" {
		t.Errorf("LoadConfig() = %+v", cfg)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s", cfg.Timeout)
	}
	if cfg.JournalPath != "/tmp/j.db" {
		t.Errorf("JournalPath = %q", cfg.JournalPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvServerURL, "")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Timeout != 5*time.Minute {
		t.Errorf("Timeout = %v, want 5m", cfg.Timeout)
	}
	if filepath.Base(cfg.JournalPath) != "journal.db" {
		t.Errorf("JournalPath = %q", cfg.JournalPath)
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("LoadConfig() error = %v, want *ConfigError", err)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := testutil.CreateConfigFixture(t, t.TempDir(), "server_url: [unclosed")
	_, err := LoadConfig(path)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("LoadConfig() error = %v, want *ConfigError", err)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := testutil.CreateConfigFixture(t, t.TempDir(), "server_url: https://file.example.com\nusername: file-user\n")
	t.Setenv(EnvServerURL, "https://env.example.com")
	t.Setenv(EnvUsername, "")
	t.Setenv(EnvPassword, "env-pass")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.ServerURL != "https://env.example.com" {
		t.Errorf("ServerURL = %q, want env value", cfg.ServerURL)
	}
	if cfg.Username != "file-user" {
		t.Errorf("Username = %q, want file value", cfg.Username)
	}
	if cfg.Password != "env-pass" {
		t.Errorf("Password = %q, want env value", cfg.Password)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantField string
	}{
		{"valid", Config{ServerURL: "http://localhost:8080", Timeout: time.Second}, ""},
		{"missing url", Config{Timeout: time.Second}, "server_url"},
		{"bad scheme", Config{ServerURL: "ftp://host", Timeout: time.Second}, "server_url"},
		{"no host", Config{ServerURL: "http://", Timeout: time.Second}, "server_url"},
		{"zero timeout", Config{ServerURL: "http://host"}, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() error = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.wantField)
			}
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv(EnvServerURL, "")
	t.Setenv(EnvUsername, "")
	t.Setenv(EnvPassword, "")

	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	want := &Config{ServerURL: "https://h", Username: "u", Password: "p", Timeout: 2 * time.Minute, JournalPath: "/j.db"}
	if err := SaveConfig(path, want); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if *got != *want {
		t.Errorf("LoadConfig() = %+v, want %+v", got, want)
	}
}
