package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override config file values
const (
	EnvServerURL = "VISUAL_SESSION_SERVER_URL"
	EnvUsername  = "VISUAL_SESSION_USERNAME"
	EnvPassword  = "VISUAL_SESSION_PASSWORD"
)

const (
	configDirName  = ".visual-session"
	configFileName = "config.yaml"
	journalName    = "journal.db"

	defaultTimeout = 5 * time.Minute
)

// Config holds the client configuration
type Config struct {
	ServerURL   string        `yaml:"server_url"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	JournalPath string        `yaml:"journal_path,omitempty"`
	LogFile     string        `yaml:"log_file,omitempty"`
}

// ConfigDir returns the per-user configuration directory
func ConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, configDirName), nil
}

// DefaultConfig returns a config with defaults filled in
func DefaultConfig() *Config {
	cfg := &Config{Timeout: defaultTimeout}
	if dir, err := ConfigDir(); err == nil {
		cfg.JournalPath = filepath.Join(dir, journalName)
	}
	return cfg
}

// LoadConfig reads the YAML config at path and applies environment
// overrides. With an empty path the default location is used and a
// missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		dir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, configFileName)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &ConfigError{Path: path, Field: "file", Err: err}
		}
		LogDebug("Loaded config from %s", path)
	case errors.Is(err, os.ErrNotExist) && !explicit:
		LogDebug("No config file at %s, using defaults", path)
	default:
		return nil, &ConfigError{Path: path, Field: "file", Err: err}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvServerURL); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv(EnvUsername); v != "" {
		c.Username = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		c.Password = v
	}
}

// Validate checks the fields needed to talk to the server
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return &ConfigError{Field: "server_url", Err: errors.New("not set")}
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return &ConfigError{Field: "server_url", Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ConfigError{Field: "server_url", Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return &ConfigError{Field: "server_url", Err: errors.New("missing host")}
	}
	if c.Timeout <= 0 {
		return &ConfigError{Field: "timeout", Err: fmt.Errorf("must be positive, got %s", c.Timeout)}
	}
	return nil
}

// SaveConfig writes cfg as YAML, creating the directory if needed
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &ConfigError{Path: path, Field: "file", Err: err}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return &ConfigError{Path: path, Field: "file", Err: err}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return &ConfigError{Path: path, Field: "file", Err: err}
	}
	return nil
}
