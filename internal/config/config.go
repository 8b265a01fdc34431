// Package config handles loading and saving application configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const appName = "lockiemedia"

// Config represents the application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Auth          AuthConfig          `yaml:"auth"`
	UI            UIConfig            `yaml:"ui"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Log           LogConfig           `yaml:"log"`
	Service       ServiceConfig       `yaml:"service"`
}

// ServerConfig describes the data service the client talks to.
type ServerConfig struct {
	URL          string        `yaml:"url"`
	DataPath     string        `yaml:"data_path"`
	APIKeyHeader string        `yaml:"api_key_header"`
	Timeout      time.Duration `yaml:"timeout"`
}

// AuthConfig holds authentication-related settings.
type AuthConfig struct {
	// APIKey is a last-resort key. Prefer 'lockie login', which keeps the key
	// in the system keyring.
	APIKey string `yaml:"api_key,omitempty"`
}

// UIConfig holds UI-related settings.
type UIConfig struct {
	VimMode       bool          `yaml:"vim_mode"`
	ShowCompleted bool          `yaml:"show_completed"`
	ToastDuration time.Duration `yaml:"toast_duration"`
}

// NotificationsConfig controls desktop notifications.
type NotificationsConfig struct {
	Desktop     bool `yaml:"desktop"`
	IncludeInfo bool `yaml:"include_info"`
}

// LogConfig controls the log file. An empty File logs to lockie.log in the
// data directory.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// ServiceConfig configures the self-hosted data service started by
// 'lockie serve'.
type ServiceConfig struct {
	Listen   string `yaml:"listen"`
	Database string `yaml:"database,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:          "http://localhost:8080",
			DataPath:     "/api/data",
			APIKeyHeader: "X-API-Key",
			Timeout:      30 * time.Second,
		},
		UI: UIConfig{
			VimMode:       true,
			ToastDuration: 4 * time.Second,
		},
		Notifications: NotificationsConfig{
			Desktop: true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Service: ServiceConfig{
			Listen: ":8080",
		},
	}
}

// ConfigDir returns the path to the configuration directory.
// Creates the directory if it doesn't exist.
func ConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", appName)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the configuration from the default config file.
// If the file doesn't exist, returns a default configuration.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from path. Values missing from the file
// keep their defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration to the default config file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the configuration to path.
func SaveTo(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	// Write with restricted permissions (owner read/write only)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the values a client needs to reach the data service.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server.url %q is not an absolute URL", c.Server.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.url %q must use http or https", c.Server.URL)
	}
	if c.Server.APIKeyHeader == "" {
		return errors.New("server.api_key_header must not be empty")
	}
	if c.Server.Timeout < 0 {
		return errors.New("server.timeout must not be negative")
	}
	return nil
}

// APIKey returns the key used to authenticate against the data service.
// Stored credentials win over the config file.
func (c *Config) APIKey() (string, error) {
	key, err := GetAPIKey()
	if err != nil {
		return "", err
	}
	if key != "" {
		return key, nil
	}
	return c.Auth.APIKey, nil
}

// LogFile returns the log file path, defaulting to the data directory.
func (c *Config) LogFile() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lockie.log"), nil
}

// DatabasePath returns the SQLite file used by the data service, defaulting
// to the data directory.
func (c *Config) DatabasePath() (string, error) {
	if c.Service.Database != "" {
		return c.Service.Database, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lockie.db"), nil
}

// ServiceAPIKey returns the key the data service accepts. The
// LOCKIE_SERVICE_API_KEY environment variable overrides the config file.
func (c *Config) ServiceAPIKey() string {
	if key := os.Getenv("LOCKIE_SERVICE_API_KEY"); key != "" {
		return key
	}
	return c.Service.APIKey
}
