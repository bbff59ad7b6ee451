// Package config handles XDG configuration directory, file paths, and the
// client configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "taskdeck"

	// ConfigFile is the optional client configuration filename.
	ConfigFile = "config.yaml"

	// TokenFile is the stored access token filename. This is the single
	// persisted token slot: overwritten wholesale on sign-in, removed on
	// sign-out, absent when anonymous.
	TokenFile = "token.json"

	// DefaultBaseURL is the fallback API base URL when neither the
	// environment nor config.yaml provide one.
	DefaultBaseURL = "http://localhost:8080/api/v1"

	// BaseURLEnv overrides the configured base URL when set.
	BaseURLEnv = "TASKDECK_BASE_URL"

	// DefaultPageSize is the task list page size when not configured.
	DefaultPageSize = 20
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// BaseURL is the remote API base URL.
	BaseURL string

	// PageSize is the default task list page size.
	PageSize int

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// fileConfig is the on-disk shape of config.yaml.
type fileConfig struct {
	BaseURL  string `yaml:"base_url"`
	PageSize int    `yaml:"page_size"`
}

// New creates a Config from the default or specified config directory.
// Precedence for the base URL: TASKDECK_BASE_URL env var, then config.yaml,
// then DefaultBaseURL. A missing config.yaml is not an error.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	cfg := &Config{
		Dir:      dir,
		BaseURL:  DefaultBaseURL,
		PageSize: DefaultPageSize,
	}

	if err := cfg.loadFile(); err != nil {
		return nil, err
	}

	if env := strings.TrimSpace(os.Getenv(BaseURLEnv)); env != "" {
		cfg.BaseURL = env
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// loadFile merges config.yaml into the Config if the file exists.
func (c *Config) loadFile() error {
	data, err := os.ReadFile(c.ConfigPath())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}

	if fc.BaseURL != "" {
		c.BaseURL = fc.BaseURL
	}
	if fc.PageSize > 0 {
		c.PageSize = fc.PageSize
	}
	return nil
}

// ConfigPath returns the path to the client configuration file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// TokenPath returns the path to the stored token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
