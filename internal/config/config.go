package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	DefaultDomain       = "tides.coloredcow.com"
	DefaultPageSize     = 10
	DefaultMessageLimit = 50
	DefaultLogLevel     = "info"
)

// Config represents the global ~/.tides/config.toml.
type Config struct {
	DefaultSession string `toml:"default_session"`
	Domain         string `toml:"domain"`
	PageSize       int    `toml:"page_size"`
	MessageLimit   int    `toml:"message_limit"`
	LogLevel       string `toml:"log_level"`
}

// Default returns a config with every field populated.
func Default() *Config {
	return (&Config{}).WithDefaults()
}

// WithDefaults fills zero-valued fields in place and returns the receiver.
func (c *Config) WithDefaults() *Config {
	if c.Domain == "" {
		c.Domain = DefaultDomain
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.MessageLimit <= 0 {
		c.MessageLimit = DefaultMessageLimit
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	return c
}

// Load reads config from the given path. Returns error if the file is missing.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault reads config from path, falling back to defaults when the file
// does not exist. Parse errors are still returned.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return cfg.WithDefaults(), nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
