// Package config provides centralized configuration management for streamio.
// All configuration is loaded from a JSON file at /etc/streamio/config.json
// (overridable via STREAMIO_CONFIG environment variable).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

const (
	// DefaultConfigPath is the default location for the config file
	DefaultConfigPath = "/etc/streamio/config.json"

	// ConfigEnvVar is the environment variable to override config file location
	ConfigEnvVar = "STREAMIO_CONFIG"
)

// Config is the root configuration structure
type Config struct {
	Buffer BufferConfig `json:"buffer"`
	Pipe   PipeConfig   `json:"pipe"`
	Log    LogConfig    `json:"log"`
}

// BufferConfig defines how stream handles buffer their I/O.
type BufferConfig struct {
	// Size is the buffer capacity in bytes. It must be a power of two
	// between 512 bytes and 1MiB. Default: 4096.
	Size int `json:"size"`

	// Disabled opens every stream unbuffered.
	Disabled bool `json:"disabled"`
}

// PipeConfig defines the default blocking behaviour of pipe handles.
type PipeConfig struct {
	// Timeout is a duration string applied to every pipe handle.
	// "0s" never waits, a positive value waits, a negative value ("-1s")
	// blocks until data arrives. Default: "-1s".
	Timeout string `json:"timeout"`
}

// GetTimeout returns the pipe timeout as a time.Duration. Any negative
// value is normalized to -1.
// Panics if the configuration is invalid (should be caught by validation).
func (p *PipeConfig) GetTimeout() time.Duration {
	d := mustParseDuration(p.Timeout)
	if d < 0 {
		return -1
	}
	return d
}

// LogConfig defines logging settings
type LogConfig struct {
	Level string `json:"level"` // trace, debug, info, warn, error
}

// mustParseDuration parses a duration string, panicking on error.
// This is safe because validation should have already verified the format.
func mustParseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(fmt.Sprintf("invalid duration %q: %v (config validation should have caught this)", s, err))
	}
	return d
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.Mutex
	errConfig    error
)

// Reset clears the cached global config, forcing the next Get() call to reload.
// This is intended for testing only. Callers must ensure no concurrent Get() calls
// are in progress when calling Reset().
func Reset() {
	configMu.Lock()
	defer configMu.Unlock()
	globalConfig = nil
	errConfig = nil
	configOnce = sync.Once{}
}

// Get returns the global config, loading it on first call.
func Get() (*Config, error) {
	configOnce.Do(func() {
		globalConfig, errConfig = Load()
	})
	return globalConfig, errConfig
}

// Load loads configuration from STREAMIO_CONFIG env var or /etc/streamio/config.json.
// Missing files return an error wrapping os.ErrNotExist for the caller to handle.
func Load() (*Config, error) {
	configPath := os.Getenv(ConfigEnvVar)
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	return LoadFrom(configPath)
}

// LoadFrom loads configuration from a specific path.
// Returns error if file doesn't exist or is invalid.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s (set %s to override): %w", path, ConfigEnvVar, err)
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w (ensure it's valid JSON)", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	return &cfg, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Buffer: BufferConfig{
			Size: 4096,
		},
		Pipe: PipeConfig{
			Timeout: "-1s",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// applyDefaults fills in default values for any empty fields
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Buffer.Size == 0 {
		c.Buffer.Size = defaults.Buffer.Size
	}
	if c.Pipe.Timeout == "" {
		c.Pipe.Timeout = defaults.Pipe.Timeout
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}
