package config

import (
	"fmt"
	"slices"
	"time"
)

const (
	minBufferSize = 512
	maxBufferSize = 1 << 20
)

var logLevels = []string{"trace", "debug", "info", "warn", "warning", "error", "fatal", "panic"}

// Validate validates the entire configuration.
func (c *Config) Validate() error {
	if err := c.validateBuffer(); err != nil {
		return fmt.Errorf("buffer: %w", err)
	}
	if err := c.validatePipe(); err != nil {
		return fmt.Errorf("pipe: %w", err)
	}
	if err := c.validateLog(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

func (c *Config) validateBuffer() error {
	size := c.Buffer.Size
	if size < minBufferSize || size > maxBufferSize {
		return fmt.Errorf("size: must be %d-%d, got %d", minBufferSize, maxBufferSize, size)
	}
	if size&(size-1) != 0 {
		return fmt.Errorf("size: must be a power of two, got %d", size)
	}
	return nil
}

func (c *Config) validatePipe() error {
	d, err := time.ParseDuration(c.Pipe.Timeout)
	if err != nil {
		return fmt.Errorf("timeout: invalid duration %q", c.Pipe.Timeout)
	}
	if d > time.Hour {
		return fmt.Errorf("timeout: too large (%s), max is 1h", d)
	}
	return nil
}

func (c *Config) validateLog() error {
	if !slices.Contains(logLevels, c.Log.Level) {
		return fmt.Errorf("level: unknown level %q", c.Log.Level)
	}
	return nil
}
