package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(*Config)
		wantErr   string
	}{
		{
			name:      "defaults",
			setupFunc: func(*Config) {},
		},
		{
			name:      "smallest buffer",
			setupFunc: func(c *Config) { c.Buffer.Size = 512 },
		},
		{
			name:      "largest buffer",
			setupFunc: func(c *Config) { c.Buffer.Size = 1 << 20 },
		},
		{
			name:      "buffer too small",
			setupFunc: func(c *Config) { c.Buffer.Size = 256 },
			wantErr:   "buffer: size",
		},
		{
			name:      "buffer too large",
			setupFunc: func(c *Config) { c.Buffer.Size = 2 << 20 },
			wantErr:   "buffer: size",
		},
		{
			name:      "buffer not a power of two",
			setupFunc: func(c *Config) { c.Buffer.Size = 3000 },
			wantErr:   "power of two",
		},
		{
			name:      "immediate pipe timeout",
			setupFunc: func(c *Config) { c.Pipe.Timeout = "0s" },
		},
		{
			name:      "negative pipe timeout",
			setupFunc: func(c *Config) { c.Pipe.Timeout = "-5s" },
		},
		{
			name:      "invalid pipe timeout",
			setupFunc: func(c *Config) { c.Pipe.Timeout = "soon" },
			wantErr:   "pipe: timeout",
		},
		{
			name:      "pipe timeout too large",
			setupFunc: func(c *Config) { c.Pipe.Timeout = "2h" },
			wantErr:   "max is 1h",
		},
		{
			name:      "unknown log level",
			setupFunc: func(c *Config) { c.Log.Level = "verbose" },
			wantErr:   "log: level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.setupFunc(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected validation error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected validation error for %s", tt.name)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should contain %q", err, tt.wantErr)
			}
		})
	}
}
