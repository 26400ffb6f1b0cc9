package fetch

import (
	"fmt"
	"time"
)

const (
	defaultTimeout  = 60 * time.Second
	defaultMaxBytes = 50 << 20
)

// Config configures the audio fetcher.
type Config struct {
	// Timeout bounds a single download. Defaults to 60s.
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
	// MaxBytes rejects bodies larger than this. Defaults to 50 MiB; negative disables the limit.
	MaxBytes int64 `mapstructure:"max_bytes"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxBytes == 0 {
		c.MaxBytes = defaultMaxBytes
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("fetch: timeout must be positive")
	}
	return nil
}
