package httpclient

import (
	"fmt"
	"time"

	"github.com/kbukum/voicescribe/validation"
)

const defaultTimeout = 30 * time.Second

// Config is shared by the Convertio API client and the audio downloaders.
type Config struct {
	// Name labels the adapter in logs, metrics and spans.
	Name    string `yaml:"name" mapstructure:"name"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`

	// Auth is set in code, never from config files.
	Auth    *Auth             `yaml:"-" mapstructure:"-"`
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// MaxResponseBytes bounds a read body; zero reads everything.
	MaxResponseBytes int64 `yaml:"max_response_bytes" mapstructure:"max_response_bytes" validate:"gte=0"`

	// RateLimit is requests per second; zero turns the limiter off.
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit" validate:"gte=0"`
	RateBurst int     `yaml:"rate_burst" mapstructure:"rate_burst" validate:"gte=0"`
}

func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		c.RateBurst = 1
	}
}

func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("httpclient: %w", err)
	}
	return nil
}
