package convertio

import (
	"fmt"
	"time"

	"github.com/kbukum/voicescribe/validation"
)

const (
	DefaultBaseURL      = "https://api.convertio.co"
	DefaultOutputFormat = "wav"
	DefaultPollInterval = 5 * time.Second
	defaultTimeout      = 30 * time.Second
)

// Config configures the Convertio client.
type Config struct {
	BaseURL      string `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey       string `mapstructure:"api_key" validate:"required"`
	OutputFormat string `mapstructure:"output_format"`

	// PollInterval is the wait between status requests.
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"gte=0"`

	// MaxPollAttempts caps status requests per job. Zero polls until the
	// job is terminal or the context is done.
	MaxPollAttempts int `mapstructure:"max_poll_attempts" validate:"gte=0"`

	// Timeout bounds a single API request.
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`

	// RateLimit caps API requests per second across all runs. Zero disables it.
	RateLimit float64 `mapstructure:"rate_limit" validate:"gte=0"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.OutputFormat == "" {
		c.OutputFormat = DefaultOutputFormat
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("convertio: %w", err)
	}
	return nil
}
