package telegram

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kbukum/voicescribe/validation"
)

const (
	DefaultGreeting          = "Hi! Send me a voice message and I will try to recognize it."
	DefaultBusyReply         = "Too many voice messages are waiting. Please try again later."
	defaultMaxConcurrentRuns = 1
	defaultMaxPendingRuns    = 100
	defaultPollTimeout       = 60 * time.Second
	defaultRequestTimeout    = 90 * time.Second
)

// Config configures the Telegram bot.
type Config struct {
	// Token is the Bot API token.
	Token string `mapstructure:"token" validate:"required"`

	// Endpoint is the Bot API endpoint format; defaults to the public API.
	// Point it at a local Bot API server to lift download size limits.
	Endpoint string `mapstructure:"endpoint"`

	// MaxConcurrentRuns bounds how many voice messages are processed at once.
	MaxConcurrentRuns int `mapstructure:"max_concurrent_runs" validate:"gte=0"`

	// MaxPendingRuns bounds the queue behind the workers. Messages beyond it
	// get BusyReply instead of a run.
	MaxPendingRuns int `mapstructure:"max_pending_runs" validate:"gte=0"`

	// PollTimeout is the long polling timeout for getUpdates.
	PollTimeout time.Duration `mapstructure:"poll_timeout" validate:"gte=0"`

	// RequestTimeout bounds a single Bot API call. It must exceed PollTimeout.
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gte=0"`

	Greeting  string `mapstructure:"greeting"`
	BusyReply string `mapstructure:"busy_reply"`

	// Debug logs every Bot API request.
	Debug bool `mapstructure:"debug"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = tgbotapi.APIEndpoint
	}
	if c.MaxConcurrentRuns == 0 {
		c.MaxConcurrentRuns = defaultMaxConcurrentRuns
	}
	if c.MaxPendingRuns == 0 {
		c.MaxPendingRuns = defaultMaxPendingRuns
	}
	if c.PollTimeout == 0 {
		c.PollTimeout = defaultPollTimeout
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.Greeting == "" {
		c.Greeting = DefaultGreeting
	}
	if c.BusyReply == "" {
		c.BusyReply = DefaultBusyReply
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	if c.RequestTimeout <= c.PollTimeout {
		return fmt.Errorf("telegram: request_timeout (%s) must exceed poll_timeout (%s)", c.RequestTimeout, c.PollTimeout)
	}
	return nil
}
