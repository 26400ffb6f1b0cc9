package voice

import (
	"fmt"
	"path"
	"time"
)

const (
	DefaultRawSlot       = "voice.ogg"
	DefaultConvertedSlot = "voice.wav"
)

// Config configures the Orchestrator.
type Config struct {
	// SuppressPartials forwards only the final segment of each run.
	SuppressPartials bool `mapstructure:"suppress_partials"`

	// RunTimeout bounds a whole run. Zero leaves runs unbounded, in which
	// case only the caller's context ends a conversion that never finishes.
	RunTimeout time.Duration `mapstructure:"run_timeout" validate:"gte=0"`

	RawSlot       string `mapstructure:"raw_slot"`
	ConvertedSlot string `mapstructure:"converted_slot"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.RawSlot == "" {
		c.RawSlot = DefaultRawSlot
	}
	if c.ConvertedSlot == "" {
		c.ConvertedSlot = DefaultConvertedSlot
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.RunTimeout < 0 {
		return fmt.Errorf("voice: run_timeout must be non-negative")
	}
	for _, name := range []string{c.RawSlot, c.ConvertedSlot} {
		if name != path.Base(name) || name == "." || name == "/" {
			return fmt.Errorf("voice: slot name %q must be a plain file name", name)
		}
	}
	if c.RawSlot == c.ConvertedSlot {
		return fmt.Errorf("voice: raw and converted slots must differ")
	}
	return nil
}
