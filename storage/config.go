package storage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kbukum/voicescribe/logger"
	"github.com/kbukum/voicescribe/validation"
)

const (
	ProviderLocal = "local"

	DefaultBasePath = "/tmp/voicescribe"
)

// Config selects the scratch backend.
type Config struct {
	Provider string `mapstructure:"provider" json:"provider" validate:"required,oneof=local"`

	// BasePath is the directory run scratch areas live under.
	BasePath string `mapstructure:"base_path" json:"base_path" validate:"required"`

	// SweepOnStart deletes run directories an earlier process left behind.
	SweepOnStart bool `mapstructure:"sweep_on_start" json:"sweep_on_start"`
}

func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderLocal
	}
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
}

func (c *Config) Validate() error {
	return validation.Validate(c)
}

// Opener builds a backend for one provider name.
type Opener func(cfg Config, log *logger.Logger) (Storage, error)

var openers = map[string]Opener{}

// RegisterFactory is called from a backend package's init.
func RegisterFactory(provider string, open Opener) {
	openers[provider] = open
}

// New opens the backend named by cfg.Provider. The backend package must be
// imported for its side effect, e.g. storage/local.
func New(cfg Config, log *logger.Logger) (Storage, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	open, ok := openers[cfg.Provider]
	if !ok {
		known := make([]string, 0, len(openers))
		for name := range openers {
			known = append(known, name)
		}
		sort.Strings(known)
		return nil, fmt.Errorf("storage: provider %q not linked in (have %s)", cfg.Provider, strings.Join(known, ", "))
	}

	log = log.WithComponent("storage")
	log.Info("opening scratch storage", map[string]interface{}{
		"provider":        cfg.Provider,
		logger.FieldPath: cfg.BasePath,
	})
	return open(cfg, log)
}
