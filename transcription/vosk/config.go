package vosk

import (
	"errors"
	"fmt"
)

// ProviderName is the registered name of the Vosk backend.
const ProviderName = "vosk"

// DefaultModelPath matches the directory name of the small Russian model
// distributed by the Vosk project.
const DefaultModelPath = "vosk-model-small-ru"

// ErrUnavailable is returned when the binary was built without Vosk support.
var ErrUnavailable = errors.New("vosk: support not compiled in (build with -tags vosk)")

// Config configures model loading.
type Config struct {
	// ModelPath is the directory of an unpacked Vosk model.
	ModelPath string `mapstructure:"model_path"`
	// LogLevel is passed to vosk.SetLogLevel; -1 silences Kaldi output.
	LogLevel int `mapstructure:"log_level"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.ModelPath == "" {
		c.ModelPath = DefaultModelPath
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("vosk: model_path is required")
	}
	return nil
}

// configFromMap builds a Config from a provider factory map.
func configFromMap(m map[string]any) Config {
	var cfg Config
	if v, ok := m["model_path"].(string); ok {
		cfg.ModelPath = v
	}
	if v, ok := m["log_level"].(int); ok {
		cfg.LogLevel = v
	}
	return cfg
}
