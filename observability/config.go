package observability

import (
	"fmt"
	"time"
)

// Export holds the settings shared by the trace and metric exporters.
type Export struct {
	// Enabled installs an OTLP exporter. Disabled exporters leave the
	// global otel providers as no-ops.
	Enabled        bool   `yaml:"enabled" mapstructure:"enabled"`
	ServiceName    string `yaml:"service_name" mapstructure:"service_name"`
	ServiceVersion string `yaml:"service_version" mapstructure:"service_version"`
	Environment    string `yaml:"environment" mapstructure:"environment"`
	// Endpoint is the OTLP/HTTP collector as host:port.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure bool   `yaml:"insecure" mapstructure:"insecure"`
}

// TracerConfig configures span export.
type TracerConfig struct {
	Export `yaml:",inline" mapstructure:",squash"`
	// SampleRate is the fraction of new traces kept, 0 to 1.
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MeterConfig configures metric export.
type MeterConfig struct {
	Export   `yaml:",inline" mapstructure:",squash"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// Config groups the tracing and metrics sections.
type Config struct {
	Tracing TracerConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MeterConfig  `yaml:"metrics" mapstructure:"metrics"`
}

const (
	defaultEndpoint = "localhost:4318"
	defaultInterval = 15 * time.Second
)

// ApplyDefaults fills the service identity into both exporters and sets
// the collector endpoint and export interval when unset. Enabled is never
// changed.
func (c *Config) ApplyDefaults(serviceName, version, environment string) {
	for _, e := range []*Export{&c.Tracing.Export, &c.Metrics.Export} {
		e.ServiceName = orDefault(e.ServiceName, serviceName)
		e.ServiceVersion = orDefault(e.ServiceVersion, version)
		e.Environment = orDefault(e.Environment, environment)
		e.Endpoint = orDefault(e.Endpoint, defaultEndpoint)
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = defaultInterval
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if r := c.Tracing.SampleRate; r < 0 || r > 1 {
		return fmt.Errorf("observability.tracing.sample_rate must be within [0, 1], got %v", r)
	}
	if c.Metrics.Interval < 0 {
		return fmt.Errorf("observability.metrics.interval must not be negative")
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
