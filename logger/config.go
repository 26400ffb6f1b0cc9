package logger

import "github.com/kbukum/voicescribe/validation"

// Config controls level, console rendering and the optional rotated file.
type Config struct {
	Level     string `yaml:"level" mapstructure:"level" validate:"oneof=trace debug info warn error fatal"`
	Format    string `yaml:"format" mapstructure:"format" validate:"oneof=json console pretty"`
	Output    string `yaml:"output" mapstructure:"output" validate:"oneof=stdout stderr none"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`

	// File receives every event in addition to Output. It is required when
	// Output is "none".
	File string `yaml:"file" mapstructure:"file" validate:"required_if=Output none"`

	// Rotation limits, in megabytes, files and days.
	MaxSize    int  `yaml:"max_size" mapstructure:"max_size" validate:"gte=0"`
	MaxBackups int  `yaml:"max_backups" mapstructure:"max_backups" validate:"gte=0"`
	MaxAge     int  `yaml:"max_age" mapstructure:"max_age" validate:"gte=0"`
	Compress   bool `yaml:"compress" mapstructure:"compress"`
	LocalTime  bool `yaml:"local_time" mapstructure:"local_time"`

	// Truncate empties File when the logger is initialized.
	Truncate bool `yaml:"truncate" mapstructure:"truncate"`
}

func (c *Config) ApplyDefaults() {
	for _, d := range []struct {
		field *string
		value string
	}{
		{&c.Level, "info"},
		{&c.Format, "console"},
		{&c.Output, "stdout"},
	} {
		if *d.field == "" {
			*d.field = d.value
		}
	}
	if c.MaxSize == 0 {
		c.MaxSize = 100
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = 3
	}
	if c.MaxAge == 0 {
		c.MaxAge = 28
	}
	c.Timestamp = true
}

func (c *Config) Validate() error {
	return validation.Validate(c)
}
