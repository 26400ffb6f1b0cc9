package main

import (
	"fmt"

	"github.com/kbukum/voicescribe/config"
	"github.com/kbukum/voicescribe/conversion/convertio"
	"github.com/kbukum/voicescribe/fetch"
	"github.com/kbukum/voicescribe/observability"
	"github.com/kbukum/voicescribe/server"
	"github.com/kbukum/voicescribe/storage"
	"github.com/kbukum/voicescribe/telegram"
	"github.com/kbukum/voicescribe/transcription/vosk"
	"github.com/kbukum/voicescribe/version"
	"github.com/kbukum/voicescribe/voice"
)

const serviceName = "voicescribe"

// AppConfig is the full configuration of the bot.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Telegram      telegram.Config      `yaml:"telegram" mapstructure:"telegram"`
	Convertio     convertio.Config     `yaml:"convertio" mapstructure:"convertio"`
	Fetch         fetch.Config         `yaml:"fetch" mapstructure:"fetch"`
	Storage       storage.Config       `yaml:"storage" mapstructure:"storage"`
	Model         ModelConfig          `yaml:"model" mapstructure:"model"`
	Voice         voice.Config         `yaml:"voice" mapstructure:"voice"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`

	// APIToken is the legacy environment name (API_TOKEN) of telegram.token.
	APIToken string `yaml:"api_token" mapstructure:"api_token"`
}

// ModelConfig selects and configures the speech model backend.
type ModelConfig struct {
	Provider string      `yaml:"provider" mapstructure:"provider"`
	Vosk     vosk.Config `yaml:"vosk" mapstructure:"vosk"`
}

// Options renders the backend settings as a provider factory map.
func (m ModelConfig) Options() map[string]any {
	return map[string]any{
		"model_path": m.Vosk.ModelPath,
		"log_level":  m.Vosk.LogLevel,
	}
}

// ApplyDefaults fills every section. Telegram.Token falls back to APIToken.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	if c.Version == "" {
		c.Version = version.GetShortVersion()
	}
	c.ServiceConfig.ApplyDefaults()

	if c.Telegram.Token == "" {
		c.Telegram.Token = c.APIToken
	}
	c.Telegram.ApplyDefaults()
	c.Convertio.ApplyDefaults()
	c.Fetch.ApplyDefaults()
	c.Storage.ApplyDefaults()
	if c.Model.Provider == "" {
		c.Model.Provider = vosk.ProviderName
	}
	c.Model.Vosk.ApplyDefaults()
	c.Voice.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Observability.ApplyDefaults(c.Name, c.Version, c.Environment)
}

// Validate checks every section.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}

	checks := []struct {
		section string
		check   func() error
	}{
		{"telegram", c.Telegram.Validate},
		{"convertio", c.Convertio.Validate},
		{"fetch", c.Fetch.Validate},
		{"storage", c.Storage.Validate},
		{"model", c.Model.Vosk.Validate},
		{"voice", c.Voice.Validate},
		{"server", c.Server.Validate},
		{"observability", c.Observability.Validate},
	}
	for _, ch := range checks {
		if err := ch.check(); err != nil {
			return fmt.Errorf("config.%s: %w", ch.section, err)
		}
	}
	return nil
}
