package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

type testConvertio struct {
	APIKey       string        `mapstructure:"api_key"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Headers      map[string]string
	Hook         func() `mapstructure:"-"`
}

type testAppConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Convertio     testConvertio `mapstructure:"convertio"`
	APIToken      string        `mapstructure:"api_token"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestEnvKeys(t *testing.T) {
	keys := EnvKeys(&testAppConfig{})
	for _, want := range []string{"name", "environment", "logging.level", "convertio.api_key", "convertio.poll_interval", "api_token"} {
		if !slices.Contains(keys, want) {
			t.Errorf("missing key %q in %v", want, keys)
		}
	}
	for _, unwanted := range []string{"serviceconfig.name", "convertio.headers", "convertio.hook"} {
		if slices.Contains(keys, unwanted) {
			t.Errorf("unexpected key %q", unwanted)
		}
	}
	if EnvKeys("not a struct") != nil {
		t.Error("expected no keys for a non-struct")
	}
	if got := envName("convertio.api_key"); got != "CONVERTIO_API_KEY" {
		t.Errorf("envName = %q", got)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", "name: voicescribe\nenvironment: staging\nconvertio:\n  poll_interval: 5s\n")

	var cfg testAppConfig
	if err := LoadConfig("voicescribe", &cfg, WithConfigFile(path), WithSearchDirs()); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "voicescribe" || cfg.Environment != "staging" {
		t.Errorf("got %q/%q", cfg.Name, cfg.Environment)
	}
	if cfg.Convertio.PollInterval != 5*time.Second {
		t.Errorf("poll interval = %s", cfg.Convertio.PollInterval)
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yml", "environment: staging\nconvertio:\n  api_key: from-yaml\n  poll_interval: 5s\n")
	writeFile(t, dir, ".env", "CONVERTIO_POLL_INTERVAL=7s\nCONVERTIO_API_KEY=from-dotenv\nAPI_TOKEN=legacy\n")
	t.Setenv("CONVERTIO_API_KEY", "from-env")
	t.Cleanup(func() {
		os.Unsetenv("CONVERTIO_POLL_INTERVAL")
		os.Unsetenv("API_TOKEN")
	})

	var cfg testAppConfig
	if err := LoadConfig("voicescribe", &cfg, WithSearchDirs(dir)); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Convertio.APIKey != "from-env" {
		t.Errorf("api key = %q, process env should win", cfg.Convertio.APIKey)
	}
	if cfg.Convertio.PollInterval != 7*time.Second {
		t.Errorf("poll interval = %s, .env should beat yaml", cfg.Convertio.PollInterval)
	}
	if cfg.Environment != "staging" || cfg.APIToken != "legacy" {
		t.Errorf("environment=%q api_token=%q", cfg.Environment, cfg.APIToken)
	}
}

func TestLoadConfigServiceEnvFileFirst(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "ENVIRONMENT=development\n")
	writeFile(t, dir, ".env.voicescribe", "ENVIRONMENT=production\n")
	t.Cleanup(func() { os.Unsetenv("ENVIRONMENT") })

	var cfg testAppConfig
	if err := LoadConfig("voicescribe", &cfg, WithSearchDirs(dir)); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Environment != "production" {
		t.Errorf("environment = %q", cfg.Environment)
	}
}

func TestLoadConfigNothingFound(t *testing.T) {
	var cfg testAppConfig
	if err := LoadConfig("voicescribe", &cfg, WithSearchDirs(t.TempDir())); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "" {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.yml", "convertio: [unclosed\n")

	tests := []struct {
		name string
		opts []LoaderOption
		want error
	}{
		{"missing config", []LoaderOption{WithConfigFile(filepath.Join(dir, "nope.yml"))}, ErrNotFound},
		{"missing env", []LoaderOption{WithEnvFile(filepath.Join(dir, "nope.env"))}, ErrNotFound},
		{"invalid yaml", []LoaderOption{WithConfigFile(bad)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg testAppConfig
			err := LoadConfig("voicescribe", &cfg, append([]LoaderOption{WithSearchDirs()}, tt.opts...)...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
