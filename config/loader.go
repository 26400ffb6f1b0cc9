package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrNotFound is returned when an explicitly named config or .env file
// does not exist.
var ErrNotFound = errors.New("config: file not found")

type loaderOptions struct {
	configFile string
	envFile    string
	searchDirs []string
}

// LoaderOption customizes LoadConfig.
type LoaderOption func(*loaderOptions)

// WithConfigFile names the YAML file to read instead of searching for one.
func WithConfigFile(path string) LoaderOption {
	return func(o *loaderOptions) { o.configFile = path }
}

// WithEnvFile names the .env file to read instead of searching for one.
func WithEnvFile(path string) LoaderOption {
	return func(o *loaderOptions) { o.envFile = path }
}

// WithSearchDirs replaces the directories searched for config.yml and
// .env files. Directories are tried in order.
func WithSearchDirs(dirs ...string) LoaderOption {
	return func(o *loaderOptions) { o.searchDirs = dirs }
}

// DefaultSearchDirs lists where a service's files are looked for when no
// explicit path is given: its cmd directory, the working directory, and
// /etc/<service>.
func DefaultSearchDirs(serviceName string) []string {
	return []string{
		filepath.Join("cmd", serviceName),
		".",
		filepath.Join("/etc", serviceName),
	}
}

// LoadConfig fills cfg from, in increasing precedence, the service's
// config.yml, a .env file, and the process environment.
//
// Every field reachable through mapstructure tags is bound to an
// environment variable named after its dotted key, upper-cased with dots
// turned into underscores: convertio.api_key is read from
// CONVERTIO_API_KEY. Variables already set in the environment win over
// the .env file.
func LoadConfig(serviceName string, cfg any, opts ...LoaderOption) error {
	o := loaderOptions{searchDirs: DefaultSearchDirs(serviceName)}
	for _, opt := range opts {
		opt(&o)
	}

	configFile, err := resolve(o.configFile, o.searchDirs, "config.yml")
	if err != nil {
		return err
	}
	envFile, err := resolve(o.envFile, o.searchDirs, ".env."+serviceName, ".env")
	if err != nil {
		return err
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	for _, key := range EnvKeys(cfg) {
		if err := v.BindEnv(key, envName(key)); err != nil {
			return fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: decode %s settings: %w", serviceName, err)
	}
	return nil
}

// resolve returns explicit when set, failing if it is missing. Otherwise
// it returns the first of names found in dirs, or "" when none exists.
func resolve(explicit string, dirs []string, names ...string) (string, error) {
	if explicit != "" {
		if !exists(explicit) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, explicit)
		}
		return explicit, nil
	}
	for _, name := range names {
		for _, dir := range dirs {
			if p := filepath.Join(dir, name); exists(p) {
				return p, nil
			}
		}
	}
	return "", nil
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

var durationType = reflect.TypeOf(time.Duration(0))

// EnvKeys lists the dotted keys of every leaf field in cfg, following
// mapstructure tags. Squashed structs contribute their fields at the
// parent's level and fields tagged "-" are skipped.
func EnvKeys(cfg any) []string {
	t := reflect.TypeOf(cfg)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	var keys []string
	collectKeys(t, "", &keys)
	return keys
}

func collectKeys(t reflect.Type, prefix string, keys *[]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, squash := fieldKey(f)
		if name == "-" {
			continue
		}

		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}

		switch {
		case ft.Kind() == reflect.Struct && ft != durationType && ft != reflect.TypeOf(time.Time{}):
			if squash {
				collectKeys(ft, prefix, keys)
			} else {
				collectKeys(ft, key, keys)
			}
		case ft.Kind() == reflect.Map, ft.Kind() == reflect.Func, ft.Kind() == reflect.Interface:
		default:
			*keys = append(*keys, key)
		}
	}
}

func fieldKey(f reflect.StructField) (name string, squash bool) {
	tag := f.Tag.Get("mapstructure")
	name, rest, _ := strings.Cut(tag, ",")
	squash = strings.Contains(rest, "squash")
	if name == "" {
		name = strings.ToLower(f.Name)
	}
	return name, squash
}
