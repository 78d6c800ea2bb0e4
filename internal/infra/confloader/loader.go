package confloader

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "NBDB_"

// Loader loads configuration from multiple sources.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
	dotenv    []string
	loaded    bool
}

// Option is a function that configures the Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets the configuration file path.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithDotEnv names dotenv files merged into the process environment
// before environment variables are read. Missing files are ignored.
func WithDotEnv(paths ...string) Option {
	return func(l *Loader) {
		l.dotenv = append(l.dotenv, paths...)
	}
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load loads configuration from the file and the environment, applies
// overrides and unmarshals the result into target. Fields of target that
// no source mentions keep their current value, so callers pass a struct
// pre-filled with defaults.
func (l *Loader) Load(target any, overrides map[string]any) error {
	if l.filePath != "" {
		if err := l.LoadFile(l.filePath); err != nil {
			return fmt.Errorf("load config file: %w", err)
		}
	}

	if err := l.LoadDotEnv(l.dotenv...); err != nil {
		return err
	}

	if err := l.LoadEnv(); err != nil {
		return err
	}

	if len(overrides) > 0 {
		if err := l.LoadMap(overrides); err != nil {
			return err
		}
	}

	if err := l.Unmarshal(target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	l.loaded = true
	return nil
}

// LoadFile loads configuration from a YAML file.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}

	if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("load file %s: %w", path, err)
	}

	return nil
}

// LoadDotEnv merges dotenv files into the process environment. Variables
// already set in the environment win over the file.
func (l *Loader) LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load dotenv %s: %w", p, err)
		}
	}
	return nil
}

// LoadEnv loads configuration from environment variables.
//
// The first underscore after the prefix separates the section from the
// key, so NBDB_STORE_FLUSH_INTERVAL maps to store.flush_interval.
func (l *Loader) LoadEnv() error {
	provider := env.Provider(l.envPrefix, ".", l.envKey)
	if err := l.k.Load(provider, nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	return nil
}

func (l *Loader) envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, l.envPrefix))
	return strings.Replace(s, "_", ".", 1)
}

// LoadMap loads configuration from a map of dotted keys.
func (l *Loader) LoadMap(data map[string]any) error {
	if err := l.k.Load(mapProvider(data), nil); err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	return nil
}

// Unmarshal unmarshals the loaded configuration into the target struct
// using koanf tags.
func (l *Loader) Unmarshal(target any) error {
	return l.k.Unmarshal("", target)
}

// Get returns a value from the configuration by key.
func (l *Loader) Get(key string) any {
	return l.k.Get(key)
}

// GetString returns a string value from the configuration.
func (l *Loader) GetString(key string) string {
	return l.k.String(key)
}

// GetInt returns an int value from the configuration.
func (l *Loader) GetInt(key string) int {
	return l.k.Int(key)
}

// GetBool returns a bool value from the configuration.
func (l *Loader) GetBool(key string) bool {
	return l.k.Bool(key)
}

// IsLoaded reports whether Load completed.
func (l *Loader) IsLoaded() bool {
	return l.loaded
}

// FilePath returns the configured YAML file, if any.
func (l *Loader) FilePath() string {
	return l.filePath
}

// All returns all configuration as a flat map of dotted keys.
func (l *Loader) All() map[string]any {
	return l.k.All()
}

// Keys returns all configuration keys.
func (l *Loader) Keys() []string {
	return l.k.Keys()
}
