package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
	"github.com/PerchunPak/nonbloat-db/internal/infra/confloader"
	"github.com/PerchunPak/nonbloat-db/internal/storage"
	"github.com/PerchunPak/nonbloat-db/internal/storage/codec"
)

// DefaultDotEnv is read from the working directory before the environment.
const DefaultDotEnv = ".env"

// DefaultConfigPath returns the per-user config file path.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "nbdb", "config.yaml")
}

// Load builds the configuration from defaults, the file at path, .env,
// NBDB_* variables and overrides, in that order. A missing file is only
// an error when path was given explicitly.
func Load(path string, overrides map[string]any) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	opts := []confloader.Option{confloader.WithDotEnv(DefaultDotEnv)}
	if _, err := os.Stat(path); err == nil {
		opts = append(opts, confloader.WithConfigFile(path))
	} else if explicit {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg := Default()
	if err := confloader.NewLoader(opts...).Load(cfg, overrides); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Verify checks the configuration.
func (c *Config) Verify() error {
	var problems []string
	if c.Store.Path == "" {
		problems = append(problems, "store.path is required")
	}
	if c.Store.FlushInterval < 0 {
		problems = append(problems, fmt.Sprintf("store.flush_interval must not be negative, got %s", c.Store.FlushInterval))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log.format %q is not one of text, json", c.Log.Format))
	}
	if len(problems) > 0 {
		return domain.ErrInvalidConfig.WithDetails(strings.Join(problems, "; "))
	}
	return nil
}

// StorageOptions converts the store section into engine options.
func (c *Config) StorageOptions() []storage.Option {
	return []storage.Option{
		storage.WithIndent(codec.ParseIndent(c.Store.Indent)),
		storage.WithFlushInterval(c.Store.FlushInterval),
		storage.WithSyncLog(c.Store.SyncLog),
		storage.WithWriteOnClose(c.Store.WriteOnClose),
	}
}

// Save writes cfg as YAML, creating parent directories.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("config: %s already exists", path)
		}
		return fmt.Errorf("config: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("config: %w", err)
	}
	return f.Close()
}
