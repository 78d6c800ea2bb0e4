package config

import "time"

// Config is the configuration for the nbdb command.
type Config struct {
	Store StoreConfig `koanf:"store" yaml:"store"`
	Log   LogConfig   `koanf:"log" yaml:"log"`
}

// StoreConfig selects the database file and how it is persisted.
type StoreConfig struct {
	Path          string        `koanf:"path" yaml:"path"`
	Indent        string        `koanf:"indent" yaml:"indent"` // "", "none", "2", "\t", any literal
	FlushInterval time.Duration `koanf:"flush_interval" yaml:"flush_interval"`
	SyncLog       bool          `koanf:"sync_log" yaml:"sync_log"`
	WriteOnClose  bool          `koanf:"write_on_close" yaml:"write_on_close"`
}

// LogConfig configures diagnostics written to stderr.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`   // debug, info, warn, error
	Format string `koanf:"format" yaml:"format"` // text, json
}

// DefaultStorePath is the database file used when none is configured.
const DefaultStorePath = "nbdb.json"

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Path:    DefaultStorePath,
			SyncLog: true,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}
