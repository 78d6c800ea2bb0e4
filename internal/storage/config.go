package storage

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
	"github.com/PerchunPak/nonbloat-db/internal/storage/codec"
)

// DefaultFlushInterval is used by callers that enable background flushing
// without choosing an interval.
const DefaultFlushInterval = 30 * time.Second

// Config configures the storage engine.
type Config struct {
	// Path is the snapshot file. The temp copy and the log live next to it.
	Path string

	// Indent selects the snapshot layout.
	Indent codec.Indent

	// FlushInterval is the period of background snapshot writes. Zero
	// disables the flusher.
	FlushInterval time.Duration

	// SyncLog fsyncs every log append before Set returns.
	SyncLog bool

	// WriteOnClose writes a final snapshot during Close.
	WriteOnClose bool

	// Logger is the structured logger.
	Logger *slog.Logger

	// Registerer receives the engine metrics. Nil disables registration.
	Registerer prometheus.Registerer

	// Codec overrides the snapshot codec.
	Codec codec.Codec
}

// DefaultConfig returns the default configuration for the store at path.
func DefaultConfig(path string) Config {
	return Config{
		Path:    path,
		Indent:  codec.NoIndent(),
		SyncLog: true,
		Logger:  slog.Default(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Path == "" {
		return domain.ErrInvalidConfig.WithDetails("path is required")
	}
	if c.FlushInterval < 0 {
		return domain.ErrInvalidConfig.WithDetails(fmt.Sprintf("flush interval must not be negative, got %s", c.FlushInterval))
	}
	return nil
}

// Option adjusts a Config.
type Option func(*Config)

// WithIndent sets the snapshot layout.
func WithIndent(indent codec.Indent) Option {
	return func(c *Config) { c.Indent = indent }
}

// WithFlushInterval enables background writes every d.
func WithFlushInterval(d time.Duration) Option {
	return func(c *Config) { c.FlushInterval = d }
}

// WithSyncLog controls fsync on every log append.
func WithSyncLog(enabled bool) Option {
	return func(c *Config) { c.SyncLog = enabled }
}

// WithWriteOnClose makes Close write a final snapshot.
func WithWriteOnClose(enabled bool) Option {
	return func(c *Config) { c.WriteOnClose = enabled }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithRegisterer registers the engine metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Config) { c.Registerer = reg }
}

// WithCodec overrides the snapshot codec.
func WithCodec(c codec.Codec) Option {
	return func(cfg *Config) { cfg.Codec = c }
}
