package storage

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
	"github.com/PerchunPak/nonbloat-db/internal/storage/snapshot"
	"github.com/PerchunPak/nonbloat-db/internal/storage/wal"
	"github.com/PerchunPak/nonbloat-db/internal/telemetry/metric"
)

// Engine is the storage engine that combines the in-memory mapping, the
// mutation log and the snapshot file.
type Engine struct {
	cfg Config

	// Components
	log       *wal.Log
	snapshot  *snapshot.Manager
	metrics   *metric.Registry
	collector *metric.Collector

	logger *slog.Logger

	// mu guards data. Set holds it exclusively across validate, append and
	// apply so the log order equals the call order.
	mu   sync.RWMutex
	data *domain.Object

	// writeMu serializes snapshot writes.
	writeMu sync.Mutex

	stats engineStats

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error

	// Shutdown of the background flusher. Nil when disabled.
	stopCh chan struct{}
	doneCh chan struct{}
}

type engineStats struct {
	mu            sync.Mutex
	recovered     bool
	replayed      int
	snapshotBytes int64
	lastWrite     time.Time
	lastWriteErr  error
}

// Stats describes the engine state.
type Stats struct {
	Path          string    `json:"path" yaml:"path"`
	Keys          int       `json:"keys" yaml:"keys"`
	LogBytes      int64     `json:"log_bytes" yaml:"log_bytes" table:"bytes"`
	SnapshotBytes int64     `json:"snapshot_bytes" yaml:"snapshot_bytes" table:"bytes"`
	Recovered     bool      `json:"recovered" yaml:"recovered"`
	Replayed      int       `json:"replayed" yaml:"replayed"`
	LastWrite     time.Time `json:"last_write,omitempty" yaml:"last_write,omitempty"`
	LastWriteErr  string    `json:"last_write_error,omitempty" yaml:"last_write_error,omitempty"`
}

// Open opens the store at path, recovering any existing state.
func Open(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	cfg := DefaultConfig(path)
	for _, opt := range opts {
		opt(&cfg)
	}
	return New(ctx, cfg)
}

// New creates an engine from cfg, recovers existing state and starts the
// background flusher when FlushInterval is positive.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	logger := cfg.Logger.With("component", "storage", "path", cfg.Path)

	snapMgr, err := snapshot.NewManager(snapshot.Config{
		Path:   cfg.Path,
		Indent: cfg.Indent,
		Codec:  cfg.Codec,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, domain.ErrInvalidConfig.WithCause(err)
	}

	metrics, err := metric.NewRegistry(cfg.Registerer)
	if err != nil {
		return nil, domain.ErrInvalidConfig.WithDetails("register metrics").WithCause(err)
	}

	e := &Engine{
		cfg:      cfg,
		log:      wal.New(wal.PathFor(cfg.Path), wal.WithSync(cfg.SyncLog)),
		snapshot: snapMgr,
		metrics:  metrics,
		logger:   logger,
		data:     domain.NewObject(),
	}

	if err := e.restore(ctx); err != nil {
		return nil, err
	}

	// Only a collector this engine registered is unregistered on Close.
	collector := metric.NewCollector(e)
	owned, err := metrics.Register(collector)
	if err != nil {
		logger.Warn("register store collector failed", "error", err)
	}
	if owned {
		e.collector = collector
	}

	if cfg.FlushInterval > 0 {
		e.stopCh = make(chan struct{})
		e.doneCh = make(chan struct{})
		go e.backgroundLoop(cfg.FlushInterval)
	}

	return e, nil
}

// Get returns the value stored under key.
func (e *Engine) Get(ctx context.Context, key string) (domain.Value, error) {
	if err := e.checkUsable(ctx); err != nil {
		return domain.Value{}, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	v, ok := e.data.Get(key)
	if !ok {
		return domain.Value{}, domain.ErrKeyNotFound.WithDetails(key)
	}
	return v, nil
}

// Set stores v under key. An Absent v deletes the key and fails with
// ErrKeyNotFound when it is missing.
//
// The mutation is appended to the log before it is applied; if the append
// fails nothing changes in memory.
func (e *Engine) Set(ctx context.Context, key string, v domain.Value) error {
	if err := e.checkUsable(ctx); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.apply(key, v, false)
}

// Delete removes key.
func (e *Engine) Delete(ctx context.Context, key string) error {
	return e.Set(ctx, key, domain.Absent())
}

// apply performs one mutation. Caller must hold mu exclusively, except
// during recovery when the engine is not shared yet.
func (e *Engine) apply(key string, v domain.Value, replay bool) error {
	deleting := v.IsAbsent()
	if deleting && !e.data.Has(key) {
		return domain.ErrKeyNotFound.WithDetails(key)
	}

	if !replay {
		if err := e.log.Append(key, v); err != nil {
			e.metrics.LogAppends.WithLabelValues(metric.ResultError).Inc()
			e.logger.Error("append to log failed", "key", key, "error", err)
			return classify(err)
		}
		e.metrics.LogAppends.WithLabelValues(metric.ResultOK).Inc()
	}

	if deleting {
		e.data.Delete(key)
		e.metrics.Sets.WithLabelValues(metric.OpDelete).Inc()
	} else {
		e.data.Set(key, v.Clone())
		e.metrics.Sets.WithLabelValues(metric.OpSet).Inc()
	}
	return nil
}

// Write persists the whole mapping as a new snapshot and clears the log.
func (e *Engine) Write(ctx context.Context) error {
	if err := e.checkUsable(ctx); err != nil {
		return err
	}
	return e.write(ctx, metric.TriggerManual)
}

func (e *Engine) write(ctx context.Context, trigger string) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	// Hold the read lock for the whole sequence so no record can be appended
	// between encoding the snapshot and clearing the log.
	e.mu.RLock()
	defer e.mu.RUnlock()

	start := time.Now()
	info, err := e.snapshot.Save(e.data)
	if err == nil {
		err = e.log.Clear()
	}
	elapsed := time.Since(start)

	e.stats.mu.Lock()
	e.stats.lastWriteErr = err
	if err == nil {
		e.stats.lastWrite = time.Now()
		e.stats.snapshotBytes = info.Size
	}
	e.stats.mu.Unlock()

	if err != nil {
		e.metrics.Writes.WithLabelValues(metric.ResultError, trigger).Inc()
		return classify(err)
	}

	e.metrics.Writes.WithLabelValues(metric.ResultOK, trigger).Inc()
	e.metrics.WriteDuration.Observe(elapsed.Seconds())
	e.metrics.SnapshotBytes.Set(float64(info.Size))
	e.logger.Debug("snapshot written",
		"trigger", trigger,
		"keys", info.Keys,
		"size_bytes", info.Size,
		"duration", elapsed)
	return nil
}

// Keys returns the keys in insertion order.
func (e *Engine) Keys() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.data.Keys()
}

// Len returns the number of keys.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.data.Len()
}

// Snapshot returns a deep copy of the mapping.
func (e *Engine) Snapshot() *domain.Object {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.data.Clone()
}

// Path returns the snapshot path.
func (e *Engine) Path() string { return e.cfg.Path }

// LogSize returns the size of the pending mutation log.
func (e *Engine) LogSize() (int64, error) { return e.log.Size() }

// PendingRecords returns the records logged since the last Write.
func (e *Engine) PendingRecords() ([]wal.Record, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	records, err := e.log.ReadAll()
	if err != nil {
		return nil, classify(err)
	}
	return records, nil
}

// Stats returns a point-in-time view of the engine.
func (e *Engine) Stats() Stats {
	logBytes, _ := e.log.Size()
	keys := e.Len()

	e.stats.mu.Lock()
	defer e.stats.mu.Unlock()

	s := Stats{
		Path:          e.cfg.Path,
		Keys:          keys,
		LogBytes:      logBytes,
		SnapshotBytes: e.stats.snapshotBytes,
		Recovered:     e.stats.recovered,
		Replayed:      e.stats.replayed,
		LastWrite:     e.stats.lastWrite,
	}
	if e.stats.lastWriteErr != nil {
		s.LastWriteErr = e.stats.lastWriteErr.Error()
	}
	return s
}

// Metrics returns the engine metrics.
func (e *Engine) Metrics() *metric.Registry { return e.metrics }

// Close stops the background flusher, waiting for an in-progress write, and
// marks the engine closed. Close is idempotent.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.logger.Info("shutting down storage engine")
		e.closed.Store(true)

		if e.stopCh != nil {
			close(e.stopCh)
			<-e.doneCh
		}

		if e.cfg.WriteOnClose {
			if err := e.write(context.Background(), metric.TriggerClose); err != nil {
				e.logger.Error("final write failed", "error", err)
				e.closeErr = err
			}
		}

		if e.collector != nil {
			e.metrics.Unregister(e.collector)
		}
		e.logger.Info("storage engine shutdown complete")
	})
	return e.closeErr
}

func (e *Engine) checkUsable(ctx context.Context) error {
	if e.closed.Load() {
		return domain.ErrClosed
	}
	return ctx.Err()
}

// classify maps internal errors onto the public error set. Domain errors and
// context errors pass through; everything else is an I/O failure.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if domain.IsDomainError(err, "") {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return domain.ErrIOFailure.WithCause(err)
}
