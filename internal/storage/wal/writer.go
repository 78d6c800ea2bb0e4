package wal

import (
	"fmt"
	"os"
	"sync"

	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
)

// Option configures a Log.
type Option func(*Log)

// WithSync controls whether every append is fsynced before returning.
// Enabled by default.
func WithSync(enabled bool) Option {
	return func(l *Log) {
		l.sync = enabled
	}
}

// Log is the append-only mutation log stored at a single path.
//
// Log keeps no file handle open between calls; each Append opens the file in
// append mode, writes one line and closes it.
type Log struct {
	path string
	sync bool

	mu sync.Mutex
}

// New creates a Log bound to path. The file is created lazily by the first
// Append.
func New(path string, opts ...Option) *Log {
	l := &Log{
		path: path,
		sync: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the log file path.
func (l *Log) Path() string { return l.path }

// Append writes one record for key. An Absent value records a deletion.
func (l *Log) Append(key string, v domain.Value) error {
	return l.AppendRecord(Record{Key: key, Value: v})
}

// AppendRecord writes rec as one line at the end of the log.
func (l *Log) AppendRecord(rec Record) error {
	line, err := encodeLine(rec)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("wal: open: %w", err)
	}
	if _, err := file.Write(line); err != nil {
		file.Close()
		return fmt.Errorf("wal: write: %w", err)
	}
	if l.sync {
		if err := file.Sync(); err != nil {
			file.Close()
			return fmt.Errorf("wal: sync: %w", err)
		}
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("wal: close: %w", err)
	}
	return nil
}
