package wal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Clear removes the log. A missing log is not an error.
func (l *Log) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("wal: clear: %w", err)
	}
	return nil
}

// Exists reports whether the log file is present.
func (l *Log) Exists() bool {
	_, err := os.Stat(l.path)
	return err == nil
}

// Size returns the log size in bytes, or 0 if there is no log.
func (l *Log) Size() (int64, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("wal: stat: %w", err)
	}
	return info.Size(), nil
}

// Compact folds the log down to the last record per key, keeping the order
// in which each surviving key was last written.
func Compact(records []Record) []Record {
	last := make(map[string]int, len(records))
	for i, r := range records {
		last[r.Key] = i
	}
	out := make([]Record, 0, len(last))
	for i, r := range records {
		if last[r.Key] == i {
			out = append(out, r)
		}
	}
	return out
}
