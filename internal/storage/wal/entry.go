package wal

import (
	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
)

// FileSuffix is appended to the snapshot path to name its log.
const FileSuffix = ".log.temp"

// PathFor returns the log path that belongs to the snapshot at dbPath.
func PathFor(dbPath string) string { return dbPath + FileSuffix }

// Record is one logged mutation.
type Record struct {
	Key   string
	Value domain.Value
}

// NewSetRecord creates a record that stores v under key.
func NewSetRecord(key string, v domain.Value) Record {
	return Record{Key: key, Value: v}
}

// NewDeleteRecord creates a record that removes key.
func NewDeleteRecord(key string) Record {
	return Record{Key: key, Value: domain.Absent()}
}

// IsDelete reports whether the record removes its key.
func (r Record) IsDelete() bool { return r.Value.IsAbsent() }
