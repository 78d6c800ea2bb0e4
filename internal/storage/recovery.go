package storage

import (
	"context"
	"errors"
	"time"

	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
	"github.com/PerchunPak/nonbloat-db/internal/storage/wal"
)

// restore rebuilds the mapping from disk.
//
// Recovery process:
//  1. Load the snapshot, preferring its temp copy
//  2. Replay the log on top, without appending anything
//
// The log is left in place; the next successful Write clears it.
func (e *Engine) restore(ctx context.Context) error {
	startTime := time.Now()
	e.logger.Info("storage recovery started")

	data, info, err := e.snapshot.Load()
	if err != nil {
		e.logger.Error("load snapshot failed", "error", err)
		return classify(err)
	}
	if info.Path == "" {
		e.logger.Info("no snapshot found, starting with empty store")
	} else {
		e.logger.Info("snapshot loaded",
			"file", info.Path,
			"keys", info.Keys,
			"size_bytes", info.Size,
			"recovered", info.Recovered)
		e.metrics.SnapshotBytes.Set(float64(info.Size))
	}
	if info.Recovered {
		e.metrics.RecoveredFromTemp.Inc()
	}
	e.data = data

	skipped := 0
	replayed, err := e.log.Replay(func(r wal.Record) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := e.apply(r.Key, r.Value, true)
		if errors.Is(err, domain.ErrKeyNotFound) {
			skipped++
			e.logger.Warn("skipping delete of missing key during replay", "key", r.Key)
			return nil
		}
		return err
	})
	if err != nil {
		e.logger.Error("replay log failed", "replayed", replayed, "error", err)
		return classify(err)
	}
	e.metrics.ReplayedRecords.Add(float64(replayed))

	e.stats.mu.Lock()
	e.stats.recovered = info.Recovered
	e.stats.replayed = replayed
	e.stats.snapshotBytes = info.Size
	e.stats.mu.Unlock()

	e.logger.Info("storage recovery completed",
		"keys", e.data.Len(),
		"replayed", replayed,
		"skipped", skipped,
		"duration", time.Since(startTime))
	return nil
}
