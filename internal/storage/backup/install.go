package backup

import (
	"fmt"

	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
	"github.com/PerchunPak/nonbloat-db/internal/storage/codec"
	"github.com/PerchunPak/nonbloat-db/internal/storage/snapshot"
	"github.com/PerchunPak/nonbloat-db/internal/storage/wal"
)

// Install replaces the store at path with obj. The store must not be open.
//
// The pending log is dropped once the restored snapshot is on disk so it
// cannot be replayed on top of it. A failed save leaves the log untouched.
func Install(path string, obj *domain.Object, indent codec.Indent) (*snapshot.Info, error) {
	mgr, err := snapshot.NewManager(snapshot.Config{Path: path, Indent: indent})
	if err != nil {
		return nil, err
	}
	info, err := mgr.Save(obj)
	if err != nil {
		return nil, fmt.Errorf("backup: install: %w", err)
	}

	if err := wal.New(wal.PathFor(path)).Clear(); err != nil {
		return nil, fmt.Errorf("backup: drop log: %w", err)
	}
	return info, nil
}
