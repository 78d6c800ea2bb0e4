// Package storage provides the nonbloat-db storage engine.
//
// The engine keeps the whole mapping in memory and persists it as a JSON
// snapshot plus an append-only mutation log:
//
//   - Snapshot: full mapping, replaced atomically on Write
//   - Log: every accepted mutation since the last Write, fsynced before the
//     mutation is applied
//   - Recovery: snapshot (or its temp copy) is loaded, then the log is
//     replayed on top
//
// Durability:
//
//   - A mutation that returned nil survives a crash
//   - A failed Write leaves the previous snapshot and the log intact
//   - Write clears the log only after the new snapshot is on disk
package storage
