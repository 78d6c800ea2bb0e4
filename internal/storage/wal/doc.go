// Package wal provides the append-only mutation log kept next to a snapshot.
//
// Every mutation accepted since the last snapshot write is appended to the log
// before it is applied in memory, so a crash between writes loses nothing.
// On startup the log is replayed in order on top of the loaded snapshot; the
// next successful snapshot write clears it.
//
// Format:
//
//	<db>.log.temp
//	{"key": value}\n
//	{"key": null}\n      (deletion)
//
// Each line is one flat JSON object with exactly one member. Lines are
// written with O_APPEND and, by default, fsynced before Append returns.
package wal
