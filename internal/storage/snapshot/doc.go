// Package snapshot loads and saves the full-mapping snapshot file.
//
// A snapshot is a single JSON object, written through package atomicfile:
//
//	<db>          the current snapshot
//	<db>.temp     previous snapshot, present only while a write is in
//	              progress or after one failed
//
// Recovery Process:
//
//  1. If <db>.temp exists, load it (the write that created it never
//     finished, so <db> may be torn) and warn
//  2. Otherwise load <db> if it exists
//  3. Otherwise start with an empty mapping
//
// The caller replays the mutation log on top of whatever Load returns.
package snapshot
