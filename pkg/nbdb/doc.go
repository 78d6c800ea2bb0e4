// Package nbdb is a small embedded key-value store that keeps its data in a
// human-readable JSON file.
//
// All data lives in memory. Every mutation is appended to a side log before
// it is applied, and Write replaces the JSON snapshot atomically, so the
// store survives crashes at any point without losing acknowledged writes.
//
//	store, err := nbdb.Open(ctx, "data.json", nbdb.WithIndent(nbdb.Spaces(2)))
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	if err := store.Set(ctx, "answer", nbdb.Int(42)); err != nil {
//		return err
//	}
//	if err := store.Write(ctx); err != nil {
//		return err
//	}
//
// A Store assumes exclusive ownership of its files; opening the same path
// from two processes is not supported.
package nbdb
