// Package main provides the entry point for nbdb.
//
// The CLI opens a nonbloat-db store in-process and provides:
//
//   - Key operations (get, set, del, keys, dump)
//   - Snapshot writes and mutation log inspection
//   - Backup create, inspect and restore
//   - Configuration management
//   - An interactive shell
//
// Usage:
//
//	nbdb [global flags] command [flags]
//	nbdb --db data.json set user.1 '{"name": "ann"}'
//	nbdb -o json dump
//	nbdb shell --metrics-addr 127.0.0.1:9464
package main
