// Package command defines the nbdb command line using urfave/cli/v2.
//
//   - root.go: application, global flags, error printing
//   - env.go: per-invocation configuration, logger and store access
//   - store.go: get, set, del, keys, dump, write, log
//   - system.go: stats, version
//   - backup.go: backup create, restore, inspect
//   - config.go: config show, init, path
//   - shell.go: interactive shell
//
// Every command opens the store, runs, and closes it again. Only the
// shell keeps the store open for longer.
package command
