// Package confloader loads nbdb configuration from layered sources.
//
// Sources are merged with koanf, later ones overriding earlier ones:
//
//  1. Defaults (the struct passed to Load)
//  2. YAML configuration file
//  3. Dotenv files (only for variables not already set)
//  4. NBDB_* environment variables
//  5. Explicit overrides, normally command-line flags
//
// Watcher reports edits to the configuration file through fsnotify so
// long-running sessions can re-apply settings such as the log level.
package confloader
