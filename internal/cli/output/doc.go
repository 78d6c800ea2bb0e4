// Package output renders command results for the nbdb CLI.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: aligned plain-text tables
//   - json.go: JSON output, store values in key order
//   - yaml.go: YAML output, store values in key order
//   - progress.go: byte progress for backup archives
package output
