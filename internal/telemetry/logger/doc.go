// Package logger builds the slog loggers used by nbdb.
//
//   - logger.go: handler construction and the process-wide level
//   - context.go: carrying a logger through context.Context
//   - redact.go: masking of passphrases and other secrets
//
// The level is shared through a slog.LevelVar so a running shell can
// change it when the configuration file is edited.
package logger
