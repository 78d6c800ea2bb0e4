// Package repl implements the interactive nbdb shell.
//
//   - repl.go: read loop and command dispatch against an open store
//   - completer.go: command and key suggestions
//   - history.go: command history persisted between sessions
package repl
