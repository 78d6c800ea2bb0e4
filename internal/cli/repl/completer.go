package repl

import (
	"sort"
	"strings"
)

// commandNames lists the shell commands in help order.
var commandNames = []string{
	"get", "set", "del", "keys", "dump", "write", "stats", "history", "help", "exit", "quit",
}

// keyCommands take a store key as their first argument.
var keyCommands = map[string]bool{"get": true, "set": true, "del": true}

// Completer suggests commands and, for key commands, existing keys.
type Completer struct {
	commands []string
	keys     func() []string
}

// NewCompleter creates a Completer. keys may be nil.
func NewCompleter(keys func() []string) *Completer {
	return &Completer{commands: commandNames, keys: keys}
}

// Complete returns completions for a partially typed line.
//
// "ge" yields "get"; "get us" yields "get user:1", "get user:2" and so on.
func (c *Completer) Complete(line string) []string {
	cmd, rest, hasArg := strings.Cut(strings.TrimLeft(line, " "), " ")
	if !hasArg {
		return prefixed(c.commands, cmd)
	}
	if !keyCommands[cmd] || c.keys == nil || strings.Contains(rest, " ") {
		return nil
	}

	keys := prefixed(c.keys(), rest)
	sort.Strings(keys)
	for i, k := range keys {
		keys[i] = cmd + " " + k
	}
	return keys
}

func prefixed(candidates []string, prefix string) []string {
	var out []string
	for _, s := range candidates {
		if strings.HasPrefix(s, prefix) {
			out = append(out, s)
		}
	}
	return out
}
