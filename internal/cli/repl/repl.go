package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/PerchunPak/nonbloat-db/internal/cli/output"
	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
	"github.com/PerchunPak/nonbloat-db/internal/storage"
	"github.com/PerchunPak/nonbloat-db/internal/storage/codec"
)

// Store is the part of the storage engine the shell drives.
type Store interface {
	Get(ctx context.Context, key string) (domain.Value, error)
	Set(ctx context.Context, key string, v domain.Value) error
	Delete(ctx context.Context, key string) error
	Write(ctx context.Context) error
	Keys() []string
	Snapshot() *domain.Object
	Stats() storage.Stats
}

// errExit ends the loop from inside a command.
var errExit = errors.New("exit")

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	store     Store
	input     io.Reader
	output    io.Writer
	formatter output.Formatter
	completer *Completer
	history   *History
	prompt    string
}

// Option configures a REPL.
type Option func(*REPL)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithFormatter selects how values and stats are printed.
func WithFormatter(f output.Formatter) Option {
	return func(r *REPL) { r.formatter = f }
}

// WithHistory sets the command history.
func WithHistory(h *History) Option {
	return func(r *REPL) { r.history = h }
}

// WithPrompt sets the prompt string.
func WithPrompt(p string) Option {
	return func(r *REPL) { r.prompt = p }
}

// New creates a shell over store.
func New(store Store, opts ...Option) *REPL {
	r := &REPL{
		store:     store,
		input:     os.Stdin,
		output:    os.Stdout,
		formatter: &output.TableFormatter{},
		history:   NewHistory("", 0),
		prompt:    "nbdb> ",
	}
	for _, opt := range opts {
		opt(r)
	}
	r.completer = NewCompleter(store.Keys)
	return r
}

// Run reads and executes commands until EOF, exit, or ctx is done.
// Command errors are printed and do not stop the loop.
func (r *REPL) Run(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		reader := bufio.NewReader(r.input)
		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	for {
		fmt.Fprint(r.output, r.prompt)

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(r.output)
			return nil
		case err := <-readErr:
			fmt.Fprintln(r.output)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		case line = <-lines:
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.history.Add(line)

		err := r.Execute(ctx, line)
		if errors.Is(err, errExit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(r.output, "error: %v\n", err)
		}
	}
}

// Execute runs one command line.
func (r *REPL) Execute(ctx context.Context, line string) error {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "get":
		key, _, err := splitKey(rest)
		if err != nil {
			return err
		}
		v, err := r.store.Get(ctx, key)
		if err != nil {
			return err
		}
		return r.formatter.Format(r.output, v)

	case "set":
		key, raw, err := splitKey(rest)
		if err != nil {
			return err
		}
		if raw == "" {
			return errors.New("usage: set KEY JSON")
		}
		v, err := codec.UnmarshalValue([]byte(raw))
		if err != nil {
			return err
		}
		return r.store.Set(ctx, key, v)

	case "del", "delete":
		key, _, err := splitKey(rest)
		if err != nil {
			return err
		}
		return r.store.Delete(ctx, key)

	case "keys":
		return r.formatter.Format(r.output, prefixed(r.store.Keys(), rest))

	case "dump":
		return r.formatter.Format(r.output, r.store.Snapshot())

	case "write":
		if err := r.store.Write(ctx); err != nil {
			return err
		}
		fmt.Fprintln(r.output, "ok")
		return nil

	case "stats":
		stats := r.store.Stats()
		return r.formatter.Format(r.output, &stats)

	case "history":
		for i, entry := range r.history.Entries() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, entry)
		}
		return nil

	case "help", "?":
		r.printHelp()
		return nil

	case "exit", "quit":
		return errExit

	default:
		if s := r.completer.Complete(cmd); len(s) > 0 {
			return fmt.Errorf("unknown command %q, did you mean: %s", cmd, strings.Join(s, ", "))
		}
		return fmt.Errorf("unknown command %q, type help for a list", cmd)
	}
}

// Complete exposes completion for the current input.
func (r *REPL) Complete(line string) []string {
	return r.completer.Complete(line)
}

func (r *REPL) printHelp() {
	fmt.Fprint(r.output, `Commands:
  get KEY          print the value stored under KEY
  set KEY JSON     store a JSON value (null deletes)
  del KEY          delete KEY
  keys [PREFIX]    list keys in insertion order
  dump             print the whole database
  write            save a snapshot and clear the log
  stats            show store statistics
  history          list previous commands
  exit             leave the shell
Keys containing spaces can be written as JSON strings: get "my key"
`)
}

// splitKey takes the first argument, which may be a JSON string literal,
// and returns it with the remainder of the line.
func splitKey(s string) (key, rest string, err error) {
	if s == "" {
		return "", "", errors.New("missing KEY")
	}
	if s[0] != '"' {
		key, rest, _ = strings.Cut(s, " ")
		return key, strings.TrimSpace(rest), nil
	}

	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			key, err = strconv.Unquote(s[:i+1])
			if err != nil {
				return "", "", fmt.Errorf("bad quoted key: %w", err)
			}
			return key, strings.TrimSpace(s[i+1:]), nil
		}
	}
	return "", "", errors.New("unterminated quoted key")
}
