package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/PerchunPak/nonbloat-db/internal/cli/output"
	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
	"github.com/PerchunPak/nonbloat-db/internal/storage"
	"github.com/PerchunPak/nonbloat-db/internal/storage/codec"
	"github.com/PerchunPak/nonbloat-db/internal/storage/wal"
)

// GetCommand prints one value.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Print the value stored under KEY",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			key, err := requireArg(c, 0, "KEY")
			if err != nil {
				return err
			}
			return withStore(c, func(ctx context.Context, env *Env, store *storage.Engine) error {
				v, err := store.Get(ctx, key)
				if err != nil {
					return err
				}
				return env.Print(v)
			})
		},
	}
}

// SetCommand stores one value.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Store a JSON value under KEY (null deletes the key)",
		ArgsUsage: "KEY JSON",
		Description: `JSON is parsed as a single value; arguments after KEY are joined with
spaces, so  nbdb set user:1 '{"name": "Ann"}'  and  nbdb set n 42  both work.
Bare words that are not JSON are stored as strings.`,
		Action: func(c *cli.Context) error {
			key, err := requireArg(c, 0, "KEY")
			if err != nil {
				return err
			}
			if c.NArg() < 2 {
				return cli.Exit("missing JSON value, usage: set KEY JSON", ExitUsage)
			}
			raw := strings.Join(c.Args().Slice()[1:], " ")
			v, err := parseValue(raw)
			if err != nil {
				return err
			}
			return withStore(c, func(ctx context.Context, _ *Env, store *storage.Engine) error {
				return store.Set(ctx, key, v)
			})
		},
	}
}

// DelCommand deletes one key.
func DelCommand() *cli.Command {
	return &cli.Command{
		Name:      "del",
		Aliases:   []string{"delete", "rm"},
		Usage:     "Delete KEY",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			key, err := requireArg(c, 0, "KEY")
			if err != nil {
				return err
			}
			return withStore(c, func(ctx context.Context, _ *Env, store *storage.Engine) error {
				return store.Delete(ctx, key)
			})
		},
	}
}

// KeysCommand lists keys.
func KeysCommand() *cli.Command {
	return &cli.Command{
		Name:  "keys",
		Usage: "List keys in insertion order",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "prefix", Usage: "only keys starting with `PREFIX`"},
		},
		Action: func(c *cli.Context) error {
			return withStore(c, func(_ context.Context, env *Env, store *storage.Engine) error {
				keys := []string{}
				for _, k := range store.Keys() {
					if strings.HasPrefix(k, c.String("prefix")) {
						keys = append(keys, k)
					}
				}
				return env.Print(keys)
			})
		},
	}
}

// DumpCommand prints the whole mapping.
func DumpCommand() *cli.Command {
	return &cli.Command{
		Name:  "dump",
		Usage: "Print every key and value",
		Action: func(c *cli.Context) error {
			return withStore(c, func(_ context.Context, env *Env, store *storage.Engine) error {
				return env.Print(store.Snapshot())
			})
		},
	}
}

// WriteCommand folds the log into a new snapshot.
func WriteCommand() *cli.Command {
	return &cli.Command{
		Name:  "write",
		Usage: "Replay the log into a fresh snapshot and clear the log",
		Action: func(c *cli.Context) error {
			return withStore(c, func(ctx context.Context, env *Env, store *storage.Engine) error {
				pending, err := store.PendingRecords()
				if err != nil {
					return err
				}
				if err := store.Write(ctx); err != nil {
					return err
				}
				fmt.Fprintf(env.Out, "wrote %d keys to %s (%d log records folded)\n",
					store.Len(), store.Path(), len(pending))
				return nil
			})
		},
	}
}

// logEntry is one pending log record in json and yaml output.
type logEntry struct {
	Key    string `json:"key" yaml:"key"`
	Value  any    `json:"value,omitempty" yaml:"value,omitempty"`
	Delete bool   `json:"delete,omitempty" yaml:"delete,omitempty"`
}

// LogCommand shows mutations not yet folded into the snapshot.
func LogCommand() *cli.Command {
	return &cli.Command{
		Name:  "log",
		Usage: "Show mutations recorded since the last write",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "compact", Usage: "show only the last record per key"},
		},
		Action: func(c *cli.Context) error {
			return withStore(c, func(_ context.Context, env *Env, store *storage.Engine) error {
				records, err := store.PendingRecords()
				if err != nil {
					return err
				}
				if c.Bool("compact") {
					records = wal.Compact(records)
				}

				if env.Format == output.FormatTable {
					t := &output.Table{Headers: []string{"#", "KEY", "VALUE"}}
					for i, r := range records {
						val := "(delete)"
						if !r.IsDelete() {
							b, err := codec.MarshalValue(r.Value)
							if err != nil {
								return err
							}
							val = string(b)
						}
						t.AddRow(fmt.Sprint(i+1), r.Key, val)
					}
					return env.Print(t)
				}

				entries := make([]logEntry, 0, len(records))
				for _, r := range records {
					e := logEntry{Key: r.Key, Delete: r.IsDelete()}
					if !e.Delete {
						e.Value = r.Value.Interface()
					}
					entries = append(entries, e)
				}
				return env.Print(entries)
			})
		},
	}
}

func requireArg(c *cli.Context, i int, name string) (string, error) {
	if c.NArg() <= i {
		return "", cli.Exit(fmt.Sprintf("missing %s, usage: %s %s", name, c.Command.Name, c.Command.ArgsUsage), ExitUsage)
	}
	return c.Args().Get(i), nil
}

// parseValue reads raw as JSON, falling back to a plain string for bare
// words such as  nbdb set name Ann.
func parseValue(raw string) (domain.Value, error) {
	v, err := codec.UnmarshalValue([]byte(raw))
	if err == nil {
		return v, nil
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.ContainsAny(trimmed[:1], `{["0123456789-`) {
		return domain.Value{}, err
	}
	return domain.String(raw), nil
}
