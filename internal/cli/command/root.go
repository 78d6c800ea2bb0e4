package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
	"github.com/PerchunPak/nonbloat-db/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:                 "nbdb",
		Usage:                "embedded JSON key-value store",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		EnableBashCompletion: true,
		Metadata:             map[string]any{},
		Before:               setup,
		Commands: []*cli.Command{
			GetCommand(),
			SetCommand(),
			DelCommand(),
			KeysCommand(),
			DumpCommand(),
			WriteCommand(),
			LogCommand(),
			StatsCommand(),
			BackupCommand(),
			ConfigCommand(),
			ShellCommand(),
			VersionCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "configuration file (default: user config dir, if present)",
			EnvVars: []string{"NBDB_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "database file",
		},
		&cli.StringFlag{
			Name:  "indent",
			Usage: `snapshot layout: "none", a number of spaces, or a literal string`,
		},
		&cli.DurationFlag{
			Name:  "flush-interval",
			Usage: "background snapshot period, 0 disables",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn or error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "text or json",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json, yaml",
			Value:   "table",
		},
	}
}

// GlobalFlags holds the values of the global flags.
type GlobalFlags struct {
	Config    string
	DB        string
	Indent    string
	LogLevel  string
	LogFormat string
	Output    string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Config:    c.String("config"),
		DB:        c.String("db"),
		Indent:    c.String("indent"),
		LogLevel:  c.String("log-level"),
		LogFormat: c.String("log-format"),
		Output:    c.String("output"),
	}
}

// overrides maps explicitly set global flags onto configuration keys.
func overrides(c *cli.Context) map[string]any {
	m := map[string]any{}
	if c.IsSet("db") {
		m["store.path"] = c.String("db")
	}
	if c.IsSet("indent") {
		m["store.indent"] = c.String("indent")
	}
	if c.IsSet("flush-interval") {
		m["store.flush_interval"] = c.Duration("flush-interval").String()
	}
	if c.IsSet("log-level") {
		m["log.level"] = c.String("log-level")
	}
	if c.IsSet("log-format") {
		m["log.format"] = c.String("log-format")
	}
	return m
}

// Exit statuses beyond the generic failure.
const (
	ExitUsage    = 2
	ExitNotFound = 3
	ExitData     = 4
)

// ExitCode maps an error returned by the app to a process exit status.
func ExitCode(err error) int {
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	switch domain.GetErrorCode(err) {
	case domain.ErrKeyNotFound.Code:
		return ExitNotFound
	case domain.ErrMalformedData.Code:
		return ExitData
	case domain.ErrInvalidConfig.Code, domain.ErrInvalidValue.Code:
		return ExitUsage
	}
	return 1
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
