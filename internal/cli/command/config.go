package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/PerchunPak/nonbloat-db/internal/cli/config"
	"github.com/PerchunPak/nonbloat-db/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration after files, env and flags",
				Action: configShow,
			},
			{
				Name:   "path",
				Usage:  "Show which configuration file is used",
				Action: configPath,
			},
			{
				Name:  "init",
				Usage: "Write the effective configuration to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "to",
						Usage: "destination `FILE` (default: user config dir)",
					},
				},
				Action: configInit,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	f := output.NewFormatter(env.Format)
	if env.Format == output.FormatTable {
		f = &output.YAMLFormatter{}
	}
	return f.Format(env.Out, env.Config)
}

func configPath(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	if env.ConfigPath == "" {
		fmt.Fprintf(env.Out, "(none, defaults in use; searched %s)\n", config.DefaultConfigPath())
		return nil
	}
	fmt.Fprintln(env.Out, env.ConfigPath)
	return nil
}

func configInit(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	path := c.String("to")
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if err := config.Save(env.Config, path); err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "wrote %s\n", path)
	return nil
}
