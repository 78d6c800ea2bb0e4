package command

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/PerchunPak/nonbloat-db/internal/cli/config"
	"github.com/PerchunPak/nonbloat-db/internal/cli/output"
	"github.com/PerchunPak/nonbloat-db/internal/storage"
	"github.com/PerchunPak/nonbloat-db/internal/telemetry/logger"
)

const envKey = "nbdb.env"

// Env is the state shared by all commands of one invocation.
type Env struct {
	Config     *config.Config
	ConfigPath string // file the configuration came from, if any
	Overrides  map[string]any
	Logger     *slog.Logger
	Format     output.Format
	Out        io.Writer
	Err        io.Writer
	In         io.Reader
}

// setup loads configuration and builds the logger before any command runs.
func setup(c *cli.Context) error {
	flags := ParseGlobalFlags(c)
	format, err := output.ParseFormat(flags.Output)
	if err != nil {
		return err
	}

	path := flags.Config
	if path == "" {
		if _, err := os.Stat(config.DefaultConfigPath()); err == nil {
			path = config.DefaultConfigPath()
		}
	}

	ov := overrides(c)
	cfg, err := config.Load(path, ov)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return err
	}
	c.Context = logger.WithLogger(c.Context, log)

	c.App.Metadata[envKey] = &Env{
		Config:     cfg,
		ConfigPath: path,
		Overrides:  ov,
		Logger:     log,
		Format:     format,
		Out:        c.App.Writer,
		Err:        c.App.ErrWriter,
		In:         c.App.Reader,
	}
	return nil
}

// envFrom returns the Env created by setup.
func envFrom(c *cli.Context) (*Env, error) {
	if env, ok := c.App.Metadata[envKey].(*Env); ok {
		return env, nil
	}
	return nil, errors.New("command: configuration not loaded")
}

// Print writes data in the selected output format.
func (e *Env) Print(data any) error {
	return output.NewFormatter(e.Format).Format(e.Out, data)
}

// OpenStore opens the configured store.
func (e *Env) OpenStore(ctx context.Context, extra ...storage.Option) (*storage.Engine, error) {
	opts := append(e.Config.StorageOptions(), storage.WithLogger(e.Logger))
	opts = append(opts, extra...)
	return storage.Open(ctx, e.Config.Store.Path, opts...)
}

// withStore opens the store, runs fn and closes the store again.
func withStore(c *cli.Context, fn func(ctx context.Context, env *Env, store *storage.Engine) error, extra ...storage.Option) (err error) {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	store, err := env.OpenStore(c.Context, extra...)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, store.Close())
	}()
	return fn(c.Context, env, store)
}
