package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/PerchunPak/nonbloat-db/internal/cli/config"
	"github.com/PerchunPak/nonbloat-db/internal/cli/output"
	"github.com/PerchunPak/nonbloat-db/internal/cli/repl"
	"github.com/PerchunPak/nonbloat-db/internal/infra/confloader"
	"github.com/PerchunPak/nonbloat-db/internal/infra/shutdown"
	"github.com/PerchunPak/nonbloat-db/internal/storage"
	"github.com/PerchunPak/nonbloat-db/internal/telemetry/logger"
	"github.com/PerchunPak/nonbloat-db/internal/telemetry/metric"
)

// shutdownTimeout bounds the final snapshot and server shutdown.
const shutdownTimeout = 10 * time.Second

// ShellCommand starts the interactive shell.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Open the store and read commands interactively",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "history",
				Usage: "history `FILE`, empty string disables persistence",
				Value: repl.DefaultHistoryFile(),
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "serve Prometheus metrics on `ADDR` (for example 127.0.0.1:9464)",
			},
		},
		Action: runShell,
	}
}

func runShell(c *cli.Context) error {
	env, err := envFrom(c)
	if err != nil {
		return err
	}
	log := env.Logger

	h := shutdown.NewHandler(shutdownTimeout, log)
	ctx, stop := h.NotifyContext(c.Context)
	defer stop()

	var reg *prometheus.Registry
	if c.String("metrics-addr") != "" {
		reg = metric.NewProcessRegistry()
	} else {
		reg = prometheus.NewRegistry()
	}

	store, err := env.OpenStore(ctx, storage.WithRegisterer(reg))
	if err != nil {
		return err
	}
	h.OnShutdown("store", func(context.Context) error { return store.Close() })

	if addr := c.String("metrics-addr"); addr != "" {
		srv, err := serveMetrics(addr, reg, log)
		if err != nil {
			return errors.Join(err, h.Shutdown())
		}
		h.OnShutdown("metrics", srv.Shutdown)
	}

	if env.ConfigPath != "" {
		w, err := watchConfig(env, log)
		if err != nil {
			log.Warn("configuration reload disabled", "path", env.ConfigPath, "error", err)
		} else {
			h.OnShutdown("config-watcher", func(context.Context) error { return w.Stop() })
		}
	}

	history := repl.NewHistory(c.String("history"), repl.DefaultHistorySize)
	if err := history.Load(); err != nil {
		log.Warn("could not load history", "path", c.String("history"), "error", err)
	}
	h.OnShutdown("history", func(context.Context) error { return history.Save() })

	formatter := output.NewFormatter(env.Format)
	sh := repl.New(store,
		repl.WithIO(env.In, env.Out),
		repl.WithFormatter(formatter),
		repl.WithHistory(history),
	)

	stats := store.Stats()
	fmt.Fprintf(env.Out, "nbdb shell on %s (%d keys). Type help for commands.\n", stats.Path, stats.Keys)

	runErr := sh.Run(ctx)
	if ctx.Err() != nil {
		log.Info("signal received, closing store")
	}
	return errors.Join(runErr, h.Shutdown())
}

func serveMetrics(addr string, g prometheus.Gatherer, log *slog.Logger) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metric.Handler(g))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()
	log.Info("serving metrics", "addr", ln.Addr().String())
	return srv, nil
}

// watchConfig re-reads the configuration file on change and applies the
// log level. Store settings need a restart.
func watchConfig(env *Env, log *slog.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(env.ConfigPath); err != nil {
		w.Stop()
		return nil, err
	}

	w.OnChange(func(path string) {
		cfg, err := config.Load(path, env.Overrides)
		if err != nil {
			log.Warn("ignoring invalid configuration", "path", path, "error", err)
			return
		}
		if err := logger.SetLevel(cfg.Log.Level); err != nil {
			log.Warn("ignoring log level", "error", err)
			return
		}
		log.Info("configuration reloaded", "path", path, "log_level", cfg.Log.Level)
	})
	w.StartAsync()
	return w, nil
}
