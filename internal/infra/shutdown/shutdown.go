// Package shutdown runs cleanup hooks when the process is interrupted.
//
//	h := shutdown.NewHandler(10 * time.Second)
//	ctx, stop := h.NotifyContext(context.Background())
//	defer stop()
//	h.OnShutdown("store", func(context.Context) error { return store.Close() })
//	... run until ctx is done ...
//	err := h.Shutdown()
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

type hook struct {
	name string
	fn   func(context.Context) error
}

// Handler handles graceful shutdown.
type Handler struct {
	timeout time.Duration
	logger  *slog.Logger

	mu    sync.Mutex
	hooks []hook

	once sync.Once
	err  error
	done chan struct{}
}

// NewHandler creates a shutdown handler. Hooks share a deadline of
// timeout; zero means no deadline.
func NewHandler(timeout time.Duration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		timeout: timeout,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// OnShutdown registers a hook. Hooks run in reverse order of registration.
func (h *Handler) OnShutdown(name string, fn func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook{name: name, fn: fn})
}

// NotifyContext returns a context canceled on SIGINT or SIGTERM.
func (h *Handler) NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// Shutdown runs every hook once, even when earlier ones fail, and returns
// the joined errors. Later calls return the first result.
func (h *Handler) Shutdown() error {
	h.once.Do(func() {
		ctx := context.Background()
		if h.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.timeout)
			defer cancel()
		}

		h.mu.Lock()
		hooks := append([]hook(nil), h.hooks...)
		h.mu.Unlock()

		var errs []error
		for i := len(hooks) - 1; i >= 0; i-- {
			start := time.Now()
			if err := hooks[i].fn(ctx); err != nil {
				h.logger.Error("shutdown hook failed", "hook", hooks[i].name, "error", err)
				errs = append(errs, fmt.Errorf("%s: %w", hooks[i].name, err))
				continue
			}
			h.logger.Debug("shutdown hook done", "hook", hooks[i].name, "elapsed", time.Since(start))
		}

		h.err = errors.Join(errs...)
		close(h.done)
	})
	return h.err
}

// Done returns a channel that closes when Shutdown has finished.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
