package shutdown

import (
	"context"
	"errors"
	"reflect"
	"syscall"
	"testing"
	"time"

	"github.com/PerchunPak/nonbloat-db/internal/telemetry/logger"
)

func TestHandler_Shutdown(t *testing.T) {
	h := NewHandler(time.Second, logger.Discard())

	var order []string
	boom := errors.New("boom")
	h.OnShutdown("first", func(context.Context) error {
		order = append(order, "first")
		return nil
	})
	h.OnShutdown("second", func(context.Context) error {
		order = append(order, "second")
		return boom
	})
	h.OnShutdown("third", func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("hook context has no deadline")
		}
		order = append(order, "third")
		return nil
	})

	err := h.Shutdown()
	if !errors.Is(err, boom) {
		t.Errorf("Shutdown() error = %v, want boom", err)
	}
	if want := []string{"third", "second", "first"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}

	select {
	case <-h.Done():
	default:
		t.Error("Done() not closed after Shutdown")
	}

	if err2 := h.Shutdown(); err2 != err || len(order) != 3 {
		t.Errorf("second Shutdown() re-ran hooks or changed result: %v", err2)
	}
}

func TestHandler_NoTimeout(t *testing.T) {
	h := NewHandler(0, nil)
	h.OnShutdown("check", func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); ok {
			t.Error("unexpected deadline")
		}
		return nil
	})
	if err := h.Shutdown(); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestHandler_NotifyContext(t *testing.T) {
	h := NewHandler(time.Second, logger.Discard())
	ctx, stop := h.NotifyContext(context.Background())
	defer stop()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("Kill() error = %v", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not canceled by SIGTERM")
	}
}
