package storage

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/PerchunPak/nonbloat-db/internal/telemetry/metric"
)

// backgroundLoop writes a snapshot every interval until Close.
func (e *Engine) backgroundLoop(interval time.Duration) {
	defer close(e.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// A failing disk fails every tick; report it once a minute.
	report := rate.Sometimes{First: 1, Interval: time.Minute}

	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
			// Close may have raced with the tick.
			select {
			case <-e.stopCh:
				return
			default:
			}

			if err := e.write(context.Background(), metric.TriggerBackground); err != nil {
				report.Do(func() {
					e.logger.Error("background write failed", "error", err)
				})
			}
		}
	}
}
