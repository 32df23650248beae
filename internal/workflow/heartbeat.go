package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"descant/internal/logging"
	"descant/internal/queue"
)

// HeartbeatMonitor manages item heartbeats and stale item reclamation.
type HeartbeatMonitor struct {
	store    *queue.Store
	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration
}

// NewHeartbeatMonitor creates a new monitor.
func NewHeartbeatMonitor(store *queue.Store, logger *slog.Logger, interval, timeout time.Duration) *HeartbeatMonitor {
	if logger == nil {
		logger = logging.NewNop()
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &HeartbeatMonitor{store: store, logger: logger, interval: interval, timeout: timeout}
}

// ReclaimStaleItems resets items whose heartbeats stopped, rolling them back
// to the preceding stable status so another worker can pick them up.
func (h *HeartbeatMonitor) ReclaimStaleItems(ctx context.Context, logger *slog.Logger) error {
	if h.timeout <= 0 {
		return nil
	}
	cutoff := time.Now().Add(-h.timeout)
	reclaimed, err := h.store.ReclaimStaleProcessing(ctx, cutoff)
	if err != nil {
		return err
	}
	if reclaimed > 0 {
		logger.Info("reclaimed stale items", logging.Int64("count", reclaimed))
	}
	return nil
}

// StartLoop runs a heartbeat updater for a specific item until the context
// is cancelled.
func (h *HeartbeatMonitor) StartLoop(ctx context.Context, wg *sync.WaitGroup, itemID int64) {
	defer wg.Done()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	logger := logging.WithContext(ctx, h.logger.With(logging.String(logging.FieldComponent, "workflow-heartbeat")))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.store.UpdateHeartbeat(ctx, itemID); err != nil {
				if errors.Is(err, context.Canceled) {
					logger.Debug("shutting down, heartbeat update cancelled")
				} else {
					logger.Warn("heartbeat update failed", logging.Error(err))
				}
			}
		}
	}
}
