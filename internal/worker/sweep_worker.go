package worker

import (
	"context"
	"log/slog"
	"time"

	"spendwatch/internal/services"
)

// SweepWorker periodically re-evaluates every user with an active
// budget. It is the safety net behind the event-driven alert worker:
// threshold crossings caused by budget edits, preference changes or
// lost queue messages are picked up on the next tick.
type SweepWorker struct {
	monitor  *services.MonitorService
	interval time.Duration
}

func NewSweepWorker(monitor *services.MonitorService, interval time.Duration) *SweepWorker {
	return &SweepWorker{
		monitor:  monitor,
		interval: interval,
	}
}

// Run sweeps once immediately, then on every tick until the context
// ends.
func (w *SweepWorker) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Sweep worker started", "interval", w.interval)

	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Sweep worker stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *SweepWorker) sweep(ctx context.Context) {
	start := time.Now()
	if err := w.monitor.CheckAllUsers(ctx); err != nil {
		slog.ErrorContext(ctx, "Budget sweep failed", "error", err)
		return
	}
	slog.InfoContext(ctx, "Budget sweep finished", "duration", time.Since(start))
}
