// Package worker runs background report regeneration.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mtlprog/famfolio/internal/report"
)

// ReportBuilder builds a full report from the configured sources.
type ReportBuilder interface {
	BuildFromSources(ctx context.Context) (report.Report, error)
}

// AfterReportHook is called after each successful report build.
type AfterReportHook interface {
	Export(ctx context.Context, rep report.Report) error
}

// ReportWorker periodically rebuilds the report. It reads the current FX rate
// but never refreshes it.
type ReportWorker struct {
	builder  ReportBuilder
	interval time.Duration
	hook     AfterReportHook // optional

	mu     sync.RWMutex
	latest *report.Report
}

// NewReportWorker creates a new ReportWorker with an optional post-build hook.
func NewReportWorker(builder ReportBuilder, interval time.Duration, hook AfterReportHook) *ReportWorker {
	if builder == nil {
		panic("worker.NewReportWorker: builder is nil")
	}
	return &ReportWorker{
		builder:  builder,
		interval: interval,
		hook:     hook,
	}
}

// Latest returns the most recent successfully built report, if any.
func (w *ReportWorker) Latest() (report.Report, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.latest == nil {
		return report.Report{}, false
	}
	return *w.latest, true
}

func (w *ReportWorker) runOnce(ctx context.Context, phase string) {
	rep, err := w.builder.BuildFromSources(ctx)
	if err != nil {
		slog.Error("ReportWorker: "+phase+" build failed", "error", err)
		return
	}
	slog.Info("ReportWorker: "+phase+" build completed",
		"positions", rep.Totals.Positions, "warnings", len(rep.Warnings))

	w.mu.Lock()
	w.latest = &rep
	w.mu.Unlock()

	w.runHook(ctx, rep)
}

// runHook calls the post-build hook if one is configured.
func (w *ReportWorker) runHook(ctx context.Context, rep report.Report) {
	if w.hook == nil {
		return
	}
	if err := w.hook.Export(ctx, rep); err != nil {
		slog.Error("ReportWorker: export hook failed", "error", err)
	} else {
		slog.Info("ReportWorker: export hook completed")
	}
}

// Run starts the report worker loop. It blocks until the context is cancelled.
func (w *ReportWorker) Run(ctx context.Context) {
	slog.Info("ReportWorker: starting", "interval", w.interval)

	// Build immediately on startup
	w.runOnce(ctx, "initial")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("ReportWorker: shutting down")
			return
		case <-ticker.C:
			w.runOnce(ctx, "scheduled")
		}
	}
}
