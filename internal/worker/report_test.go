package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mtlprog/famfolio/internal/domain"
	"github.com/mtlprog/famfolio/internal/report"
)

type mockBuilder struct {
	callCount atomic.Int32
	err       error
}

func (m *mockBuilder) BuildFromSources(_ context.Context) (report.Report, error) {
	m.callCount.Add(1)
	if m.err != nil {
		return report.Report{}, m.err
	}
	return report.Report{Totals: domain.Totals{Positions: 3}}, nil
}

type mockHook struct {
	callCount atomic.Int32
}

func (m *mockHook) Export(_ context.Context, _ report.Report) error {
	m.callCount.Add(1)
	return nil
}

func TestReportWorkerRunsAndShutdown(t *testing.T) {
	builder := &mockBuilder{}
	hook := &mockHook{}
	w := NewReportWorker(builder, 50*time.Millisecond, hook)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	if got := builder.callCount.Load(); got < 2 {
		t.Errorf("build count = %d, want >= 2", got)
	}
	if got, want := hook.callCount.Load(), builder.callCount.Load(); got != want {
		t.Errorf("hook count = %d, want %d", got, want)
	}

	rep, ok := w.Latest()
	if !ok {
		t.Fatal("expected a latest report")
	}
	if rep.Totals.Positions != 3 {
		t.Errorf("latest positions = %d, want 3", rep.Totals.Positions)
	}
}

func TestReportWorkerSkipsHookOnFailure(t *testing.T) {
	builder := &mockBuilder{err: errors.New("holdings unavailable")}
	hook := &mockHook{}
	w := NewReportWorker(builder, time.Hour, hook)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	if got := builder.callCount.Load(); got != 1 {
		t.Errorf("build count = %d, want 1", got)
	}
	if got := hook.callCount.Load(); got != 0 {
		t.Errorf("hook count = %d, want 0", got)
	}
	if _, ok := w.Latest(); ok {
		t.Error("failed build must not set a latest report")
	}
}

func TestReportWorkerNilHook(t *testing.T) {
	w := NewReportWorker(&mockBuilder{}, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w.Run(ctx)

	if _, ok := w.Latest(); !ok {
		t.Error("initial build should run even when ctx is already cancelled")
	}
}
