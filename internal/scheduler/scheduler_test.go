package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingRunner struct {
	runs atomic.Int64
}

func (r *countingRunner) Run(_ context.Context) error {
	r.runs.Add(1)
	return nil
}

func TestRun_InvalidSpec(t *testing.T) {
	s := New(&countingRunner{}, "not a cron spec", discardLogger())

	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New(&countingRunner{}, "30 22 * * *", discardLogger())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v on cancel, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
}

func TestRun_FiresOnSchedule(t *testing.T) {
	runner := &countingRunner{}
	// Every-second spec keeps the test fast without faking the clock.
	s := New(runner, "@every 1s", discardLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := runner.runs.Load(); got < 1 {
		t.Errorf("runner fired %d times, want at least 1", got)
	}
}
