package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// --- Mock implementations ---

type countingPoller struct {
	name  string
	calls atomic.Int32
	err   error
}

func (p *countingPoller) Name() string { return p.name }

func (p *countingPoller) Poll(_ context.Context) error {
	p.calls.Add(1)
	return p.err
}

// orderRecorder collects poller names in the order Poll was called.
type orderRecorder struct {
	mu    sync.Mutex
	order []string
}

type orderPoller struct {
	name     string
	recorder *orderRecorder
}

func (p *orderPoller) Name() string { return p.name }

func (p *orderPoller) Poll(_ context.Context) error {
	p.recorder.mu.Lock()
	p.recorder.order = append(p.recorder.order, p.name)
	p.recorder.mu.Unlock()
	return nil
}

type cleanupStore struct {
	cleanups  atomic.Int32
	retention atomic.Int64
}

func (s *cleanupStore) HasSeen(string) (bool, error) { return false, nil }
func (s *cleanupStore) MarkSeen(string) error { return nil }
func (s *cleanupStore) IsEmpty() (bool, error) { return false, nil }

func (s *cleanupStore) Cleanup(d time.Duration) error {
	s.cleanups.Add(1)
	s.retention.Store(int64(d))
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// runFor starts s, waits d, cancels and returns Run's error.
func runFor(t *testing.T, s *Scheduler, d time.Duration) error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	time.Sleep(d)
	cancel()

	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not return within 2s after cancel")
		return nil
	}
}

// --- Tests ---

func TestRun_CancelReturnsPromptly(t *testing.T) {
	p := &countingPoller{name: "sandton-devs"}
	s := NewScheduler([]Poller{p}, time.Hour, time.Minute, discardLogger())

	if err := runFor(t, s, 100*time.Millisecond); err != nil {
		t.Fatalf("expected nil error on cancel, got: %v", err)
	}
}

func TestRun_PollsImmediatelyThenOnInterval(t *testing.T) {
	p := &countingPoller{name: "sandton-devs"}
	s := NewScheduler([]Poller{p}, 100*time.Millisecond, 0, discardLogger())

	// Allow time for at least two full passes (poll → sleep interval → poll).
	runFor(t, s, 250*time.Millisecond)

	if got := p.calls.Load(); got < 2 {
		t.Errorf("poll calls = %d, want >= 2", got)
	}
}

func TestRun_OnePollerErrorOthersStillRun(t *testing.T) {
	failing := &countingPoller{name: "failing", err: errors.New("all sources failed")}
	healthy := &countingPoller{name: "healthy"}

	s := NewScheduler([]Poller{failing, healthy}, time.Hour, 0, discardLogger())
	runFor(t, s, 100*time.Millisecond)

	if got := failing.calls.Load(); got != 1 {
		t.Errorf("failing calls = %d, want 1", got)
	}
	if got := healthy.calls.Load(); got != 1 {
		t.Errorf("healthy calls = %d, want 1 (scheduler should continue past an error)", got)
	}
}

func TestRun_PauseBetweenPollers(t *testing.T) {
	a := &countingPoller{name: "a"}
	b := &countingPoller{name: "b"}
	s := NewScheduler([]Poller{a, b}, time.Hour, 300*time.Millisecond, discardLogger())

	runFor(t, s, 100*time.Millisecond)

	if got := a.calls.Load(); got != 1 {
		t.Errorf("first poller calls = %d, want 1", got)
	}
	if got := b.calls.Load(); got != 0 {
		t.Errorf("second poller ran before the pause elapsed (calls = %d)", got)
	}
}

func TestRun_OrderPreserved(t *testing.T) {
	rec := &orderRecorder{}
	pollers := []Poller{
		&orderPoller{name: "s1", recorder: rec},
		&orderPoller{name: "s2", recorder: rec},
		&orderPoller{name: "s3", recorder: rec},
	}
	s := NewScheduler(pollers, time.Hour, 0, discardLogger())

	// One full pass: s1, s2, s3 (no pause).
	runFor(t, s, 100*time.Millisecond)

	rec.mu.Lock()
	order := append([]string(nil), rec.order...)
	rec.mu.Unlock()

	want := []string{"s1", "s2", "s3"}
	if len(order) != len(want) {
		t.Fatalf("poll order length = %d, want %d (order: %v)", len(order), len(want), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("poll order = %v, want %v", order, want)
			break
		}
	}
}

func TestRun_CleanupAfterCycle(t *testing.T) {
	store := &cleanupStore{}
	s := NewScheduler([]Poller{&countingPoller{name: "a"}}, time.Hour, 0, discardLogger()).
		WithCleanup(store, 72*time.Hour)

	runFor(t, s, 100*time.Millisecond)

	if got := store.cleanups.Load(); got != 1 {
		t.Errorf("cleanups = %d, want 1", got)
	}
	if got := time.Duration(store.retention.Load()); got != 72*time.Hour {
		t.Errorf("retention = %v, want 72h", got)
	}
}
