package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/jobscout-za/jobscout/internal/model"
)

func TestWait_SameSource_EnforcesRate(t *testing.T) {
	limiter := NewSourceLimiter(10, 1) // one request per 100ms
	ctx := context.Background()

	// First call should return immediately.
	if err := limiter.Wait(ctx, "careerjet"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "careerjet"); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	elapsed := time.Since(start)

	// Should have waited ~100ms (allow 80ms for timer jitter).
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait, got %v", elapsed)
	}
}

func TestWait_DifferentSources_NoCrossBlocking(t *testing.T) {
	limiter := NewSourceLimiter(5, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "careerjet"); err != nil {
		t.Fatalf("careerjet wait: %v", err)
	}

	// Immediately call for indeed: should NOT block.
	start := time.Now()
	if err := limiter.Wait(ctx, "indeed"); err != nil {
		t.Fatalf("indeed wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("expected indeed wait to be near-instant, got %v", elapsed)
	}
}

func TestWait_ContextCancellation(t *testing.T) {
	limiter := NewSourceLimiter(0.2, 1) // one request per 5s
	if err := limiter.Wait(context.Background(), "careerjet"); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Wait(ctx, "careerjet"); err == nil {
		t.Fatal("expected error from cancelled context, got nil")
	}
}

func TestWait_Disabled(t *testing.T) {
	limiter := NewSourceLimiter(0, 0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 20; i++ {
		if err := limiter.Wait(ctx, "indeed"); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("disabled limiter blocked for %v", elapsed)
	}
}

// --- Mock for Fetcher test ---

type recordingFetcher struct {
	called bool
}

func (f *recordingFetcher) FetchListings(_ context.Context, _ model.Query) (model.Batch, error) {
	f.called = true
	return model.Batch{}, nil
}

func TestFetcher_WaitsBeforeDelegating(t *testing.T) {
	limiter := NewSourceLimiter(10, 1)
	inner := &recordingFetcher{}
	fetcher := NewFetcher(inner, limiter, "careerjet")
	ctx := context.Background()

	// First call: consumes the burst, then delegates.
	if _, err := fetcher.FetchListings(ctx, model.Query{}); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if !inner.called {
		t.Fatal("inner fetcher was not called on first fetch")
	}

	inner.called = false

	// Second call: should wait for the rate limiter.
	start := time.Now()
	if _, err := fetcher.FetchListings(ctx, model.Query{}); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	elapsed := time.Since(start)

	if !inner.called {
		t.Fatal("inner fetcher was not called on second fetch")
	}
	if elapsed < 80*time.Millisecond {
		t.Errorf("expected >= 80ms wait on second fetch, got %v", elapsed)
	}
}

func TestFetcher_CancelledSkipsInner(t *testing.T) {
	limiter := NewSourceLimiter(0.2, 1)
	inner := &recordingFetcher{}
	fetcher := NewFetcher(inner, limiter, "indeed")

	_ = limiter.Wait(context.Background(), "indeed")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := fetcher.FetchListings(ctx, model.Query{}); err == nil {
		t.Fatal("expected limiter error when the deadline is shorter than the wait")
	}
	if inner.called {
		t.Error("inner fetcher should not be called when the limiter fails")
	}
}
