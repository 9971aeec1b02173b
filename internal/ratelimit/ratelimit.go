package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/jobscout-za/jobscout/internal/model"
)

// SourceLimiter paces requests per job board. Every search hits every board
// once, so concurrent searches (HTTP API, watcher) share one limiter per
// board.
type SourceLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewSourceLimiter allows reqPerSec requests per board with the given burst.
// A non-positive reqPerSec disables limiting.
func NewSourceLimiter(reqPerSec float64, burst int) *SourceLimiter {
	limit := rate.Limit(reqPerSec)
	if reqPerSec <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &SourceLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

func (l *SourceLimiter) limiterFor(source string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.limiters[source]; ok {
		return lim
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	l.limiters[source] = lim
	return lim
}

// Wait blocks until the board may be called again.
// Returns an error if the context is cancelled while waiting, or if the
// context deadline would pass before a token is available.
func (l *SourceLimiter) Wait(ctx context.Context, source string) error {
	if err := l.limiterFor(source).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", source, err)
	}
	return nil
}

// Fetcher is a decorator that enforces per-board rate limiting before
// delegating to the wrapped ListingFetcher.
type Fetcher struct {
	inner   model.ListingFetcher
	limiter *SourceLimiter
	source  string
}

// NewFetcher wraps a ListingFetcher with per-board rate limiting.
func NewFetcher(inner model.ListingFetcher, limiter *SourceLimiter, source string) *Fetcher {
	return &Fetcher{
		inner:   inner,
		limiter: limiter,
		source:  source,
	}
}

// FetchListings waits for the limiter, then delegates to the wrapped fetcher.
func (f *Fetcher) FetchListings(ctx context.Context, q model.Query) (model.Batch, error) {
	if err := f.limiter.Wait(ctx, f.source); err != nil {
		return model.Batch{}, err
	}
	return f.inner.FetchListings(ctx, q)
}
