// Package retry adds backoff retries to a board scraper.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/jobscout-za/jobscout/internal/model"
)

// jitterFraction spreads each backoff delay by up to ±30%.
const jitterFraction = 0.3

// Fetcher retries transient board failures. A retry is only attempted when
// the remaining context budget covers its delay.
type Fetcher struct {
	inner      model.ListingFetcher
	source     string
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewFetcher wraps inner. maxRetries counts attempts after the first one;
// baseDelay doubles with each retry.
func NewFetcher(inner model.ListingFetcher, source string, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		inner:      inner,
		source:     source,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// FetchListings implements model.ListingFetcher.
func (f *Fetcher) FetchListings(ctx context.Context, q model.Query) (model.Batch, error) {
	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			delay := f.backoffDelay(attempt, lastErr)
			if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < delay {
				return model.Batch{}, lastErr
			}

			f.logger.Debug("retrying board request",
				"source", f.source,
				"attempt", attempt,
				"max_retries", f.maxRetries,
				"delay", delay,
				"error", lastErr,
			)
			if err := sleep(ctx, delay); err != nil {
				return model.Batch{}, fmt.Errorf("retry cancelled: %w", err)
			}
		}

		batch, err := f.inner.FetchListings(ctx, q)
		if err == nil {
			return batch, nil
		}
		if !isRetryable(err) {
			return model.Batch{}, err
		}
		lastErr = err
	}
	return model.Batch{}, lastErr
}

// backoffDelay returns the wait before retry number attempt (1-based).
// A Retry-After from the board wins over the computed backoff.
func (f *Fetcher) backoffDelay(attempt int, err error) time.Duration {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.RetryAfter > 0 {
		return httpErr.RetryAfter
	}

	delay := f.baseDelay << (attempt - 1)
	spread := (rand.Float64()*2 - 1) * jitterFraction
	return delay + time.Duration(spread*float64(delay))
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// isRetryable reports whether err is transient: a network failure, a 429 or
// a 5xx. Cancellation and other statuses are final.
func isRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}

	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}
