package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jobscout-za/jobscout/internal/model"
)

const (
	// DefaultTimeout bounds one source's fetch, retries included.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxItems caps the raw candidates converted per source.
	DefaultMaxItems = 10
)

// Ensure Source satisfies the aggregator's contracts.
var _ model.StatusSource = (*Source)(nil)

// Source is the failure boundary around one board's fetcher. It applies the
// per-source timeout and item cap, absorbs errors and panics, and reports a
// status for every fetch. Fetch never returns an error.
type Source struct {
	name     string
	tag      model.SourceTag
	fetcher  model.ListingFetcher
	timeout  time.Duration
	maxItems int
	logger   *slog.Logger
}

// NewSource wraps fetcher. A non-positive timeout or maxItems selects the
// defaults.
func NewSource(name string, fetcher model.ListingFetcher, timeout time.Duration, maxItems int, logger *slog.Logger) *Source {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &Source{
		name:     name,
		tag:      model.SourceTag(name),
		fetcher:  fetcher,
		timeout:  timeout,
		maxItems: maxItems,
		logger:   logger,
	}
}

// Name returns the source identifier.
func (s *Source) Name() string { return s.name }

// Fetch returns this source's listings for one search, or none on failure.
func (s *Source) Fetch(ctx context.Context, keywords, location string) []model.Listing {
	listings, _ := s.FetchWithStatus(ctx, keywords, location)
	return listings
}

type fetchOutcome struct {
	batch model.Batch
	err   error
}

// FetchWithStatus is Fetch plus a report of what happened. The fetch is
// abandoned as soon as the timeout or the caller's context fires.
func (s *Source) FetchWithStatus(ctx context.Context, keywords, location string) ([]model.Listing, model.SourceStatus) {
	start := time.Now()
	status := model.SourceStatus{Source: s.name}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	q := model.Query{Keywords: keywords, Location: location, MaxItems: s.maxItems}
	done := make(chan fetchOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fetchOutcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		batch, err := s.fetcher.FetchListings(ctx, q)
		done <- fetchOutcome{batch: batch, err: err}
	}()

	var out fetchOutcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out = fetchOutcome{err: ctx.Err()}
	}
	status.Duration = time.Since(start)

	if out.err != nil {
		status.Err = &model.AdapterError{Source: s.name, Err: out.err}
		s.logger.Warn("source failed",
			"source", s.name,
			"location", location,
			"duration", status.Duration,
			"error", out.err,
		)
		return nil, status
	}

	listings, skipped := s.accept(out.batch, location)
	for _, perr := range skipped {
		s.logger.Debug("skipped candidate", "source", s.name, "index", perr.Index, "batch_pos", perr.BatchPos, "reason", perr.Reason)
	}

	status.Listings = len(listings)
	status.Skipped = len(skipped)
	s.logger.Debug("source fetched",
		"source", s.name,
		"location", location,
		"listings", status.Listings,
		"skipped", status.Skipped,
		"duration", status.Duration,
	)
	return listings, status
}

// accept enforces the canonical listing invariants on whatever the fetcher
// returned: the item cap, required fields, defaults and the source tag. Text
// is not cleaned again. Rejections here carry model.BatchIndex.
func (s *Source) accept(batch model.Batch, location string) ([]model.Listing, []*model.ItemParseError) {
	skipped := batch.Skipped
	raw := batch.Listings
	if len(raw) > s.maxItems {
		raw = raw[:s.maxItems]
	}

	listings := make([]model.Listing, 0, len(raw))
	for i, l := range raw {
		l = withDefaults(l, location)
		if reason := missingField(l); reason != "" {
			skipped = append(skipped, &model.ItemParseError{Source: s.name, Index: model.BatchIndex, BatchPos: i, Reason: reason})
			continue
		}
		if l.Source == "" {
			l.Source = s.tag
		}
		l.ScrapedAt = time.Time{}
		listings = append(listings, l)
	}
	return listings, skipped
}
