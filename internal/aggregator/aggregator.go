// Package aggregator fans one search out to every registered job board and
// merges the answers into a single deduplicated, capped result.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jobscout-za/jobscout/internal/model"
	"github.com/jobscout-za/jobscout/internal/region"
)

// DefaultResultCap is the maximum number of listings one search returns.
const DefaultResultCap = 20

// SourceReport is one source's contribution to a search.
type SourceReport struct {
	Source     string `json:"source"`
	Listings   int    `json:"listings"`
	Skipped    int    `json:"skipped"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// OK reports whether the source answered without failing.
func (r SourceReport) OK() bool { return r.Error == "" }

// Result is a search outcome plus the per-source report.
type Result struct {
	Location  string          `json:"location"`
	ScrapedAt time.Time       `json:"scraped_at"`
	Listings  []model.Listing `json:"listings"`
	Sources   []SourceReport  `json:"sources,omitempty"`
}

// AllFailed reports whether every source failed. An empty result with
// AllFailed false means the boards simply had nothing.
func (r Result) AllFailed() bool {
	if len(r.Sources) == 0 {
		return false
	}
	for _, s := range r.Sources {
		if s.OK() {
			return false
		}
	}
	return true
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock overrides the timestamp source used for ScrapedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// Aggregator runs searches across a fixed, ordered set of sources. It holds
// no per-search state and is safe for concurrent use.
type Aggregator struct {
	sources   []model.Source
	resultCap int
	logger    *slog.Logger
	now       func() time.Time
}

// New creates an Aggregator. Registration order of sources decides which
// listing wins when two boards return the same job. A non-positive
// resultCap selects DefaultResultCap.
func New(sources []model.Source, resultCap int, logger *slog.Logger, opts ...Option) *Aggregator {
	if resultCap <= 0 {
		resultCap = DefaultResultCap
	}
	a := &Aggregator{
		sources:   append([]model.Source(nil), sources...),
		resultCap: resultCap,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Sources returns the registered source names in registration order.
func (a *Aggregator) Sources() []string {
	names := make([]string, len(a.sources))
	for i, s := range a.sources {
		names[i] = s.Name()
	}
	return names
}

// Search returns up to the result cap of deduplicated listings for keywords
// in region, narrowed to town when one is given. Source failures degrade to
// fewer listings; only an unknown region or town, or a cancelled context,
// produce an error.
func (a *Aggregator) Search(ctx context.Context, keywords, regionID, town string) ([]model.Listing, error) {
	res, err := a.SearchWithReport(ctx, keywords, regionID, town)
	if err != nil {
		return nil, err
	}
	return res.Listings, nil
}

type slot struct {
	listings []model.Listing
	report   SourceReport
}

// SearchWithReport is Search plus a report of how each source did.
func (a *Aggregator) SearchWithReport(ctx context.Context, keywords, regionID, town string) (Result, error) {
	location, err := region.Resolve(regionID, town)
	if err != nil {
		return Result{}, fmt.Errorf("search: %w", err)
	}

	slots := make([]slot, len(a.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range a.sources {
		g.Go(func() error {
			slots[i] = a.fetch(gctx, src, keywords, location)
			return nil
		})
	}
	_ = g.Wait() // fetches never return errors

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	stamp := a.now()
	res := Result{
		Location:  location,
		ScrapedAt: stamp,
		Listings:  make([]model.Listing, 0, a.resultCap),
		Sources:   make([]SourceReport, len(slots)),
	}

	seen := make(map[model.DedupKey]struct{})
	total := 0
	for i, s := range slots {
		res.Sources[i] = s.report
		for _, l := range s.listings {
			total++
			key := l.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if len(res.Listings) == a.resultCap {
				continue
			}
			l.ScrapedAt = stamp
			res.Listings = append(res.Listings, l)
		}
	}

	a.logger.Info("search complete",
		"keywords", keywords,
		"location", location,
		"fetched", total,
		"unique", len(seen),
		"returned", len(res.Listings),
	)
	if res.AllFailed() {
		a.logger.Warn("all sources failed", "location", location)
	}
	return res, nil
}

// fetch runs one source and converts its outcome into a slot.
func (a *Aggregator) fetch(ctx context.Context, src model.Source, keywords, location string) (out slot) {
	out.report.Source = src.Name()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("source panicked", "source", src.Name(), "panic", r)
			out.listings = nil
			out.report = SourceReport{
				Source:     src.Name(),
				Error:      fmt.Sprintf("panic: %v", r),
				DurationMS: time.Since(start).Milliseconds(),
			}
		}
	}()

	if ss, ok := src.(model.StatusSource); ok {
		listings, status := ss.FetchWithStatus(ctx, keywords, location)
		out.listings = listings
		out.report = reportFrom(status)
		return out
	}

	out.listings = src.Fetch(ctx, keywords, location)
	out.report.Listings = len(out.listings)
	out.report.DurationMS = time.Since(start).Milliseconds()
	return out
}

func reportFrom(s model.SourceStatus) SourceReport {
	r := SourceReport{
		Source:     s.Source,
		Listings:   s.Listings,
		Skipped:    s.Skipped,
		DurationMS: s.Duration.Milliseconds(),
	}
	if s.Err != nil {
		r.Error = s.Err.Error()
	}
	return r
}
