// Package watch re-runs saved searches and delivers only listings that have
// not been seen before.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jobscout-za/jobscout/internal/aggregator"
	"github.com/jobscout-za/jobscout/internal/config"
	"github.com/jobscout-za/jobscout/internal/model"
)

// ErrAllSourcesFailed is returned by Poll when no board answered, so an
// outage is not mistaken for an empty market.
var ErrAllSourcesFailed = errors.New("all sources failed")

// Searcher runs one aggregated search. *aggregator.Aggregator implements it.
type Searcher interface {
	SearchWithReport(ctx context.Context, keywords, region, town string) (aggregator.Result, error)
}

// SearchPoller owns the full pipeline for one saved search:
// search → dedup against the store → notify → mark seen → record run.
type SearchPoller struct {
	search   config.SearchConfig
	searcher Searcher
	store    model.SeenStore
	notifier model.Notifier
	runs     model.RunRecorder
	logger   *slog.Logger
}

// NewSearchPoller creates a poller wired with all its dependencies. runs may
// be nil.
func NewSearchPoller(
	search config.SearchConfig,
	searcher Searcher,
	store model.SeenStore,
	notifier model.Notifier,
	runs model.RunRecorder,
	logger *slog.Logger,
) *SearchPoller {
	return &SearchPoller{
		search:   search,
		searcher: searcher,
		store:    store,
		notifier: notifier,
		runs:     runs,
		logger:   logger,
	}
}

// Name returns the saved search's name.
func (p *SearchPoller) Name() string { return p.search.Name }

// Fingerprint identifies a listing within one saved search. It ignores the
// board so a job reposted on another board is not delivered twice.
func Fingerprint(searchName string, l model.Listing) string {
	sum := sha256.Sum256([]byte(searchName + "\x00" + l.Key().String()))
	return hex.EncodeToString(sum[:])
}

// Poll runs one cycle. On a store that has never recorded anything the
// current listings are marked seen without notifying.
func (p *SearchPoller) Poll(ctx context.Context) error {
	_, err := p.poll(ctx, true)
	return err
}

// Preview runs the search and returns the listings Poll would deliver, without
// notifying or writing to the store.
func (p *SearchPoller) Preview(ctx context.Context) ([]model.Listing, error) {
	return p.poll(ctx, false)
}

func (p *SearchPoller) poll(ctx context.Context, commit bool) ([]model.Listing, error) {
	s := p.search
	res, err := p.searcher.SearchWithReport(ctx, s.Keywords, s.Region, s.Town)
	if err != nil {
		return nil, fmt.Errorf("polling %s: %w", s.Name, err)
	}

	failures := 0
	for _, src := range res.Sources {
		if !src.OK() {
			failures++
		}
	}
	if res.AllFailed() {
		if commit {
			p.record(res, 0, failures)
		}
		return nil, fmt.Errorf("polling %s: %w", s.Name, ErrAllSourcesFailed)
	}

	firstRun := false
	if commit {
		firstRun, err = p.store.IsEmpty()
		if err != nil {
			return nil, fmt.Errorf("polling %s: checking store: %w", s.Name, err)
		}
	}

	var fresh []model.Listing
	var prints []string
	for _, l := range res.Listings {
		fp := Fingerprint(s.Name, l)
		seen, err := p.store.HasSeen(fp)
		if err != nil {
			return nil, fmt.Errorf("polling %s: checking seen status: %w", s.Name, err)
		}
		if !seen {
			fresh = append(fresh, l)
			prints = append(prints, fp)
		}
	}

	if !commit {
		return fresh, nil
	}

	notified := 0
	if firstRun {
		p.logger.Info("first run, seeding store without notifying", "search", s.Name, "listings", len(fresh))
	} else if len(fresh) > 0 {
		if err := p.notifier.Notify(fresh); err != nil {
			return nil, fmt.Errorf("polling %s: notifying: %w", s.Name, err)
		}
		notified = len(fresh)
	}

	for _, fp := range prints {
		if err := p.store.MarkSeen(fp); err != nil {
			return nil, fmt.Errorf("polling %s: marking seen: %w", s.Name, err)
		}
	}

	p.record(res, notified, failures)
	p.logger.Info("polled search",
		"search", s.Name,
		"location", res.Location,
		"fetched", len(res.Listings),
		"new", len(fresh),
		"notified", notified,
		"failed_sources", failures,
	)
	return fresh, nil
}

func (p *SearchPoller) record(res aggregator.Result, notified, failures int) {
	if p.runs == nil {
		return
	}
	run := model.SearchRun{
		Search:   p.search.Name,
		Region:   p.search.Region,
		Location: res.Location,
		Listings: len(res.Listings),
		New:      notified,
		Failures: failures,
		RanAt:    res.ScrapedAt,
	}
	if err := p.runs.RecordRun(run); err != nil {
		p.logger.Warn("recording run failed", "search", p.search.Name, "error", err)
	}
}
