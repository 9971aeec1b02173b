package model

import (
	"context"
	"strings"
	"time"
)

// SourceTag identifies the job board a listing came from.
type SourceTag string

const (
	SourceCareerJet SourceTag = "careerjet"
	SourceIndeed    SourceTag = "indeed"
	SourceCareers24 SourceTag = "careers24"
)

// Sentinels for fields that boards report inconsistently.
const (
	DateRecent         = "Recent"
	SalaryNotSpecified = "Not specified"
)

// Listing is the canonical job record every adapter produces.
type Listing struct {
	Title      string    `json:"title"`
	Company    string    `json:"company"`
	Location   string    `json:"location"`    // as reported by the board
	URL        string    `json:"url"`         // absolute, or empty if the board gave none
	Source     SourceTag `json:"source"`
	DatePosted string    `json:"date_posted"` // free form, DateRecent when unknown
	Salary     string    `json:"salary"`      // free form, SalaryNotSpecified when absent
	ScrapedAt  time.Time `json:"scraped_at"`  // set by the aggregator, one value per search
}

// DedupKey collapses duplicate listings across boards.
type DedupKey struct {
	Title   string
	Company string
}

// Key returns the listing's dedup key: lowercased, trimmed title and company.
func (l Listing) Key() DedupKey {
	return DedupKey{
		Title:   strings.ToLower(strings.TrimSpace(l.Title)),
		Company: strings.ToLower(strings.TrimSpace(l.Company)),
	}
}

// String renders the key as "title|company".
func (k DedupKey) String() string {
	return k.Title + "|" + k.Company
}

// Query is what an adapter receives for one fetch.
type Query struct {
	Keywords string
	Location string // effective location: town if given, else region
	MaxItems int    // cap on raw candidates converted; <= 0 means no cap
}

// Batch is one page of converted listings plus the candidates that were
// skipped. Skipped items are not an error for the batch.
type Batch struct {
	Listings []Listing
	Skipped  []*ItemParseError
}

// ListingFetcher fetches listings from one board. Implementations return
// errors; the adapter boundary turns them into an empty contribution.
type ListingFetcher interface {
	FetchListings(ctx context.Context, q Query) (Batch, error)
}

// Source is one registered job board as the aggregator sees it. Fetch never
// fails: any problem degrades to zero listings.
type Source interface {
	Name() string
	Fetch(ctx context.Context, keywords, location string) []Listing
}

// SourceStatus describes how one source's fetch went.
type SourceStatus struct {
	Source   string
	Listings int
	Skipped  int // candidate items dropped with an ItemParseError
	Err      error
	Duration time.Duration
}

// OK reports whether the source finished without an adapter failure.
func (s SourceStatus) OK() bool { return s.Err == nil }

// StatusSource is implemented by sources that can report a per-fetch status
// alongside their listings.
type StatusSource interface {
	Source
	FetchWithStatus(ctx context.Context, keywords, location string) ([]Listing, SourceStatus)
}

// SeenStore tracks listing fingerprints already delivered by the watcher.
type SeenStore interface {
	HasSeen(fingerprint string) (bool, error)
	MarkSeen(fingerprint string) error
	Cleanup(olderThan time.Duration) error
	IsEmpty() (bool, error)
}

// Notifier delivers new listings.
type Notifier interface {
	Notify(listings []Listing) error
}

// SearchRun records one execution of a saved search by the watcher.
type SearchRun struct {
	ID       string    `json:"id"`
	Search   string    `json:"search"`
	Region   string    `json:"region"`
	Location string    `json:"location"`
	Listings int       `json:"listings"`
	New      int       `json:"new"`
	Failures int       `json:"failures"` // sources that failed during the run
	RanAt    time.Time `json:"ran_at"`
}

// RunRecorder persists watcher run history.
type RunRecorder interface {
	RecordRun(run SearchRun) error
}
