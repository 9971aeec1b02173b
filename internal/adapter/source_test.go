package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jobscout-za/jobscout/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeFetcher returns canned results and records the query it saw.
type fakeFetcher struct {
	batch model.Batch
	err   error
	delay time.Duration
	panic bool
	got   model.Query
}

func (f *fakeFetcher) FetchListings(ctx context.Context, q model.Query) (model.Batch, error) {
	f.got = q
	if f.panic {
		panic("selector exploded")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return model.Batch{}, ctx.Err()
		}
	}
	return f.batch, f.err
}

func listings(n int) []model.Listing {
	out := make([]model.Listing, n)
	for i := range out {
		out[i] = model.Listing{Title: fmt.Sprintf("Role %d", i), Company: "Acme"}
	}
	return out
}

func TestSource_PassesQueryAndAppliesDefaults(t *testing.T) {
	f := &fakeFetcher{batch: model.Batch{Listings: []model.Listing{{Title: "Cashier", Company: "Pick n Pay"}}}}
	s := NewSource("careerjet", f, time.Second, 15, discardLogger())

	got, status := s.FetchWithStatus(context.Background(), "cashier", "durban")
	if f.got.Keywords != "cashier" || f.got.Location != "durban" || f.got.MaxItems != 15 {
		t.Errorf("fetcher saw %+v", f.got)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(got))
	}
	l := got[0]
	if l.Location != "durban" || l.Salary != model.SalaryNotSpecified || l.DatePosted != model.DateRecent {
		t.Errorf("defaults not applied: %+v", l)
	}
	if l.Source != "careerjet" {
		t.Errorf("Source = %q, want tag from source name", l.Source)
	}
	if !status.OK() || status.Listings != 1 || status.Source != "careerjet" {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestSource_ErrorBecomesEmpty(t *testing.T) {
	f := &fakeFetcher{err: &model.HTTPError{StatusCode: 503}}
	s := NewSource("indeed", f, time.Second, 10, discardLogger())

	got, status := s.FetchWithStatus(context.Background(), "x", "gauteng")
	if len(got) != 0 {
		t.Errorf("expected no listings on failure, got %d", len(got))
	}
	var adapterErr *model.AdapterError
	if !errors.As(status.Err, &adapterErr) || adapterErr.Source != "indeed" {
		t.Fatalf("expected AdapterError, got %v", status.Err)
	}
	var httpErr *model.HTTPError
	if !errors.As(status.Err, &httpErr) {
		t.Error("expected HTTPError to be reachable through AdapterError")
	}
}

func TestSource_PanicIsRecovered(t *testing.T) {
	s := NewSource("careers24", &fakeFetcher{panic: true}, time.Second, 10, discardLogger())

	got := s.Fetch(context.Background(), "x", "limpopo")
	if got != nil {
		t.Errorf("expected nil listings after panic, got %v", got)
	}
	_, status := s.FetchWithStatus(context.Background(), "x", "limpopo")
	if status.OK() {
		t.Error("expected status to carry the recovered panic")
	}
}

func TestSource_TimeoutAbandonsFetch(t *testing.T) {
	f := &fakeFetcher{delay: 5 * time.Second, batch: model.Batch{Listings: listings(3)}}
	s := NewSource("slow", f, 50*time.Millisecond, 10, discardLogger())

	start := time.Now()
	_, status := s.FetchWithStatus(context.Background(), "x", "gauteng")
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("fetch took %v, want it bounded by the 50ms timeout", elapsed)
	}
	if !errors.Is(status.Err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", status.Err)
	}
}

func TestSource_CapsListings(t *testing.T) {
	f := &fakeFetcher{batch: model.Batch{Listings: listings(100)}}
	s := NewSource("bulk", f, time.Second, 12, discardLogger())

	got := s.Fetch(context.Background(), "x", "gauteng")
	if len(got) != 12 {
		t.Errorf("expected 12 listings, got %d", len(got))
	}
}

func TestSource_DropsInvalidAndCountsSkipped(t *testing.T) {
	f := &fakeFetcher{batch: model.Batch{
		Listings: []model.Listing{
			{Title: "Valid", Company: "Acme"},
			{Title: "No company"},
			{Company: "No title"},
		},
		Skipped: []*model.ItemParseError{{Source: "mixed", Index: 7, Reason: "missing title"}},
	}}
	s := NewSource("mixed", f, time.Second, 10, discardLogger())

	got, status := s.FetchWithStatus(context.Background(), "x", "gauteng")
	if len(got) != 1 || got[0].Title != "Valid" {
		t.Errorf("unexpected listings: %+v", got)
	}
	if status.Skipped != 3 {
		t.Errorf("Skipped = %d, want 3", status.Skipped)
	}
}

func TestNewSource_Defaults(t *testing.T) {
	s := NewSource("x", &fakeFetcher{}, 0, 0, discardLogger())
	if s.timeout != DefaultTimeout || s.maxItems != DefaultMaxItems {
		t.Errorf("defaults not applied: timeout=%v maxItems=%d", s.timeout, s.maxItems)
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "angle brackets are text", input: "Developer <Remote>", want: "Developer <Remote>"},
		{name: "brackets mid title", input: "C++ <Senior> Engineer", want: "C++ <Senior> Engineer"},
		{name: "entity-looking text kept", input: "R&amp;D", want: "R&amp;D"},
		{name: "ampersand survives", input: "Data & Analytics", want: "Data & Analytics"},
		{name: "apostrophe survives", input: "Nando's", want: "Nando's"},
		{name: "whitespace", input: "  Cape Town \n\t CBD ", want: "Cape Town CBD"},
		{name: "empty", input: "", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := cleanText(tc.input); got != tc.want {
				t.Errorf("cleanText(%q)\n got  %q\n want %q", tc.input, got, tc.want)
			}
			if again := cleanText(cleanText(tc.input)); again != tc.want {
				t.Errorf("cleanText is not idempotent for %q: %q", tc.input, again)
			}
		})
	}
}

func TestMarkupText(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     string
	}{
		{name: "tags stripped", fragment: "<b>Senior</b> Developer", want: "Senior Developer"},
		{name: "escaped brackets kept", fragment: "&lt;Acme&gt;", want: "<Acme>"},
		{name: "ampersand decoded once", fragment: "R&amp;D Manager", want: "R&D Manager"},
		{name: "double escaped decoded once", fragment: "R&amp;amp;D", want: "R&amp;D"},
		{name: "numeric entity", fragment: "Nando&#39;s", want: "Nando's"},
		{name: "script dropped", fragment: "<script>alert(1)</script>Cashier", want: "Cashier"},
		{name: "nested whitespace", fragment: "<span> Cape\n Town </span>", want: "Cape Town"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := markupText(tc.fragment); got != tc.want {
				t.Errorf("markupText(%q)\n got  %q\n want %q", tc.fragment, got, tc.want)
			}
		})
	}
}

func TestSource_DoesNotRecleanFinalizedText(t *testing.T) {
	f := &fakeFetcher{batch: model.Batch{Listings: []model.Listing{
		{Title: "R&amp;D <Lead>", Company: "<Acme>"},
	}}}
	s := NewSource("careerjet", f, time.Second, 10, discardLogger())

	got := s.Fetch(context.Background(), "x", "gauteng")
	if len(got) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(got))
	}
	if got[0].Title != "R&amp;D <Lead>" || got[0].Company != "<Acme>" {
		t.Errorf("text altered at the boundary: title=%q company=%q", got[0].Title, got[0].Company)
	}
}

func TestSource_BoundaryRejectionUsesBatchPosition(t *testing.T) {
	f := &fakeFetcher{batch: model.Batch{Listings: []model.Listing{
		{Title: "Valid", Company: "Acme"},
		{Title: "No company"},
	}}}
	s := NewSource("mixed", f, time.Second, 10, discardLogger())

	_, skipped := s.accept(f.batch, "gauteng")
	if len(skipped) != 1 {
		t.Fatalf("expected 1 skipped, got %d", len(skipped))
	}
	if skipped[0].Index != model.BatchIndex || skipped[0].BatchPos != 1 {
		t.Errorf("skipped = %+v, want Index=BatchIndex BatchPos=1", skipped[0])
	}
	if got := skipped[0].Error(); got != "source mixed: listing 1: missing company" {
		t.Errorf("Error() = %q", got)
	}
}

func TestConvertCandidates_PanicSkipsOnlyThatItem(t *testing.T) {
	q := model.Query{Location: "gauteng"}
	batch := convertCandidates(model.SourceIndeed, 3, 10, q, func(i int) model.Listing {
		if i == 1 {
			var sel []string
			_ = sel[5]
		}
		return model.Listing{Title: fmt.Sprintf("Role %d", i), Company: "Acme"}
	})
	if len(batch.Listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(batch.Listings))
	}
	if len(batch.Skipped) != 1 || batch.Skipped[0].Index != 1 {
		t.Errorf("unexpected skipped: %+v", batch.Skipped)
	}
	if batch.Listings[1].Title != "Role 2" {
		t.Errorf("parsing did not continue past the failed item: %+v", batch.Listings)
	}
}
