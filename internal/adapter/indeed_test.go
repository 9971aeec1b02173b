package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jobscout-za/jobscout/internal/model"
)

const indeedPage = `<html><body>
<div id="mosaic-jobResults">
  <div class="job_seen_beacon">
    <h2 class="jobTitle"><a href="/rc/clk?jk=abc123"><span>Senior Backend Developer</span></a></h2>
    <span class="companyName">Takealot</span>
    <div class="companyLocation">Cape Town, Western Cape</div>
    <div class="salary-snippet-container">R60 000 a month</div>
    <span class="date">Posted 3 days ago</span>
  </div>
  <div class="job_seen_beacon">
    <h2 class="jobTitle"><a href="/rc/clk?jk=def456">QA Engineer</a></h2>
    <span data-testid="company-name">Discovery</span>
    <div data-testid="text-location">Sandton</div>
  </div>
  <div class="job_seen_beacon">
    <h2 class="jobTitle"><a href="/rc/clk?jk=zzz">Orphan Role</a></h2>
  </div>
</div>
</body></html>`

func TestIndeed_FetchListings(t *testing.T) {
	srv := serveHTML(t, indeedPage)
	a := NewIndeedAdapter(srv.URL, "", srv.Client())

	batch, err := a.FetchListings(context.Background(), model.Query{Keywords: "developer", Location: "western_cape", MaxItems: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(batch.Listings))
	}
	if len(batch.Skipped) != 1 || batch.Skipped[0].Index != 2 {
		t.Errorf("unexpected skipped: %+v", batch.Skipped)
	}

	j := batch.Listings[0]
	if j.Title != "Senior Backend Developer" || j.Company != "Takealot" {
		t.Errorf("unexpected listing: %+v", j)
	}
	if j.URL != srv.URL+"/rc/clk?jk=abc123" {
		t.Errorf("URL = %q", j.URL)
	}
	if j.Salary != "R60 000 a month" || j.DatePosted != "Posted 3 days ago" {
		t.Errorf("salary=%q date=%q", j.Salary, j.DatePosted)
	}
	if j.Source != model.SourceIndeed {
		t.Errorf("Source = %q", j.Source)
	}

	fallback := batch.Listings[1]
	if fallback.Company != "Discovery" || fallback.Location != "Sandton" {
		t.Errorf("expected data-testid fallbacks, got %+v", fallback)
	}
}

func TestIndeed_RequestShape(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	a := NewIndeedAdapter("", "jobscout-test/1.0", rewriteClient(srv))
	batch, err := a.FetchListings(context.Background(), model.Query{Keywords: "nurse", Location: "polokwane"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Listings) != 0 {
		t.Errorf("expected no listings, got %d", len(batch.Listings))
	}
	if gotPath != "/jobs" || gotQuery["q"][0] != "nurse" || gotQuery["l"][0] != "polokwane" {
		t.Errorf("unexpected request: path=%q query=%v", gotPath, gotQuery)
	}
}

func TestIndeed_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewIndeedAdapter(srv.URL, "", srv.Client())
	if _, err := a.FetchListings(context.Background(), model.Query{Location: "gauteng"}); err == nil {
		t.Fatal("expected error for HTTP 500, got nil")
	}
}
