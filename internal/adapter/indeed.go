package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/jobscout-za/jobscout/internal/model"
)

const indeedBaseURL = "https://za.indeed.com"

// IndeedAdapter scrapes the Indeed South Africa search results page.
type IndeedAdapter struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewIndeedAdapter creates an Indeed adapter. Empty baseURL or userAgent
// select the defaults.
func NewIndeedAdapter(baseURL, userAgent string, client *http.Client) *IndeedAdapter {
	if baseURL == "" {
		baseURL = indeedBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &IndeedAdapter{baseURL: baseURL, userAgent: userAgent, client: client}
}

// FetchListings runs one search and converts at most q.MaxItems job cards.
func (a *IndeedAdapter) FetchListings(ctx context.Context, q model.Query) (model.Batch, error) {
	target, err := searchURL(a.baseURL, "/jobs", url.Values{
		"q": {q.Keywords},
		"l": {q.Location},
	})
	if err != nil {
		return model.Batch{}, fmt.Errorf("indeed search: %w", err)
	}

	doc, err := fetchDocument(ctx, a.client, target, a.userAgent)
	if err != nil {
		return model.Batch{}, fmt.Errorf("indeed search: %w", err)
	}
	return parseIndeed(doc, a.baseURL, q), nil
}

func parseIndeed(doc *goquery.Document, baseURL string, q model.Query) model.Batch {
	base, _ := url.Parse(baseURL)
	cards := doc.Find("div.job_seen_beacon")

	return convertCandidates(model.SourceIndeed, cards.Length(), q.MaxItems, q, func(i int) model.Listing {
		card := cards.Eq(i)
		title := card.Find("h2.jobTitle").First()
		href, _ := title.Find("a[href]").First().Attr("href")

		company := nodeText(card.Find("span.companyName"))
		if company == "" {
			company = nodeText(card.Find("[data-testid=company-name]"))
		}
		location := nodeText(card.Find("div.companyLocation"))
		if location == "" {
			location = nodeText(card.Find("[data-testid=text-location]"))
		}

		return model.Listing{
			Title:      nodeText(title),
			Company:    company,
			Location:   location,
			Salary:     nodeText(card.Find("div.salary-snippet-container")),
			DatePosted: nodeText(card.Find("span.date")),
			URL:        resolveURL(base, href),
		}
	})
}
