package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/jobscout-za/jobscout/internal/model"
)

const careerJetBaseURL = "https://www.careerjet.co.za"

// CareerJetAdapter scrapes the CareerJet South Africa search results page.
type CareerJetAdapter struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewCareerJetAdapter creates a CareerJet adapter. Empty baseURL or
// userAgent select the defaults.
func NewCareerJetAdapter(baseURL, userAgent string, client *http.Client) *CareerJetAdapter {
	if baseURL == "" {
		baseURL = careerJetBaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &CareerJetAdapter{baseURL: baseURL, userAgent: userAgent, client: client}
}

// FetchListings runs one search and converts at most q.MaxItems result cards.
func (a *CareerJetAdapter) FetchListings(ctx context.Context, q model.Query) (model.Batch, error) {
	target, err := searchURL(a.baseURL, "/search/jobs", url.Values{
		"s":      {q.Keywords},
		"l":      {q.Location},
		"radius": {"25"},
	})
	if err != nil {
		return model.Batch{}, fmt.Errorf("careerjet search: %w", err)
	}

	doc, err := fetchDocument(ctx, a.client, target, a.userAgent)
	if err != nil {
		return model.Batch{}, fmt.Errorf("careerjet search: %w", err)
	}
	return parseCareerJet(doc, a.baseURL, q), nil
}

func parseCareerJet(doc *goquery.Document, baseURL string, q model.Query) model.Batch {
	base, _ := url.Parse(baseURL)
	cards := doc.Find("article.job")

	return convertCandidates(model.SourceCareerJet, cards.Length(), q.MaxItems, q, func(i int) model.Listing {
		card := cards.Eq(i)
		title := card.Find("h2").First()
		href, _ := title.Find("a[href]").First().Attr("href")
		if href == "" {
			href, _ = card.Attr("data-url")
		}
		return model.Listing{
			Title:      nodeText(title),
			Company:    nodeText(card.Find("p.company")),
			Location:   nodeText(card.Find("ul.location")),
			Salary:     nodeText(card.Find("ul.salary")),
			DatePosted: nodeText(card.Find("footer .date")),
			URL:        resolveURL(base, href),
		}
	})
}
