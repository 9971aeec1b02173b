package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gocolly/colly/v2"

	"github.com/jobscout-za/jobscout/internal/model"
)

const careers24BaseURL = "https://www.careers24.com"

// Careers24Adapter scrapes Careers24 search results with a colly collector.
type Careers24Adapter struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewCareers24Adapter creates a Careers24 adapter. Empty baseURL or
// userAgent select the defaults.
func NewCareers24Adapter(baseURL, userAgent string, client *http.Client) *Careers24Adapter {
	if baseURL == "" {
		baseURL = careers24BaseURL
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Careers24Adapter{baseURL: baseURL, userAgent: userAgent, client: client}
}

// FetchListings visits the search page and converts at most q.MaxItems job
// cards. A fresh collector is built per call so concurrent searches share
// no callback state.
func (a *Careers24Adapter) FetchListings(ctx context.Context, q model.Query) (model.Batch, error) {
	target, err := searchURL(a.baseURL, "/jobs/", url.Values{
		"q": {q.Keywords},
		"l": {q.Location},
	})
	if err != nil {
		return model.Batch{}, fmt.Errorf("careers24 search: %w", err)
	}

	c := colly.NewCollector(colly.UserAgent(a.userAgent))
	c.SetClient(a.client)

	var cards []*colly.HTMLElement
	var visitErr error

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})
	c.OnHTML("div.job-card", func(el *colly.HTMLElement) {
		cards = append(cards, el)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r == nil || r.StatusCode == 0 {
			visitErr = err
			return
		}
		httpErr := &model.HTTPError{StatusCode: r.StatusCode, Err: err}
		if r.Headers != nil {
			httpErr.RetryAfter = model.ParseRetryAfter(r.Headers.Get("Retry-After"))
		}
		visitErr = httpErr
	})

	if err := c.Visit(target); err != nil && visitErr == nil {
		visitErr = err
	}
	if ctx.Err() != nil {
		return model.Batch{}, fmt.Errorf("careers24 search: %w", ctx.Err())
	}
	if visitErr != nil {
		return model.Batch{}, fmt.Errorf("careers24 search: %w", visitErr)
	}

	return convertCandidates(model.SourceCareers24, len(cards), q.MaxItems, q, func(i int) model.Listing {
		el := cards[i]
		href := el.ChildAttr(".job-card-head a[href]", "href")
		return model.Listing{
			Title:      nodeText(el.DOM.Find(".job-card-head h2")),
			Company:    nodeText(el.DOM.Find(".job-card-company")),
			Location:   nodeText(el.DOM.Find(".job-card-location")),
			Salary:     nodeText(el.DOM.Find(".job-card-salary")),
			DatePosted: nodeText(el.DOM.Find(".job-card-date")),
			URL:        absoluteFrom(el, href),
		}
	}), nil
}

func absoluteFrom(el *colly.HTMLElement, href string) string {
	if href == "" {
		return ""
	}
	return el.Request.AbsoluteURL(href)
}
