package adapter

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/jobscout-za/jobscout/internal/model"
)

var strictPolicy = bluemonday.StrictPolicy()

// cleanText collapses runs of whitespace in already decoded text. It never
// interprets the text as markup, so "<Remote>" or "R&amp;D" survive as is.
func cleanText(content string) string {
	return strings.Join(strings.Fields(content), " ")
}

// markupText turns an HTML fragment taken from a page into plain text. Tags
// are stripped by the sanitizer, which escapes the text it keeps; that text
// is then unescaped exactly once.
func markupText(fragment string) string {
	return cleanText(html.UnescapeString(strictPolicy.Sanitize(fragment)))
}

// nodeText returns the plain text of the first node in sel, or "".
func nodeText(sel *goquery.Selection) string {
	fragment, err := sel.First().Html()
	if err != nil {
		return cleanText(sel.First().Text())
	}
	return markupText(fragment)
}

// resolveURL makes href absolute against base. Empty or unparseable hrefs
// yield "".
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		if ref.IsAbs() {
			return ref.String()
		}
		return ""
	}
	return base.ResolveReference(ref).String()
}

// Finalize normalizes whitespace in the text fields of a freshly extracted
// listing and applies the canonical defaults.
func Finalize(l model.Listing, requestedLocation string) model.Listing {
	l.Title = cleanText(l.Title)
	l.Company = cleanText(l.Company)
	l.Location = cleanText(l.Location)
	l.DatePosted = cleanText(l.DatePosted)
	l.Salary = cleanText(l.Salary)
	return withDefaults(l, requestedLocation)
}

// withDefaults fills the requested location when the board gave none, and
// the date and salary sentinels. Text is left untouched.
func withDefaults(l model.Listing, requestedLocation string) model.Listing {
	l.URL = strings.TrimSpace(l.URL)
	if strings.TrimSpace(l.Location) == "" {
		l.Location = requestedLocation
	}
	if strings.TrimSpace(l.DatePosted) == "" {
		l.DatePosted = model.DateRecent
	}
	if strings.TrimSpace(l.Salary) == "" {
		l.Salary = model.SalaryNotSpecified
	}
	return l
}

// missingField names the first required field a listing lacks, or "".
func missingField(l model.Listing) string {
	switch {
	case strings.TrimSpace(l.Title) == "":
		return "missing title"
	case strings.TrimSpace(l.Company) == "":
		return "missing company"
	}
	return ""
}

// candidateFunc extracts the listing for candidate i of a page.
type candidateFunc func(i int) model.Listing

// convertCandidates runs extract over the first limit of n candidates. Each
// candidate is converted in isolation: a panic or a missing required field
// skips that candidate with an *model.ItemParseError and the loop continues.
func convertCandidates(source model.SourceTag, n, limit int, q model.Query, extract candidateFunc) model.Batch {
	if limit > 0 && n > limit {
		n = limit
	}
	batch := model.Batch{Listings: make([]model.Listing, 0, n)}
	for i := 0; i < n; i++ {
		l, perr := convertOne(source, i, q, extract)
		if perr != nil {
			batch.Skipped = append(batch.Skipped, perr)
			continue
		}
		batch.Listings = append(batch.Listings, l)
	}
	return batch
}

func convertOne(source model.SourceTag, i int, q model.Query, extract candidateFunc) (l model.Listing, perr *model.ItemParseError) {
	defer func() {
		if r := recover(); r != nil {
			perr = &model.ItemParseError{Source: string(source), Index: i, Reason: fmt.Sprintf("panic: %v", r)}
		}
	}()

	l = Finalize(extract(i), q.Location)
	l.Source = source
	if reason := missingField(l); reason != "" {
		return model.Listing{}, &model.ItemParseError{Source: string(source), Index: i, Reason: reason}
	}
	return l, nil
}
