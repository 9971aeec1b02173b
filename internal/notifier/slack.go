package notifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/jobscout-za/jobscout/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier sends listing alerts to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
	gap        time.Duration // pause between messages
	sleep      func(time.Duration)
}

// NewSlackNotifier returns a notifier that posts each listing to Slack via webhook.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
		gap:        500 * time.Millisecond,
		sleep:      time.Sleep,
	}
}

// Notify posts one Block Kit message per listing, pausing between posts.
// The error is non-nil only when no message got through.
func (s *SlackNotifier) Notify(listings []model.Listing) error {
	var sent int
	var lastErr error
	for i, l := range listings {
		if i > 0 && s.gap > 0 {
			s.sleep(s.gap)
		}
		if err := s.send(l); err != nil {
			s.logger.Error("slack notification failed", "title", l.Title, "company", l.Company, "source", l.Source, "error", err)
			lastErr = err
			continue
		}
		sent++
	}

	if len(listings) == 0 {
		return nil
	}
	if sent == 0 {
		return fmt.Errorf("all %d slack notifications failed: %w", len(listings), lastErr)
	}
	s.logger.Info("slack notifications complete", "sent", sent, "failed", len(listings)-sent)
	return nil
}

// send posts one listing. A 429 is retried once after the Retry-After delay.
func (s *SlackNotifier) send(l model.Listing) error {
	body, err := json.Marshal(buildPayload(l))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	err = s.post(body)
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests {
		wait := max(httpErr.RetryAfter, time.Second)
		s.logger.Warn("slack rate limited, retrying", "retry_after", wait.String())
		s.sleep(wait)
		if err = s.post(body); err != nil {
			return fmt.Errorf("retry: %w", err)
		}
		s.logger.Debug("slack message sent", "title", l.Title, "retried", true)
		return nil
	}
	if err != nil {
		return err
	}
	s.logger.Debug("slack message sent", "title", l.Title)
	return nil
}

// post sends one webhook request. Any status other than 200 becomes a
// *model.HTTPError carrying Retry-After.
func (s *SlackNotifier) post(body []byte) error {
	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: model.ParseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        errors.New("slack webhook rejected message"),
		}
	}
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style"`
}

// SendTestMessage sends a dummy listing to verify the integration works.
func SendTestMessage(n model.Notifier) error {
	test := model.Listing{
		Title:      "Test Notification",
		Company:    "jobscout",
		Location:   "Sandton",
		URL:        "https://www.careerjet.co.za/",
		Source:     model.SourceCareerJet,
		DatePosted: model.DateRecent,
		Salary:     model.SalaryNotSpecified,
		ScrapedAt:  time.Now(),
	}
	return n.Notify([]model.Listing{test})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func buildPayload(l model.Listing) slackPayload {
	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "💼 " + l.Company + ": " + l.Title},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Company:*\n" + l.Company},
				{Type: "mrkdwn", Text: "*Location:*\n" + l.Location},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Salary:*\n" + l.Salary},
				{Type: "mrkdwn", Text: "*Posted:*\n" + l.DatePosted},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Source:*\n" + capitalize(string(l.Source))},
			},
		},
	}

	// Slack rejects buttons with an empty url.
	if l.URL != "" {
		blocks = append(blocks, slackBlock{
			Type: "actions",
			Elements: []slackElement{
				{
					Type:  "button",
					Text:  slackText{Type: "plain_text", Text: "View Listing"},
					URL:   l.URL,
					Style: "primary",
				},
			},
		})
	}
	blocks = append(blocks, slackBlock{Type: "divider"})

	return slackPayload{Blocks: blocks}
}
