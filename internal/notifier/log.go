package notifier

import (
	"log/slog"

	"github.com/jobscout-za/jobscout/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes new listings to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each listing via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each listing. Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(listings []model.Listing) error {
	for _, l := range listings {
		n.logger.Info("new listing",
			"title", l.Title,
			"company", l.Company,
			"location", l.Location,
			"salary", l.Salary,
			"posted", l.DatePosted,
			"source", l.Source,
			"url", l.URL,
		)
	}
	return nil
}
