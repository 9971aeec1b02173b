package main

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobscout-za/jobscout/internal/adapter"
	"github.com/jobscout-za/jobscout/internal/aggregator"
	"github.com/jobscout-za/jobscout/internal/config"
	"github.com/jobscout-za/jobscout/internal/model"
	"github.com/jobscout-za/jobscout/internal/notifier"
	"github.com/jobscout-za/jobscout/internal/ratelimit"
	"github.com/jobscout-za/jobscout/internal/retry"
)

const configEnv = "JOBSCOUT_CONFIG"

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:           "jobscout",
	Short:         "South African job search across CareerJet, Indeed and Careers24",
	Long:          "jobscout searches several South African job boards at once and merges the results into one deduplicated list.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: "+configEnv+" env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBSCOUT_CONFIG env var > "./config.yaml".
// Only the implicit default may be missing, in which case defaults apply.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if env := os.Getenv(configEnv); env != "" {
		return config.Load(env)
	}
	return config.LoadOrDefault("config.yaml", true)
}

func setupLogger(dbg bool, w io.Writer) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// createFetcher builds the board scraper for one configured source.
func createFetcher(sc config.SourceConfig, userAgent string, client *http.Client) (model.ListingFetcher, bool) {
	switch sc.Name {
	case "careerjet":
		return adapter.NewCareerJetAdapter(sc.BaseURL, userAgent, client), true
	case "indeed":
		return adapter.NewIndeedAdapter(sc.BaseURL, userAgent, client), true
	case "careers24":
		return adapter.NewCareers24Adapter(sc.BaseURL, userAgent, client), true
	default:
		return nil, false
	}
}

// buildSources wires every enabled source as
// board scraper → rate limit → retry → failure boundary.
func buildSources(cfg *config.Config, logger *slog.Logger) []model.Source {
	limiter := ratelimit.NewSourceLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	logger.Debug("rate limiter configured",
		"requests_per_second", cfg.RateLimit.RequestsPerSecond,
		"burst", cfg.RateLimit.Burst,
	)

	var sources []model.Source
	for _, sc := range cfg.EnabledSources() {
		client := &http.Client{Timeout: sc.Timeout}
		fetcher, ok := createFetcher(sc, cfg.UserAgent, client)
		if !ok {
			logger.Warn("unsupported source, skipping", "source", sc.Name)
			continue
		}

		fetcher = ratelimit.NewFetcher(fetcher, limiter, sc.Name)
		fetcher = retry.NewFetcher(fetcher, sc.Name, cfg.Retry.MaxRetries, cfg.Retry.BaseDelay, logger)
		sources = append(sources, adapter.NewSource(sc.Name, fetcher, sc.Timeout, sc.MaxItems, logger))
		logger.Debug("registered source", "source", sc.Name, "timeout", sc.Timeout.String(), "max_items", sc.MaxItems)
	}
	return sources
}

func buildAggregator(cfg *config.Config, logger *slog.Logger) *aggregator.Aggregator {
	return aggregator.New(buildSources(cfg, logger), cfg.ResultCap, logger)
}

// notifierClient is shared by outbound notifications.
func notifierClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
