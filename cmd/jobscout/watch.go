package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobscout-za/jobscout/internal/config"
	"github.com/jobscout-za/jobscout/internal/model"
	"github.com/jobscout-za/jobscout/internal/scheduler"
	"github.com/jobscout-za/jobscout/internal/store"
	"github.com/jobscout-za/jobscout/internal/watch"
)

const (
	// pollPause separates consecutive saved searches within one cycle.
	pollPause = 5 * time.Second
	// seenRetention bounds how long fingerprints and run history are kept.
	seenRetention = 30 * 24 * time.Hour
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run saved searches on an interval",
	Long:  "Runs every saved search immediately and then on watch.interval, notifying only listings not seen before; blocks until SIGINT/SIGTERM.",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, os.Stdout)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if len(cfg.Watch.Searches) == 0 {
		logger.Error("no saved searches configured under watch.searches")
		os.Exit(1)
	}

	logger.Info("config loaded",
		"interval", cfg.Watch.Interval.String(),
		"searches", len(cfg.Watch.Searches),
		"store", cfg.Store.Path,
	)

	sqlStore, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	agg := buildAggregator(cfg, logger)
	n := setupNotifier(cfg, notifierClient(), logger)
	searchPollers := buildPollers(cfg, agg, sqlStore, n, sqlStore, logger)

	pollers := make([]scheduler.Poller, len(searchPollers))
	for i, p := range searchPollers {
		pollers[i] = p
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(pollers, cfg.Watch.Interval, pollPause, logger).
		WithCleanup(sqlStore, seenRetention)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}

// buildPollers creates one poller per saved search. runs may be nil.
func buildPollers(
	cfg *config.Config,
	searcher watch.Searcher,
	seen model.SeenStore,
	n model.Notifier,
	runs model.RunRecorder,
	logger *slog.Logger,
) []*watch.SearchPoller {
	pollers := make([]*watch.SearchPoller, 0, len(cfg.Watch.Searches))
	for _, s := range cfg.Watch.Searches {
		pollers = append(pollers, watch.NewSearchPoller(s, searcher, seen, n, runs, logger.With("search", s.Name)))
	}
	return pollers
}
