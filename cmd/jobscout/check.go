package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobscout-za/jobscout/internal/notifier"
	"github.com/jobscout-za/jobscout/internal/store"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run saved searches once, print matches, exit",
	Long:  "One-shot run of every saved search: prints matched listings and exits. Sends no notifications and does not write to the store.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, os.Stderr)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	if len(cfg.Watch.Searches) == 0 {
		return fmt.Errorf("no saved searches configured under watch.searches")
	}

	logger.Info("check mode: no listings will be marked as seen")

	agg := buildAggregator(cfg, logger)
	pollers := buildPollers(cfg, agg, store.NewNopStore(), notifier.NewLogNotifier(logger), nil, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, p := range pollers {
		listings, err := p.Preview(ctx)
		if err != nil {
			logger.Error("search failed", "search", p.Name(), "error", err)
			continue
		}

		fmt.Printf("%s: %d listings\n", p.Name(), len(listings))
		fmt.Println(strings.Repeat("─", 60))
		for _, l := range listings {
			fmt.Printf("  %-40s %-25s %s\n", truncate(l.Title, 40), truncate(l.Company, 25), l.Source)
		}
		fmt.Println()
	}

	logger.Info("check complete")
	return nil
}
