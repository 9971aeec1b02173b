package main

import (
	"context"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobscout-za/jobscout/internal/browse"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Interactive search",
	Long:  "Pick a region and town, enter keywords and page through the merged listings in a terminal UI.",
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	// Log lines would corrupt the TUI.
	logger := setupLogger(debug, io.Discard)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return browse.Run(ctx, buildAggregator(cfg, logger))
}
