package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jobscout-za/jobscout/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent watcher runs",
	Long:  "Prints the most recent saved-search runs recorded by `jobscout watch`.",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	s, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.RecentRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("%-20s %-20s %-16s %-9s %-5s %s\n", "Ran at", "Search", "Location", "Listings", "New", "Failures")
	fmt.Println(strings.Repeat("─", 85))
	for _, r := range runs {
		fmt.Printf("%-20s %-20s %-16s %-9d %-5d %d\n",
			r.RanAt.Local().Format("2006-01-02 15:04:05"), truncate(r.Search, 20), truncate(r.Location, 16), r.Listings, r.New, r.Failures)
	}
	return nil
}
