package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobscout-za/jobscout/internal/aggregator"
)

var (
	searchRegion string
	searchTown   string
	searchJSON   bool
	searchReport bool
)

var searchCmd = &cobra.Command{
	Use:   "search [keywords...]",
	Short: "Search all boards once",
	Long:  "Runs one aggregated search across every enabled board and prints the merged listings.",
	Example: `  jobscout search developer --region gauteng --town sandton
  jobscout search "data analyst" --region western_cape --json`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchRegion, "region", "r", "", "region to search (see `jobscout regions`)")
	searchCmd.Flags().StringVarP(&searchTown, "town", "t", "", "town within the region")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print the result as JSON")
	searchCmd.Flags().BoolVar(&searchReport, "report", false, "include the per-source report in JSON output")
	_ = searchCmd.MarkFlagRequired("region")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug, os.Stderr)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	keywords := strings.Join(args, " ")
	res, err := buildAggregator(cfg, logger).SearchWithReport(ctx, keywords, searchRegion, searchTown)
	if err != nil {
		return err
	}

	if searchJSON {
		out := res
		if !searchReport {
			out.Sources = nil
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	printListings(res)
	fmt.Println()
	printReport(res.Sources)
	return nil
}

func printListings(res aggregator.Result) {
	if len(res.Listings) == 0 {
		fmt.Printf("No listings found for %s.\n", res.Location)
		return
	}

	fmt.Printf("%-40s %-25s %-20s %-11s %s\n", "Title", "Company", "Location", "Source", "Salary")
	fmt.Println(strings.Repeat("─", 110))
	for _, l := range res.Listings {
		fmt.Printf("%-40s %-25s %-20s %-11s %s\n",
			truncate(l.Title, 40), truncate(l.Company, 25), truncate(l.Location, 20), l.Source, l.Salary)
	}
	fmt.Printf("\nTotal: %d listings for %s\n", len(res.Listings), res.Location)
}

func printReport(reports []aggregator.SourceReport) {
	fmt.Printf("%-12s %-9s %-8s %-9s %s\n", "Source", "Listings", "Skipped", "Time", "Status")
	fmt.Println(strings.Repeat("─", 60))
	for _, r := range reports {
		status := "ok"
		if !r.OK() {
			status = r.Error
		}
		fmt.Printf("%-12s %-9d %-8d %-9s %s\n", r.Source, r.Listings, r.Skipped, fmt.Sprintf("%dms", r.DurationMS), status)
	}
}

// truncate shortens s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
