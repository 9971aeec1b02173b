package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List all configured job boards",
	Long:  "Reads the config and prints a table of all configured job boards.",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	fmt.Printf("%-12s %-10s %-9s %-10s %s\n", "Source", "Status", "Timeout", "Max items", "Base URL")
	fmt.Println(strings.Repeat("─", 70))

	enabled, disabled := 0, 0
	for _, s := range cfg.Sources {
		status := "enabled"
		if !s.Enabled {
			status = "disabled"
			disabled++
		} else {
			enabled++
		}
		base := s.BaseURL
		if base == "" {
			base = "(default)"
		}
		fmt.Printf("%-12s %-10s %-9s %-10d %s\n", s.Name, status, s.Timeout, s.MaxItems, base)
	}

	fmt.Printf("\nTotal: %d sources (%d enabled, %d disabled), result cap %d\n", len(cfg.Sources), enabled, disabled, cfg.ResultCap)
	return nil
}
