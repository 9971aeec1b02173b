package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jobscout-za/jobscout/internal/region"
)

var regionsCmd = &cobra.Command{
	Use:   "regions [region]",
	Short: "List regions and their towns",
	Long:  "Without arguments prints every region with its towns; with a region prints that region's towns.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRegions,
}

func init() {
	rootCmd.AddCommand(regionsCmd)
}

func runRegions(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		towns, err := region.ListTowns(args[0])
		if err != nil {
			return err
		}
		for _, t := range towns {
			fmt.Println(t)
		}
		return nil
	}

	fmt.Printf("%-15s %-15s %s\n", "Region", "Name", "Towns")
	fmt.Println(strings.Repeat("─", 80))
	for _, r := range region.Regions() {
		fmt.Printf("%-15s %-15s %s\n", r.ID, r.Name, strings.Join(r.Towns, ", "))
	}
	return nil
}
