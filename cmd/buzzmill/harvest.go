package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Collect topics without generating anything",
	Long: `Run one harvesting pass and print the candidate topics that survive
the per-source quotas, content filters, and exact-duplicate check. Nothing is
written; useful for checking source health and registry changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		maxTopics, _ := cmd.Flags().GetInt("max")

		ctx := context.Background()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		harvester, err := newHarvester(store)
		if err != nil {
			return err
		}

		result := harvester.FetchLatestTopics(ctx, maxTopics)

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan("=== Harvest (dry run) ==="))
		if len(result.Topics) == 0 {
			fmt.Printf("  %s\n", gray("No new topics"))
		}
		for i, topic := range result.Topics {
			fmt.Printf("  %2d. [%s] %s\n", i+1, yellow(topic.Category), topic.Title)
			fmt.Printf("      %s\n", gray(topic.Link))
		}
		fmt.Printf("\n  Collected: %d   Duplicates skipped: %d   Failed sources: %d/%d\n\n",
			len(result.Topics), result.DupSkipped, result.FailedSources, result.TotalSources)
		return nil
	},
}

func init() {
	harvestCmd.Flags().Int("max", 15, "maximum topics to collect")
	rootCmd.AddCommand(harvestCmd)
}
