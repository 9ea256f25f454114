package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"buzzmill/internal/factory"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show production performance statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		ctx := context.Background()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		producer, err := factory.New(cfg.FactoryClientConfig(), store, logger)
		if err != nil {
			return err
		}

		stats, err := producer.PerformanceStats(ctx, days)
		if err != nil {
			return err
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("\n%s\n\n", cyan(fmt.Sprintf("=== Production stats (last %d days) ===", days)))
		printMap(stats, "  ")
		fmt.Println()
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("days", 7, "stats window in days")
	rootCmd.AddCommand(statsCmd)
}
