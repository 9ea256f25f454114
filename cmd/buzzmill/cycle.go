package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Run one pipeline cycle now",
	Long: `Execute a single short cycle (harvest, generate posts and replies,
request production) and exit. With --long, run the curation cycle instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		long, _ := cmd.Flags().GetBool("long")

		ctx := context.Background()
		p, err := buildPipeline(ctx)
		if err != nil {
			return err
		}
		defer p.Close()

		if long {
			return p.sched.RunLongCycle(ctx)
		}

		summary := p.sched.RunShortCycle(ctx)

		green := color.New(color.FgGreen).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		fmt.Printf("\n  Created: %s   Skipped: %d   Candidates: %d   %s\n\n",
			green(fmt.Sprintf("%d", summary.Created)), summary.Skipped, summary.Total,
			gray("run "+summary.RunID))
		return nil
	},
}

func init() {
	cycleCmd.Flags().Bool("long", false, "run the curation cycle instead of the short cycle")
	rootCmd.AddCommand(cycleCmd)
}
