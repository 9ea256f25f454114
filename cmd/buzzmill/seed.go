package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"buzzmill/internal/persona"
)

var seedPersonasCmd = &cobra.Command{
	Use:   "seed-personas",
	Short: "Load the starter persona pool into the store",
	Long: `Insert the built-in personas, updating any that already exist by ID.
Reply generation needs at least 2 personas; a fresh database has none.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		pool := persona.DefaultPool()
		if err := store.SeedPersonas(ctx, pool); err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s seeded %d personas\n", green("✓"), len(pool))
		for _, p := range pool {
			fmt.Printf("  %-14s %s (%s)\n", p.ID, p.Name, p.Job)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedPersonasCmd)
}
