package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"buzzmill/internal/factory"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show content store and production service health",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan("=== buzzmill status ==="))

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		fmt.Printf("%s\n", yellow("Content store:"))
		posts, err := store.RecentPosts(ctx, 5)
		if err != nil {
			fmt.Printf("  %s %v\n", red("✗"), err)
		} else if len(posts) == 0 {
			fmt.Printf("  %s\n", gray("No posts yet"))
		} else {
			fmt.Printf("  Latest posts:\n")
			for _, post := range posts {
				fmt.Printf("    #%-4d [%s] %s %s\n",
					post.ID, post.Category, post.Title,
					gray(post.CreatedAt.Format("2006-01-02 15:04")))
			}
		}

		personas, err := store.ListPersonas(ctx)
		if err == nil {
			fmt.Printf("  Persona pool: %d\n", len(personas))
			if len(personas) < 2 {
				fmt.Printf("  %s reply generation disabled below 2 personas, run: buzzmill seed-personas\n", red("✗"))
			}
		}
		fmt.Println()

		fmt.Printf("%s\n", yellow("Production service:"))
		producer, err := factory.New(cfg.FactoryClientConfig(), store, logger)
		if err != nil {
			fmt.Printf("  %s %v\n", red("✗"), err)
			fmt.Println()
			return nil
		}
		health, err := producer.Status(ctx)
		if err != nil {
			fmt.Printf("  %s unreachable: %v\n", red("✗"), err)
		} else {
			fmt.Printf("  %s reachable\n", green("✓"))
			printMap(health, "  ")
		}
		fmt.Println()
		return nil
	},
}

// printMap renders a response map with stable key order.
func printMap(m map[string]any, indent string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s%s: %v\n", indent, k, m[k])
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
