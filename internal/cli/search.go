package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recall-sh/recall/internal/retrieval"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search stored episodes",
	Long: `Search episodes by summary, problem text, and keywords.

Examples:
  recall search "EACCES"
  recall search "docker build" -n 5`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "max results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	episodes, err := dbClient.SearchEpisodes(ctx, strings.Fields(args[0]), searchLimit)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if len(episodes) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results:\n\n", len(episodes))
	for i, episode := range episodes {
		fmt.Printf("%d. %s\n", i+1, retrieval.FormatMemory(episode, retrieval.ModeCompact))
		if verbose {
			fmt.Printf("   id: %s  created: %s\n", episode.ID, episode.CreatedAt.Format("2006-01-02 15:04"))
		}
	}
	return nil
}
