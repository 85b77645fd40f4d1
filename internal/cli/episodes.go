package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recall-sh/recall/internal/project"
	"github.com/recall-sh/recall/internal/retrieval"
)

var (
	episodesLimit      int
	episodesAll        bool
	episodesProjectDir string
)

var episodesCmd = &cobra.Command{
	Use:   "episodes [id]",
	Short: "List recent episodes, or show one in full",
	Long: `List the most recent episodes for the current project, or show one
episode in full when an ID is given.

Examples:
  recall episodes
  recall episodes --all -n 20
  recall episodes ep_2026-01-15T14-30-45Z_1a2b3c4d`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEpisodes,
}

func init() {
	episodesCmd.Flags().IntVarP(&episodesLimit, "limit", "n", 10, "max results")
	episodesCmd.Flags().BoolVar(&episodesAll, "all", false, "list across all projects")
	episodesCmd.Flags().StringVar(&episodesProjectDir, "project", "", "list for this project directory (default: current)")
}

func runEpisodes(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if len(args) == 1 {
		episode, err := dbClient.GetEpisode(ctx, args[0])
		if err != nil {
			return fmt.Errorf("get episode: %w", err)
		}
		fmt.Println(retrieval.FormatMemory(episode, retrieval.ModeVerbose))
		return nil
	}

	var projectHash string
	if !episodesAll {
		dir := episodesProjectDir
		if dir == "" {
			dir, _ = os.Getwd()
		}
		projectHash = project.Hash(dir)
	}

	episodes, err := dbClient.RecentEpisodes(ctx, projectHash, episodesLimit)
	if err != nil {
		return fmt.Errorf("list episodes: %w", err)
	}

	if len(episodes) == 0 {
		fmt.Println("No episodes recorded yet.")
		return nil
	}

	for _, episode := range episodes {
		marker := " "
		if episode.EmbeddingID == nil {
			marker = "*" // pending embedding
		}
		fmt.Printf("%s %s  %s\n", marker, episode.CreatedAt.Format("2006-01-02 15:04"),
			retrieval.FormatMemory(episode, retrieval.ModeCompact))
		if verbose {
			fmt.Printf("    id: %s\n", episode.ID)
		}
	}
	return nil
}
