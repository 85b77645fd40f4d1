package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recall-sh/recall/internal/metrics"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store counts and operation timings",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	events, episodes, err := dbClient.Counts(ctx)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	fmt.Printf("Events:   %d\n", events)
	fmt.Printf("Episodes: %d\n", episodes)

	snap := collector.Snapshot()
	ops := []struct {
		name string
		op   *metrics.OperationSnapshot
	}{
		{"db queries", snap.DBQuery},
		{"db searches", snap.DBSearch},
		{"embeddings", snap.Embedding},
		{"retrievals", snap.Retrieval},
		{"synthesis", snap.Synthesis},
	}

	header := false
	for _, entry := range ops {
		if entry.op == nil {
			continue
		}
		if !header {
			fmt.Println("\nThis invocation:")
			header = true
		}
		fmt.Printf("  %-12s %4d calls  avg %.1fms  max %dms\n",
			entry.name, entry.op.Count, entry.op.AvgTimeMs, entry.op.MaxTimeMs)
	}
	return nil
}
