package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	consolidateSince time.Duration
	consolidateLimit int
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Fold recent events into multi-step workflow episodes",
	Long: `Scan recorded events and fold consecutive same-project runs into
multi-step workflow episodes. Suitable for a cron job or a shell
logout hook.

Examples:
  recall consolidate
  recall consolidate --since 72h`,
	Args: cobra.NoArgs,
	RunE: runConsolidate,
}

func init() {
	consolidateCmd.Flags().DurationVar(&consolidateSince, "since", 24*time.Hour, "how far back to scan")
	consolidateCmd.Flags().IntVarP(&consolidateLimit, "limit", "n", 1000, "max events to scan")
}

func runConsolidate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	outcome, err := newRecorder(ctx).Consolidate(ctx, time.Now().Add(-consolidateSince), consolidateLimit)
	if err != nil {
		return fmt.Errorf("consolidate: %w", err)
	}

	fmt.Printf("Scanned %d events, created %d workflow episodes.\n",
		outcome.EventsScanned, outcome.Episodes)
	return nil
}
