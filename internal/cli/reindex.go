package cli

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var reindexLimit int

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Backfill embeddings for episodes missing one",
	Long: `Generate embeddings for episodes stored while the embedding provider
was unreachable. Shows a progress bar on a terminal; prints plain
progress otherwise.`,
	Args: cobra.NoArgs,
	RunE: runReindex,
}

func init() {
	reindexCmd.Flags().IntVarP(&reindexLimit, "limit", "n", 500, "max episodes per run")
}

func runReindex(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recorder := newRecorder(ctx)

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		embedded, err := recorder.Backfill(ctx, reindexLimit, func(done, total int) {
			fmt.Printf("embedded %d/%d\n", done, total)
		})
		if err != nil {
			return fmt.Errorf("reindex: %w", err)
		}
		fmt.Printf("Episodes embedded: %d\n", embedded)
		return nil
	}

	updates := make(chan tea.Msg, 8)
	go func() {
		embedded, err := recorder.Backfill(ctx, reindexLimit, func(done, total int) {
			updates <- progressMsg{done: done, total: total}
		})
		updates <- backfillDoneMsg{embedded: embedded, err: err}
	}()

	return RunReindexProgress(updates, cancel)
}
