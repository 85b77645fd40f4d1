package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/recall-sh/recall/internal/models"
	"github.com/recall-sh/recall/internal/project"
)

var (
	recordSession  string
	recordExitCode int
	recordCwd      string
	recordBranch   string
	recordStdout   string
	recordStderr   string
)

var recordCmd = &cobra.Command{
	Use:   "record <command...>",
	Short: "Record one terminal event",
	Long: `Record a terminal event. Significant events (failures, error output,
important tools) are distilled into searchable memory episodes.

Normally invoked by the shell hook, not by hand:
  recall record --exit 1 --stderr "$err" -- npm run build`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringVarP(&recordSession, "session", "s", "", "shell session identifier")
	recordCmd.Flags().IntVarP(&recordExitCode, "exit", "e", 0, "command exit code")
	recordCmd.Flags().StringVar(&recordCwd, "cwd", "", "working directory (default: current)")
	recordCmd.Flags().StringVar(&recordBranch, "branch", "", "active git branch")
	recordCmd.Flags().StringVar(&recordStdout, "stdout", "", "stdout excerpt")
	recordCmd.Flags().StringVar(&recordStderr, "stderr", "", "stderr excerpt")
}

func runRecord(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cwd := recordCwd
	if cwd == "" {
		cwd, _ = os.Getwd()
	}

	exitCode := recordExitCode
	event := models.RawEvent{
		SessionID:     recordSession,
		Timestamp:     time.Now().UTC(),
		CWD:           cwd,
		GitBranch:     recordBranch,
		Command:       strings.Join(args, " "),
		ExitCode:      &exitCode,
		StdoutExcerpt: recordStdout,
		StderrExcerpt: recordStderr,
		ProjectHash:   project.Hash(cwd),
	}

	outcome, err := newRecorder(ctx).Record(ctx, event)
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}

	if !outcome.Significant {
		if verbose {
			fmt.Println("Recorded (not significant).")
		}
		return nil
	}

	fmt.Printf("Recorded episode %s (%s)\n", outcome.Episode.ID, outcome.Reason)
	if verbose {
		fmt.Printf("  %s\n", outcome.Episode.Summary)
		if !outcome.Embedded {
			fmt.Println("  (embedding pending; run 'recall reindex' to backfill)")
		}
	}
	return nil
}
