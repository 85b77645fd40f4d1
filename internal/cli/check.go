package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/recall-sh/recall/internal/models"
	"github.com/recall-sh/recall/internal/project"
	"github.com/recall-sh/recall/internal/retrieval"
	"github.com/recall-sh/recall/internal/session"
)

var (
	checkSession  string
	checkExitCode int
	checkCwd      string
	checkBranch   string
	checkStderr   string
	checkJSON     bool
)

var checkCmd = &cobra.Command{
	Use:   "check <command...>",
	Short: "Check for memories relevant to the current command",
	Long: `Check whether stored memories apply to the command that just ran.
Prints nothing unless a trigger fires (error exit, repeated command,
project entry, branch change) and a confident match exists.

Normally invoked by the shell hook after each command:
  recall check --session "$$" --exit 1 --stderr "$err" -- npm run build`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkSession, "session", "s", "", "shell session identifier")
	checkCmd.Flags().IntVarP(&checkExitCode, "exit", "e", 0, "command exit code")
	checkCmd.Flags().StringVar(&checkCwd, "cwd", "", "working directory (default: current)")
	checkCmd.Flags().StringVar(&checkBranch, "branch", "", "active git branch")
	checkCmd.Flags().StringVar(&checkStderr, "stderr", "", "stderr excerpt")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "emit the full result as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cwd := checkCwd
	if cwd == "" {
		cwd, _ = os.Getwd()
	}

	exitCode := checkExitCode
	event := models.RawEvent{
		SessionID:     checkSession,
		Timestamp:     time.Now().UTC(),
		CWD:           cwd,
		GitBranch:     checkBranch,
		Command:       strings.Join(args, " "),
		ExitCode:      &exitCode,
		StderrExcerpt: checkStderr,
		ProjectHash:   project.Hash(cwd),
	}

	rctx, err := sessionContext(ctx, event)
	if err != nil {
		return err
	}

	result, err := newRetriever(ctx).Retrieve(ctx, rctx)
	if err != nil {
		return fmt.Errorf("retrieve: %w", err)
	}

	if checkJSON {
		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(jsonBytes))
		return nil
	}

	if !result.Triggered || result.TopMemory == nil {
		if verbose && result.Message != "" {
			fmt.Println(result.Message)
		}
		return nil
	}

	fmt.Printf("recall [%s]: %s\n", result.Reason, result.Formatted)
	if result.Suggestion != "" && result.Suggestion != result.TopMemory.Episode.Fix {
		fmt.Printf("  next: %s\n", result.Suggestion)
	}
	if verbose {
		for _, m := range result.Memories[1:] {
			fmt.Printf("  also: %s\n", retrieval.FormatMemory(m.Episode, retrieval.ModeCompact))
		}
	}
	return nil
}

// sessionContext rebuilds the shell session's state from its stored
// events and derives the retrieval context for the current one. Without
// a session ID, repeat/entry/branch signals stay false.
func sessionContext(ctx context.Context, event models.RawEvent) (models.Context, error) {
	tracker := session.NewTracker(cfg.RepeatWindow)
	if event.SessionID == "" {
		return tracker.ContextFor(event), nil
	}

	since := event.Timestamp.Add(-2 * cfg.RepeatWindow)
	history, err := dbClient.RecentEvents(ctx, event.SessionID, since, cfg.CandidateLimit)
	if err != nil {
		return models.Context{}, fmt.Errorf("load session history: %w", err)
	}
	for _, past := range history {
		tracker.Observe(past)
	}
	return tracker.ContextFor(event), nil
}
