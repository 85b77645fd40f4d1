// Package cli provides the command-line interface for recall.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/recall-sh/recall/internal/capture"
	"github.com/recall-sh/recall/internal/config"
	"github.com/recall-sh/recall/internal/db"
	"github.com/recall-sh/recall/internal/embedding"
	"github.com/recall-sh/recall/internal/metrics"
	"github.com/recall-sh/recall/internal/retrieval"
	"github.com/recall-sh/recall/internal/scoring"
	"github.com/recall-sh/recall/internal/significance"
	"github.com/recall-sh/recall/internal/synthesis"
	"github.com/recall-sh/recall/internal/trigger"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config, logger, and db client
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
	dbClient   *db.Client
	collector  *metrics.Collector

	// Lazy-initialized embedder; nil when the provider is unreachable.
	embedder embedding.Embedder
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Memory layer for your terminal",
	Long: `Recall records the commands you run, distills failures and workflows
into searchable episodes, and surfaces the fix you used last time the
moment you hit the same error again.

Install the shell hook with 'recall hook zsh' (or bash) to capture
events automatically.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Version, help, and hook emit static output; no DB needed.
		switch cmd.Name() {
		case "version", "help", "hook":
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil && errors.Is(err, config.ErrInvalidConfig) {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		} else if err != nil {
			return err
		}

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger, logCleanup = config.SetupLogger(cfg.LogFile, level)
		collector = metrics.NewCollector()

		ctx := context.Background()
		dbClient, err = db.NewClient(ctx, db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}, logger, collector)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		if err := dbClient.InitSchema(ctx); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if logCleanup != nil {
			_ = logCleanup()
		}
	},
}

// getEmbedder lazily creates the embedding client. Returns nil when the
// provider cannot be constructed; callers degrade to lexical behavior.
func getEmbedder(ctx context.Context) embedding.Embedder {
	if embedder != nil {
		return embedder
	}
	e, err := embedding.New(ctx, embedding.Config{
		Provider:          embedding.ProviderType(cfg.EmbedProvider),
		Model:             cfg.EmbedModel,
		ExpectedDimension: cfg.EmbedDimension,
		OpenAIAPIKey:      cfg.OpenAIAPIKey,
		OllamaHost:        cfg.OllamaHost,
	})
	if err != nil {
		logger.Warn("embedding provider unavailable", "provider", cfg.EmbedProvider, "error", err)
		return nil
	}
	embedder = e
	return embedder
}

func newClassifier() *significance.Classifier {
	return significance.New(cfg.ErrorPatterns, cfg.IgnoreCommands, cfg.ImportantCommands)
}

func newSynthesizer() *synthesis.Synthesizer {
	return synthesis.New(newClassifier(), cfg.SequenceWindow, cfg.MinSequenceLength)
}

// newRecorder builds the capture pipeline over the shared db client.
func newRecorder(ctx context.Context) *capture.Recorder {
	return capture.New(
		newClassifier(),
		newSynthesizer(),
		dbClient,
		getEmbedder(ctx),
		cfg.EmbedTimeout,
		cfg.SequenceWindow,
		logger,
		collector,
	)
}

// newRetriever builds the retrieval pipeline over the shared db client.
func newRetriever(ctx context.Context) *retrieval.Orchestrator {
	triggers := trigger.New(trigger.Flags{
		OnError:        cfg.TriggerOnError,
		OnRepeat:       cfg.TriggerOnRepeat,
		OnProjectEntry: cfg.TriggerOnProjectEntry,
		OnBranchChange: cfg.TriggerOnBranchChange,
	})
	scorer := scoring.New(scoring.Weights{
		Semantic: cfg.SemanticWeight,
		Project:  cfg.ProjectWeight,
		Command:  cfg.CommandWeight,
	}, cfg.MinConfidence)

	return retrieval.New(triggers, scorer, dbClient, getEmbedder(ctx), retrieval.Options{
		MaxResults:     cfg.MaxResults,
		CandidateLimit: cfg.CandidateLimit,
		EmbedTimeout:   cfg.EmbedTimeout,
	}, logger, collector)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(episodesCmd)
	rootCmd.AddCommand(consolidateCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(hookCmd)
}
