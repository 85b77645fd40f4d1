// Package main provides the entry point for the recall MCP server.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/recall-sh/recall/internal/capture"
	"github.com/recall-sh/recall/internal/config"
	"github.com/recall-sh/recall/internal/db"
	"github.com/recall-sh/recall/internal/embedding"
	"github.com/recall-sh/recall/internal/metrics"
	"github.com/recall-sh/recall/internal/retrieval"
	"github.com/recall-sh/recall/internal/scoring"
	"github.com/recall-sh/recall/internal/server"
	"github.com/recall-sh/recall/internal/significance"
	"github.com/recall-sh/recall/internal/synthesis"
	"github.com/recall-sh/recall/internal/tools"
	"github.com/recall-sh/recall/internal/trigger"
)

const version = "0.1.0"

func main() {
	// Load configuration
	cfg, err := config.Load()

	// Setup logger (dual output: stderr text + file JSON)
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	if err != nil && errors.Is(err, config.ErrInvalidConfig) {
		logger.Warn("config overlay ignored, using defaults", "error", err)
	} else if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Log startup info
	logger.Info("recall starting",
		"version", version,
		"surrealdb_url", cfg.SurrealDBURL,
		"embed_provider", cfg.EmbedProvider,
		"embed_model", cfg.EmbedModel,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	collector := metrics.NewCollector()

	// Connect to database
	dbClient, err := db.NewClient(ctx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, logger, collector)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		logger.Info("closing database connection")
		_ = dbClient.Close(ctx)
	}()

	// Initialize database schema
	if err := dbClient.InitSchema(ctx); err != nil {
		logger.Error("failed to initialize database schema", "error", err)
		os.Exit(1)
	}

	// Create embedder. A missing provider is not fatal; retrieval falls
	// back to lexical search and episodes queue for backfill.
	embedder, err := embedding.New(ctx, embedding.Config{
		Provider:          embedding.ProviderType(cfg.EmbedProvider),
		Model:             cfg.EmbedModel,
		ExpectedDimension: cfg.EmbedDimension,
		OpenAIAPIKey:      cfg.OpenAIAPIKey,
		OllamaHost:        cfg.OllamaHost,
	})
	if err != nil {
		logger.Warn("embedding provider unavailable, lexical search only", "error", err)
		embedder = nil
	} else {
		logger.Info("embedder initialized", "model", embedder.Model())
	}

	// Assemble the pipeline
	classifier := significance.New(cfg.ErrorPatterns, cfg.IgnoreCommands, cfg.ImportantCommands)
	synthesizer := synthesis.New(classifier, cfg.SequenceWindow, cfg.MinSequenceLength)
	recorder := capture.New(classifier, synthesizer, dbClient, embedder,
		cfg.EmbedTimeout, cfg.SequenceWindow, logger, collector)

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
	retriever := retrieval.New(triggers, scorer, dbClient, embedder, retrieval.Options{
		MaxResults:     cfg.MaxResults,
		CandidateLimit: cfg.CandidateLimit,
		EmbedTimeout:   cfg.EmbedTimeout,
	}, logger, collector)

	// Create and setup server
	srv := server.New(version, logger)
	srv.Setup()

	// Register tools
	deps := &tools.Dependencies{
		DB:        dbClient,
		Recorder:  recorder,
		Retriever: retriever,
		Metrics:   collector,
		Logger:    logger,
	}
	tools.RegisterAll(srv.MCPServer(), deps)

	// Log ready state
	logger.Info("server ready, awaiting connections")

	// Run server (blocks until disconnect or context cancelled)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
