// Package tools provides MCP tool handlers and registration.
package tools

import (
	"log/slog"

	"github.com/recall-sh/recall/internal/capture"
	"github.com/recall-sh/recall/internal/db"
	"github.com/recall-sh/recall/internal/metrics"
	"github.com/recall-sh/recall/internal/retrieval"
)

// Dependencies holds shared services for tool handlers.
// Passed to handler factories via closure capture.
type Dependencies struct {
	DB        *db.Client
	Recorder  *capture.Recorder
	Retriever *retrieval.Orchestrator
	Metrics   *metrics.Collector
	Logger    *slog.Logger
}
