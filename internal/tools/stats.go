package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/recall-sh/recall/internal/metrics"
)

// StatsInput defines the input schema for the stats tool. No fields.
type StatsInput struct{}

// statsOutput is the JSON body returned to the caller.
type statsOutput struct {
	Events   int              `json:"events"`
	Episodes int              `json:"episodes"`
	Runtime  metrics.Snapshot `json:"runtime"`
}

// NewStatsHandler creates the stats tool handler. Reports store counts
// and in-process operation timings.
func NewStatsHandler(deps *Dependencies) mcp.ToolHandlerFor[StatsInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatsInput) (
		*mcp.CallToolResult, any, error,
	) {
		events, episodes, err := deps.DB.Counts(ctx)
		if err != nil {
			deps.Logger.Error("stats failed", "error", err)
			return ErrorResult("Failed to load stats", "Database may be unavailable"), nil, nil
		}

		out := statsOutput{Events: events, Episodes: episodes}
		if deps.Metrics != nil {
			out.Runtime = deps.Metrics.Snapshot()
		}

		jsonBytes, _ := json.MarshalIndent(out, "", "  ")
		return TextResult(string(jsonBytes)), nil, nil
	}
}
