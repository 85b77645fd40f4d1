package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/recall-sh/recall/internal/models"
)

// SearchInput defines the input schema for the search_episodes tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"required,The search query text"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results 1-100, default 10"`
}

// searchOutput is the JSON body returned to the caller.
type searchOutput struct {
	Episodes []models.Episode `json:"episodes"`
	Count    int              `json:"count"`
}

// NewSearchHandler creates the search_episodes tool handler.
// Lexical search over summaries, problems, and keywords.
func NewSearchHandler(deps *Dependencies) mcp.ToolHandlerFor[SearchInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.Query == "" {
			return ErrorResult("Query cannot be empty", "Provide a search query"), nil, nil
		}

		limit := input.Limit
		if limit <= 0 {
			limit = 10
		}
		if limit > 100 {
			return ErrorResult("Limit must be 1-100", "Reduce limit value"), nil, nil
		}

		episodes, err := deps.DB.SearchEpisodes(ctx, strings.Fields(input.Query), limit)
		if err != nil {
			deps.Logger.Error("search failed", "error", err)
			return ErrorResult("Search failed", "Database may be unavailable"), nil, nil
		}

		jsonBytes, _ := json.MarshalIndent(searchOutput{
			Episodes: episodes,
			Count:    len(episodes),
		}, "", "  ")

		deps.Logger.Info("search completed",
			"query", models.Truncate(input.Query, 30), "results", len(episodes))
		return TextResult(string(jsonBytes)), nil, nil
	}
}
