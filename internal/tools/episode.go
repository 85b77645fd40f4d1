package tools

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/recall-sh/recall/internal/db"
	"github.com/recall-sh/recall/internal/retrieval"
)

// GetEpisodeInput defines the input schema for the get_episode tool.
type GetEpisodeInput struct {
	ID string `json:"id" jsonschema:"required,The episode ID (ep_...)"`
}

// NewGetEpisodeHandler creates the get_episode tool handler.
func NewGetEpisodeHandler(deps *Dependencies) mcp.ToolHandlerFor[GetEpisodeInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetEpisodeInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.ID == "" {
			return ErrorResult("ID cannot be empty", "Provide an episode ID"), nil, nil
		}

		episode, err := deps.DB.GetEpisode(ctx, input.ID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return ErrorResult("Episode not found", "Check the ID or use search_episodes"), nil, nil
			}
			deps.Logger.Error("get episode failed", "id", input.ID, "error", err)
			return ErrorResult("Failed to load episode", "Database may be unavailable"), nil, nil
		}

		return TextResult(retrieval.FormatMemory(episode, retrieval.ModeVerbose)), nil, nil
	}
}
