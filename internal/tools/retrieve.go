package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/recall-sh/recall/internal/models"
	"github.com/recall-sh/recall/internal/project"
)

// RetrieveInput defines the input schema for the retrieve tool.
type RetrieveInput struct {
	Command        string `json:"command" jsonschema:"required,The current command"`
	ExitCode       *int   `json:"exit_code,omitempty" jsonschema:"The current command's exit code"`
	Cwd            string `json:"cwd,omitempty" jsonschema:"Current working directory"`
	GitBranch      string `json:"git_branch,omitempty" jsonschema:"Active git branch, if any"`
	ErrorExcerpt   string `json:"error_excerpt,omitempty" jsonschema:"Stderr excerpt from the failing command"`
	IsRepeated     bool   `json:"is_repeated,omitempty" jsonschema:"The command was recently run in this session"`
	IsProjectEntry bool   `json:"is_project_entry,omitempty" jsonschema:"The session just entered this project"`
	BranchChanged  bool   `json:"branch_changed,omitempty" jsonschema:"The git branch just changed"`
}

// NewRetrieveHandler creates the retrieve tool handler.
// Runs the trigger, search, score, select pipeline for one context.
func NewRetrieveHandler(deps *Dependencies) mcp.ToolHandlerFor[RetrieveInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RetrieveInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.Command == "" {
			return ErrorResult("Command cannot be empty", "Provide the current command"), nil, nil
		}

		rctx := models.Context{
			Command:        input.Command,
			CWD:            input.Cwd,
			GitBranch:      input.GitBranch,
			ExitCode:       input.ExitCode,
			ErrorExcerpt:   input.ErrorExcerpt,
			ProjectHash:    project.Hash(input.Cwd),
			IsRepeated:     input.IsRepeated,
			IsProjectEntry: input.IsProjectEntry,
			BranchChanged:  input.BranchChanged,
		}

		result, err := deps.Retriever.Retrieve(ctx, rctx)
		if err != nil {
			deps.Logger.Error("retrieval failed", "command", input.Command, "error", err)
			return ErrorResult("Retrieval failed", "Database may be unavailable"), nil, nil
		}

		jsonBytes, _ := json.MarshalIndent(result, "", "  ")

		deps.Logger.Info("retrieval completed",
			"command", models.Truncate(input.Command, 30),
			"triggered", result.Triggered,
			"memories", len(result.Memories))
		return TextResult(string(jsonBytes)), nil, nil
	}
}
