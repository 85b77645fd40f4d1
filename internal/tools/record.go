package tools

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/recall-sh/recall/internal/models"
	"github.com/recall-sh/recall/internal/project"
)

// RecordEventInput defines the input schema for the record_event tool.
type RecordEventInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"Shell session identifier"`
	Command   string `json:"command" jsonschema:"required,The command that was executed"`
	ExitCode  *int   `json:"exit_code,omitempty" jsonschema:"Command exit code"`
	Cwd       string `json:"cwd,omitempty" jsonschema:"Working directory when the command ran"`
	GitBranch string `json:"git_branch,omitempty" jsonschema:"Active git branch, if any"`
	Stdout    string `json:"stdout,omitempty" jsonschema:"Stdout excerpt"`
	Stderr    string `json:"stderr,omitempty" jsonschema:"Stderr excerpt"`
}

// recordEventOutput is the JSON body returned to the caller.
type recordEventOutput struct {
	Significant bool            `json:"significant"`
	Reason      string          `json:"reason,omitempty"`
	Episode     *models.Episode `json:"episode,omitempty"`
	Embedded    bool            `json:"embedded"`
}

// NewRecordEventHandler creates the record_event tool handler.
// Runs the full capture pipeline: store, classify, synthesize, embed.
func NewRecordEventHandler(deps *Dependencies) mcp.ToolHandlerFor[RecordEventInput, any] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RecordEventInput) (
		*mcp.CallToolResult, any, error,
	) {
		if input.Command == "" {
			return ErrorResult("Command cannot be empty", "Provide the executed command"), nil, nil
		}

		event := models.RawEvent{
			SessionID:     input.SessionID,
			Command:       input.Command,
			ExitCode:      input.ExitCode,
			CWD:           input.Cwd,
			GitBranch:     input.GitBranch,
			StdoutExcerpt: input.Stdout,
			StderrExcerpt: input.Stderr,
			ProjectHash:   project.Hash(input.Cwd),
		}

		outcome, err := deps.Recorder.Record(ctx, event)
		if err != nil {
			deps.Logger.Error("record failed", "command", input.Command, "error", err)
			return ErrorResult("Failed to record event", "Database may be unavailable"), nil, nil
		}

		jsonBytes, _ := json.MarshalIndent(recordEventOutput{
			Significant: outcome.Significant,
			Reason:      outcome.Reason,
			Episode:     outcome.Episode,
			Embedded:    outcome.Embedded,
		}, "", "  ")

		deps.Logger.Info("event recorded",
			"command", models.Truncate(input.Command, 30),
			"significant", outcome.Significant)
		return TextResult(string(jsonBytes)), nil, nil
	}
}
