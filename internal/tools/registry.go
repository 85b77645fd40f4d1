package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterAll registers all tools with the MCP server.
// This is called from main after server creation but before Run().
func RegisterAll(server *mcp.Server, deps *Dependencies) {
	// Ping tool - test/placeholder
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ping",
		Description: "Test tool - responds with pong or echoes input",
	}, NewPingHandler(deps))

	// Record tool - capture pipeline entry point
	mcp.AddTool(server, &mcp.Tool{
		Name:        "record_event",
		Description: "Record a terminal event; significant events become searchable memory episodes",
	}, NewRecordEventHandler(deps))

	// Retrieve tool - trigger-gated memory lookup
	mcp.AddTool(server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Retrieve ranked memories and a suggested next step for the current terminal context",
	}, NewRetrieveHandler(deps))

	// Search tool - lexical episode search
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_episodes",
		Description: "Search stored episodes by summary, problem text, and keywords",
	}, NewSearchHandler(deps))

	// Get episode tool - retrieve by ID
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_episode",
		Description: "Retrieve an episode by its ID with full details",
	}, NewGetEpisodeHandler(deps))

	// Stats tool - store counts and operation timings
	mcp.AddTool(server, &mcp.Tool{
		Name:        "stats",
		Description: "Report stored event/episode counts and runtime operation timings",
	}, NewStatsHandler(deps))
}
