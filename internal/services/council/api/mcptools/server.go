package mcptools

import "github.com/modelcontextprotocol/go-sdk/mcp"

const (
	// ServerName identifies the council MCP server to clients.
	ServerName = "arcane-codex-council"
	// ServerVersion is reported during the MCP handshake.
	ServerVersion = "0.1.0"
)

// NewServer registers every council tool on a fresh MCP server.
func NewServer(svc CouncilService, pending *Pending) *mcp.Server {
	if pending == nil {
		pending = NewPending(DefaultPendingLimit)
	}
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: ServerVersion}, nil)

	mcp.AddTool(server, CouncilConveneTool(), CouncilConveneHandler(svc, pending))
	mcp.AddTool(server, CouncilApplyTool(), CouncilApplyHandler(svc, pending))
	mcp.AddTool(server, CouncilVotersTool(), CouncilVotersHandler())
	mcp.AddTool(server, FavorGetTool(), FavorGetHandler(svc))
	mcp.AddTool(server, FavorHistoryTool(), FavorHistoryHandler(svc))
	mcp.AddTool(server, EffectsListTool(), EffectsListHandler(svc))
	mcp.AddTool(server, AdvanceTurnTool(), AdvanceTurnHandler(svc))
	return server
}
