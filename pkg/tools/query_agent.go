package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/grok-agent-mcp/core"
)

const QueryAgentName = "query_agent"

// QueryAgentTool forwards a prompt to the agent and returns its reply verbatim.
type QueryAgentTool struct {
	BaseTool
	backend Backend
}

func NewQueryAgentTool(backend Backend) core.Tool {
	return &QueryAgentTool{
		BaseTool: NewBaseTool(mcp.NewTool(
			QueryAgentName,
			mcp.WithDescription("Query your custom agent via the Vercel app for code suggestions, debugging, or planning"),
			mcp.WithString("prompt", mcp.Required(), mcp.Description("The query or prompt to send to the agent")),
			mcp.WithString("context", mcp.Description("Optional context or code snippet to include")),
		)),
		backend: backend,
	}
}

func (tool *QueryAgentTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := requiredString(request, "prompt")
	if err != nil {
		return nil, err
	}

	contextText, err := optionalString(request, "context")
	if err != nil {
		return nil, err
	}

	response, err := tool.backend.QueryAgent(ctx, prompt, contextText)
	if err != nil {
		return nil, fmt.Errorf("Failed to query agent: %w", err)
	}

	return mcp.NewToolResultText(response), nil
}
