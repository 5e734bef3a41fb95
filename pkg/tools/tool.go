// Package tools holds the relay's MCP tools and the registry that dispatches
// calls to them.
package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/grok-agent-mcp/pkg/upstream"
)

// Backend performs the work behind each tool. The local relay backs it with
// the upstream HTTP client, the remote service with its in-process handlers.
type Backend interface {
	QueryAgent(ctx context.Context, prompt, contextText string) (string, error)
	ReviewDiff(ctx context.Context, diff string) (*upstream.ReviewReply, error)
	ProcessPage(ctx context.Context, request upstream.PageRequest) (*upstream.PageReply, error)
}

// DiffSource supplies the working tree diff when a caller omits one.
type DiffSource interface {
	Diff(ctx context.Context) (string, error)
}

// BaseTool provides common functionality for all tools
type BaseTool struct {
	handle mcp.Tool
}

func NewBaseTool(handle mcp.Tool) BaseTool {
	return BaseTool{handle: handle}
}

// Handle returns the MCP Tool definition
func (b BaseTool) Handle() mcp.Tool {
	return b.handle
}

// Name returns the name of the tool
func (b BaseTool) Name() string {
	return b.handle.Name
}

// Descriptor renders the tool the way tools/list does, for printing.
func Descriptor(tools []mcp.Tool) ([]byte, error) {
	return json.MarshalIndent(map[string]any{"tools": tools}, "", "  ")
}
