package core

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

type Tool interface {
	Handle() mcp.Tool
	Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Resource is a read-only, URI-addressed data source.
type Resource interface {
	Handle() mcp.Resource
	Handler(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error)
}
