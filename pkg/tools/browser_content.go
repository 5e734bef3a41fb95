package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/grok-agent-mcp/core"
	"github.com/theapemachine/grok-agent-mcp/pkg/upstream"
)

const BrowserContentName = "process_browser_content"

// BrowserContentTool summarizes, extracts from, or analyzes a web page.
type BrowserContentTool struct {
	BaseTool
	backend Backend
}

func NewBrowserContentTool(backend Backend) core.Tool {
	return &BrowserContentTool{
		BaseTool: NewBaseTool(mcp.NewTool(
			BrowserContentName,
			mcp.WithDescription("Process browser content through agent for analysis or summarization"),
			mcp.WithString("url", mcp.Required(), mcp.Description("URL to process")),
			mcp.WithString("content", mcp.Description("Optional page content (will scrape if not provided)")),
			mcp.WithString("action",
				mcp.Required(),
				mcp.Enum(upstream.Actions...),
				mcp.Description("Action to perform on the content"),
			),
		)),
		backend: backend,
	}
}

func (tool *BrowserContentTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := requiredString(request, "url")
	if err != nil {
		return nil, err
	}

	content, err := optionalString(request, "content")
	if err != nil {
		return nil, err
	}

	action, err := requiredString(request, "action")
	if err != nil {
		return nil, err
	}

	reply, err := tool.backend.ProcessPage(ctx, upstream.PageRequest{
		URL:     url,
		Content: content,
		Action:  action,
	})
	if err != nil {
		return nil, fmt.Errorf("Failed to process browser content: %w", err)
	}

	return mcp.NewToolResultText(reply.Result), nil
}
