// Package middleware provides tool-handler middleware for the MCP server.
package middleware

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Logging logs every tool call with a per-call id, its duration, and whether
// the result came back error-flagged. The call logger is placed on the
// context for handlers that want it.
func Logging(logger *log.Logger) server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			callLog := logger.With("tool", request.Params.Name, "call_id", uuid.NewString())
			ctx = log.WithContext(ctx, callLog)
			start := time.Now()

			result, err := next(ctx, request)

			elapsed := time.Since(start)
			switch {
			case err != nil:
				callLog.Error("Tool call failed", "duration", elapsed, "error", err)
			case result != nil && result.IsError:
				callLog.Warn("Tool call returned an error", "duration", elapsed, "message", firstText(result))
			default:
				callLog.Info("Tool call", "duration", elapsed)
			}

			return result, err
		}
	}
}

func firstText(result *mcp.CallToolResult) string {
	for _, content := range result.Content {
		if text, ok := mcp.AsTextContent(content); ok {
			return text.Text
		}
	}
	return ""
}
