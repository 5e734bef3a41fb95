package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/theapemachine/grok-agent-mcp/core"
)

// Registry is the fixed tool table. Calls are routed by exact name and every
// failure comes back as an error-flagged result.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]core.Tool
}

func NewRegistry(tools ...core.Tool) *Registry {
	registry := &Registry{byName: make(map[string]core.Tool)}
	registry.Register(tools...)
	return registry
}

// Register adds tools in order. A tool registered twice keeps its first
// position and takes the latest definition.
func (registry *Registry) Register(tools ...core.Tool) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	for _, tool := range tools {
		name := tool.Handle().Name
		if _, ok := registry.byName[name]; !ok {
			registry.order = append(registry.order, name)
		}
		registry.byName[name] = tool
	}
}

// ListTools returns the descriptors in registration order.
func (registry *Registry) ListTools() []mcp.Tool {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	out := make([]mcp.Tool, 0, len(registry.order))
	for _, name := range registry.order {
		out = append(out, registry.byName[name].Handle())
	}
	return out
}

// CallTool validates args, invokes the named tool, and never returns a nil
// result.
func (registry *Registry) CallTool(ctx context.Context, name string, args map[string]any) *mcp.CallToolResult {
	registry.mu.RLock()
	tool, ok := registry.byName[name]
	registry.mu.RUnlock()

	if !ok {
		return errorResult(fmt.Errorf("%w: %s", core.ErrUnknownTool, name))
	}

	if err := Validate(tool.Handle(), args); err != nil {
		return errorResult(err)
	}

	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args

	result, err := tool.Handler(ctx, request)
	if err != nil {
		return errorResult(err)
	}
	if result == nil {
		return mcp.NewToolResultText("")
	}

	return result
}

// Attach registers every tool on srv, routed through CallTool.
func (registry *Registry) Attach(srv *server.MCPServer) {
	for _, tool := range registry.ListTools() {
		srv.AddTool(tool, registry.handle)
	}
}

func (registry *Registry) handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return registry.CallTool(ctx, request.Params.Name, request.GetArguments()), nil
}

func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError("Error: " + err.Error())
}

// Has reports whether a tool is registered under name.
func (registry *Registry) Has(name string) bool {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	_, ok := registry.byName[name]
	return ok
}
