package resources

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/theapemachine/grok-agent-mcp/core"
)

// Registry holds the fixed resource table.
type Registry struct {
	order []string
	byURI map[string]core.Resource
}

func NewRegistry(resources ...core.Resource) *Registry {
	registry := &Registry{byURI: make(map[string]core.Resource)}

	for _, resource := range resources {
		uri := resource.Handle().URI
		if _, ok := registry.byURI[uri]; !ok {
			registry.order = append(registry.order, uri)
		}
		registry.byURI[uri] = resource
	}

	return registry
}

// NewDefaultRegistry exposes project://history and project://context.
func NewDefaultRegistry(source Source) *Registry {
	return NewRegistry(NewHistoryResource(source), NewContextResource(source))
}

func (registry *Registry) ListResources() []mcp.Resource {
	out := make([]mcp.Resource, 0, len(registry.order))
	for _, uri := range registry.order {
		out = append(out, registry.byURI[uri].Handle())
	}
	return out
}

// ReadResource fails with core.ErrUnknownResource, without touching the
// source, for any uri outside the table.
func (registry *Registry) ReadResource(ctx context.Context, uri string) ([]mcp.ResourceContents, error) {
	resource, ok := registry.byURI[uri]
	if !ok {
		return nil, fmt.Errorf("Failed to read resource %s: %w: %s", uri, core.ErrUnknownResource, uri)
	}

	request := mcp.ReadResourceRequest{}
	request.Params.URI = uri

	contents, err := resource.Handler(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("Failed to read resource %s: %w", uri, err)
	}

	return contents, nil
}

// Attach registers every resource on srv, routed through ReadResource.
func (registry *Registry) Attach(srv *server.MCPServer) {
	for _, resource := range registry.ListResources() {
		srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			return registry.ReadResource(ctx, request.Params.URI)
		})
	}
}
