// Package resources exposes the read-only project resources.
package resources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/theapemachine/grok-agent-mcp/core"
)

const (
	HistoryURI = "project://history"
	ContextURI = "project://context"
	MIMEType   = "application/json"
)

// Source fetches the raw JSON behind each resource.
type Source interface {
	ProjectHistory(ctx context.Context) (json.RawMessage, error)
	ProjectContext(ctx context.Context) (json.RawMessage, error)
}

// ProjectResource is one URI-addressed JSON document read through fetch.
type ProjectResource struct {
	handle mcp.Resource
	fetch  func(context.Context) (json.RawMessage, error)
}

func NewHistoryResource(source Source) core.Resource {
	return &ProjectResource{
		handle: mcp.NewResource(
			HistoryURI,
			"Project History",
			mcp.WithResourceDescription("Recent project changes and history"),
			mcp.WithMIMEType(MIMEType),
		),
		fetch: source.ProjectHistory,
	}
}

func NewContextResource(source Source) core.Resource {
	return &ProjectResource{
		handle: mcp.NewResource(
			ContextURI,
			"Project Context",
			mcp.WithResourceDescription("Project-specific context and preferences"),
			mcp.WithMIMEType(MIMEType),
		),
		fetch: source.ProjectContext,
	}
}

func (resource *ProjectResource) Handle() mcp.Resource {
	return resource.handle
}

func (resource *ProjectResource) Handler(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	raw, err := resource.fetch(ctx)
	if err != nil {
		return nil, err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSchemaMismatch, err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: MIMEType,
			Text:     pretty.String(),
		},
	}, nil
}
