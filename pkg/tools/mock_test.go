package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/mock"
	"github.com/theapemachine/grok-agent-mcp/pkg/upstream"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) QueryAgent(ctx context.Context, prompt, contextText string) (string, error) {
	args := m.Called(ctx, prompt, contextText)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) ReviewDiff(ctx context.Context, diff string) (*upstream.ReviewReply, error) {
	args := m.Called(ctx, diff)
	reply, _ := args.Get(0).(*upstream.ReviewReply)
	return reply, args.Error(1)
}

func (m *MockBackend) ProcessPage(ctx context.Context, request upstream.PageRequest) (*upstream.PageReply, error) {
	args := m.Called(ctx, request)
	reply, _ := args.Get(0).(*upstream.PageReply)
	return reply, args.Error(1)
}

type MockDiffSource struct {
	mock.Mock
}

func (m *MockDiffSource) Diff(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func resultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	text, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		return ""
	}

	return text.Text
}
