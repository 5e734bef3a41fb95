package api

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/mock"
	"github.com/theapemachine/grok-agent-mcp/pkg/agent"
	"github.com/theapemachine/grok-agent-mcp/pkg/upstream"
)

type MockAgent struct {
	mock.Mock
}

func (m *MockAgent) Complete(ctx context.Context, prompt agent.Prompt) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type MockScraper struct {
	mock.Mock
}

func (m *MockScraper) Scrape(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) History(ctx context.Context, limit int) (*upstream.ProjectHistory, error) {
	args := m.Called(ctx, limit)
	history, _ := args.Get(0).(*upstream.ProjectHistory)
	return history, args.Error(1)
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}
