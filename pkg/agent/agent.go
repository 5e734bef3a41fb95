// Package agent is the text-completion capability behind query_agent, the
// review endpoint and page processing.
package agent

import (
	"context"
	"fmt"

	"github.com/theapemachine/grok-agent-mcp/pkg/config"
)

// Prompt is one completion request. System and Context are optional.
type Prompt struct {
	System  string
	Context string
	Text    string
}

// Agent produces text for a prompt.
type Agent interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// Placeholder answers without calling a model. It is the default provider so
// the endpoint set works with no credentials.
type Placeholder struct{}

func (Placeholder) Complete(_ context.Context, prompt Prompt) (string, error) {
	out := "Processed query: " + prompt.Text
	if prompt.Context != "" {
		out += "\nContext: " + prompt.Context
	}
	return out, nil
}

// IsPlaceholder reports whether a is the canned Placeholder.
func IsPlaceholder(a Agent) bool {
	switch a.(type) {
	case Placeholder, *Placeholder:
		return true
	}
	return false
}

// New selects the agent named by cfg.Agent.Provider.
func New(cfg *config.Config) (Agent, error) {
	switch cfg.Agent.Provider {
	case "", "placeholder":
		return Placeholder{}, nil
	case "openai":
		return NewOpenAI(cfg.OpenAI.APIKey, "", cfg.Agent.Model, cfg.Agent.SystemPrompt), nil
	case "grok":
		model := cfg.Agent.Model
		if model == "" {
			model = DefaultGrokModel
		}
		return NewOpenAI(cfg.Grok.APIKey, cfg.Grok.BaseURL, model, cfg.Agent.SystemPrompt), nil
	case "anthropic":
		return NewAnthropic(cfg.Anthropic.APIKey, cfg.Agent.Model, cfg.Agent.SystemPrompt), nil
	}

	return nil, fmt.Errorf("unknown agent provider %q", cfg.Agent.Provider)
}
